package clause

import (
	"fmt"
	"strings"

	"github.com/txstate-etc/featured-search-results/internal/domain"
)

// likeEscaper protects LIKE metacharacters inside user values. Fragments that
// use it carry an ESCAPE '\' suffix.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CompileSQL turns a clause list into a relational WHERE fragment with
// positional binds. Literals are never interpolated into the fragment; every
// value travels as a `?` placeholder. Clauses combine with AND; an aliasless
// clause ORs its comparison across the mapping's default fields. An empty
// clause list compiles to an empty fragment.
func CompileSQL(clauses []Clause, m Mapping) (string, []any, error) {
	var parts []string
	var binds []any

	for _, c := range clauses {
		fields, err := resolveFields(c, m)
		if err != nil {
			return "", nil, err
		}

		var fieldParts []string
		for _, f := range fields {
			t, _ := m.Type(f)
			frag, bind := sqlComparison(f, t, c.Op, c.Value)
			fieldParts = append(fieldParts, frag)
			binds = append(binds, bind)
		}

		part := fieldParts[0]
		if len(fieldParts) > 1 {
			part = "(" + strings.Join(fieldParts, " OR ") + ")"
		}
		if c.Negated {
			part = "NOT (" + part + ")"
		}
		parts = append(parts, part)
	}

	return strings.Join(parts, " AND "), binds, nil
}

// resolveFields maps a clause to its canonical target fields. An alias whose
// field carries no type entry is a configuration mismatch between the alias
// and type tables; that fails loudly rather than degrading.
func resolveFields(c Clause, m Mapping) ([]string, error) {
	if c.Alias == "" {
		return m.DefaultFields(), nil
	}
	field, ok := m.Field(c.Alias)
	if !ok {
		// Parser only emits aliases it resolved; reaching here means the
		// mapping changed between parse and compile.
		return nil, fmt.Errorf("%w: unknown alias %q", domain.ErrMappingMismatch, c.Alias)
	}
	if _, ok := m.Type(field); !ok {
		return nil, fmt.Errorf("%w: alias %q resolves to untyped field %q", domain.ErrMappingMismatch, c.Alias, field)
	}
	return []string{field}, nil
}

// sqlComparison builds one field comparison fragment and its bind value.
// Less and Greater fall back to anchored patterns on string-typed fields and
// compile to true comparisons on number and date fields.
func sqlComparison(field string, t FieldType, op Op, value string) (string, any) {
	switch op {
	case OpEquals:
		return field + " = ?", value
	case OpStartsWith:
		return likeFragment(field, value, likeEscaper.Replace(value)+"%")
	case OpEndsWith:
		return likeFragment(field, value, "%"+likeEscaper.Replace(value))
	case OpLess:
		if t == TypeNumber || t == TypeDate {
			return field + " < ?", value
		}
		return likeFragment(field, value, likeEscaper.Replace(value)+"%")
	case OpGreater:
		if t == TypeNumber || t == TypeDate {
			return field + " > ?", value
		}
		return likeFragment(field, value, "%"+likeEscaper.Replace(value))
	default: // OpContains
		return likeFragment(field, value, "%"+likeEscaper.Replace(value)+"%")
	}
}

// likeFragment emits a LIKE comparison, adding an ESCAPE clause only when the
// raw value actually contains a metacharacter.
func likeFragment(field, raw, pattern string) (string, any) {
	if strings.ContainsAny(raw, `%_\`) {
		return field + ` LIKE ? ESCAPE '\'`, pattern
	}
	return field + " LIKE ?", pattern
}
