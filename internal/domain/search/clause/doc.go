package clause

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/txstate-etc/featured-search-results/internal/domain"
)

// CompileDoc turns a clause list into a document-store match expression in
// FT.SEARCH syntax: tag filters for string and array fields, numeric ranges
// for number and date fields. Clauses combine by juxtaposition (AND); an
// aliasless clause becomes a `(a | b)` group over the default fields; a
// negated clause gets the `-` prefix. An empty clause list compiles to the
// match-all expression.
func CompileDoc(clauses []Clause, m Mapping) (string, error) {
	var parts []string

	for _, c := range clauses {
		fields, err := resolveFields(c, m)
		if err != nil {
			return "", err
		}

		var fieldParts []string
		for _, f := range fields {
			t, _ := m.Type(f)
			frag, err := docComparison(f, t, c.Op, c.Value)
			if err != nil {
				return "", err
			}
			fieldParts = append(fieldParts, frag)
		}

		part := fieldParts[0]
		if len(fieldParts) > 1 {
			part = "(" + strings.Join(fieldParts, " | ") + ")"
		}
		if c.Negated {
			part = "-" + part
		}
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		return "*", nil
	}
	return strings.Join(parts, " "), nil
}

func docComparison(field string, t FieldType, op Op, value string) (string, error) {
	if t == TypeNumber || t == TypeDate {
		return docNumericComparison(field, t, op, value)
	}

	escaped := tagEscaper.Replace(value)
	switch op {
	case OpEquals:
		return fmt.Sprintf("@%s:{%s}", field, escaped), nil
	case OpStartsWith, OpLess:
		return fmt.Sprintf("@%s:{%s*}", field, escaped), nil
	case OpEndsWith, OpGreater:
		return fmt.Sprintf("@%s:{*%s}", field, escaped), nil
	default: // OpContains
		return fmt.Sprintf("@%s:{*%s*}", field, escaped), nil
	}
}

// docNumericComparison emits numeric range syntax. Anchored-pattern operators
// degrade to equality on typed fields: prefix matching has no meaning on a
// number.
func docNumericComparison(field string, t FieldType, op Op, value string) (string, error) {
	n, err := numericValue(t, value)
	if err != nil {
		return "", fmt.Errorf("%w: field %s needs a %s value, got %q", domain.ErrBadQuery, field, t, value)
	}
	switch op {
	case OpLess:
		return fmt.Sprintf("@%s:[-inf (%g]", field, n), nil
	case OpGreater:
		return fmt.Sprintf("@%s:[(%g +inf]", field, n), nil
	default:
		return fmt.Sprintf("@%s:[%g %g]", field, n, n), nil
	}
}

// numericValue parses a number, or for date fields an RFC3339 timestamp,
// a plain YYYY-MM-DD day, or raw epoch seconds.
func numericValue(t FieldType, value string) (float64, error) {
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n, nil
	}
	if t != TypeDate {
		return 0, fmt.Errorf("not a number: %q", value)
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return float64(ts.Unix()), nil
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return float64(ts.Unix()), nil
	}
	return 0, fmt.Errorf("not a date: %q", value)
}

// tagEscaper protects FT tag-syntax metacharacters inside user values.
var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)
