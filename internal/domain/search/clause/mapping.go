package clause

import (
	"fmt"
	"strings"
)

// FieldType tags a canonical field with the semantics its operators use.
type FieldType string

// Field type tags.
const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeDate   FieldType = "date"
	TypeArray  FieldType = "array"
)

// Mapping is the immutable search configuration for one searchable entity:
// alias vocabulary, field types, default search fields, and the sort
// whitelist. Built once at startup and shared across queries.
type Mapping struct {
	aliasToField  map[string]string
	fieldTypes    map[string]FieldType
	defaultFields []string
	maxAliasWords int
}

// NewMapping validates and creates a Mapping. Aliases are matched
// case-insensitively and may span multiple words. Default fields must carry a
// type; aliases may intentionally point at fields the types table does not
// know, which the compilers reject loudly at compile time.
func NewMapping(aliasToField map[string]string, fieldTypes map[string]FieldType, defaultFields []string) (Mapping, error) {
	if len(fieldTypes) == 0 {
		return Mapping{}, fmt.Errorf("field types are required")
	}
	if len(defaultFields) == 0 {
		return Mapping{}, fmt.Errorf("default fields are required")
	}
	for _, f := range defaultFields {
		if _, ok := fieldTypes[f]; !ok {
			return Mapping{}, fmt.Errorf("default field %q has no type", f)
		}
	}

	aliases := make(map[string]string, len(aliasToField))
	maxWords := 1
	for alias, field := range aliasToField {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias == "" || field == "" {
			return Mapping{}, fmt.Errorf("empty alias or field in mapping")
		}
		aliases[alias] = field
		if n := len(strings.Fields(alias)); n > maxWords {
			maxWords = n
		}
	}

	return Mapping{
		aliasToField:  aliases,
		fieldTypes:    fieldTypes,
		defaultFields: append([]string(nil), defaultFields...),
		maxAliasWords: maxWords,
	}, nil
}

// MustMapping calls NewMapping and panics on error (static configuration).
func MustMapping(aliasToField map[string]string, fieldTypes map[string]FieldType, defaultFields []string) Mapping {
	m, err := NewMapping(aliasToField, fieldTypes, defaultFields)
	if err != nil {
		panic(err)
	}
	return m
}

// Field resolves an alias to its canonical field path.
func (m Mapping) Field(alias string) (string, bool) {
	f, ok := m.aliasToField[strings.ToLower(alias)]
	return f, ok
}

// Type returns the type tag of a canonical field.
func (m Mapping) Type(field string) (FieldType, bool) {
	t, ok := m.fieldTypes[field]
	return t, ok
}

// DefaultFields returns the fields searched when no alias is given.
func (m Mapping) DefaultFields() []string { return m.defaultFields }

// ValidField reports whether a field may appear in a sort request.
func (m Mapping) ValidField(field string) bool {
	_, ok := m.fieldTypes[field]
	return ok
}

// MaxAliasWords returns the longest alias length in words, bounding the
// parser's lookahead.
func (m Mapping) MaxAliasWords() int { return m.maxAliasWords }

// PeopleMapping is the search configuration for the directory-of-people
// entity backed by the relational store.
func PeopleMapping() Mapping {
	return MustMapping(
		map[string]string{
			"userid":     "userid",
			"netid":      "userid",
			"user id":    "userid",
			"lastname":   "lastname",
			"last name":  "lastname",
			"firstname":  "firstname",
			"first name": "firstname",
			"name":       "lastname",
			"email":      "email",
			"title":      "title",
			"department": "department",
			"dept":       "department",
			"address":    "address",
			"office":     "address",
			"phone":      "phone",
			"telephone":  "phone",
		},
		map[string]FieldType{
			"userid":     TypeString,
			"lastname":   TypeString,
			"firstname":  TypeString,
			"email":      TypeString,
			"title":      TypeString,
			"department": TypeString,
			"address":    TypeString,
			"phone":      TypeString,
		},
		[]string{"lastname", "firstname", "userid", "email"},
	)
}

// ResultMapping is the search configuration for curated results backed by the
// document store.
func ResultMapping() Mapping {
	return MustMapping(
		map[string]string{
			"url":          "url",
			"title":        "title",
			"tag":          "tags",
			"tags":         "tags",
			"priority":     "priority",
			"broken":       "broken",
			"tested":       "lasttested",
			"lasttested":   "lasttested",
			"last tested":  "lasttested",
			"brokensince":  "brokensince",
			"broken since": "brokensince",
		},
		map[string]FieldType{
			"url":         TypeString,
			"title":       TypeString,
			"tags":        TypeArray,
			"priority":    TypeNumber,
			"broken":      TypeString,
			"lasttested":  TypeDate,
			"brokensince": TypeDate,
		},
		[]string{"url", "title", "tags"},
	)
}
