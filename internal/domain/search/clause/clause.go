// Package clause implements the advanced-search mini language: a hand-written
// parser producing a backend-agnostic clause list, plus compilers for a
// relational backend (WHERE fragment with positional binds), a document
// backend (FT match expression), and sort/pagination directives.
package clause

// Op is a comparison operator resolved from the grammar.
type Op string

// Comparison operators. Less and Greater compile to anchored patterns on
// string fields and to true comparisons on number and date fields.
const (
	OpContains   Op = "contains"
	OpEquals     Op = "equals"
	OpStartsWith Op = "startswith"
	OpEndsWith   Op = "endswith"
	OpLess       Op = "less"
	OpGreater    Op = "greater"
)

// Clause is one parsed unit of the grammar: an optional negation, an optional
// field alias, a comparison operator, and a literal value. An empty Alias
// means the value is matched against the mapping's default fields.
type Clause struct {
	Negated bool
	Alias   string
	Op      Op
	Value   string
}
