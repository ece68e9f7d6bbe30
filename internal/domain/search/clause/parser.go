package clause

import "strings"

// The grammar, informally:
//
//	clause     = [logic] [alias [comparator]] value
//	logic      = "+" | "-" | "and" | "not"        (case-insensitive)
//	alias      = any mapping alias, whole words, possibly multi-word
//	comparator = ":" | "=" | "<" | "<=" | ">" | ">=" | "contains" | "is"
//	           | "starts with" | "startswith" | "begins with" | "beginswith"
//	           | "ends with" | "endswith"
//	value      = quoted literal | run of characters without space/comma/semicolon
//
// Clauses are separated by commas, semicolons, or whitespace. Parsing is
// greedy left to right and always consumes the whole input: anything that does
// not form an alias clause becomes a default-field value clause, never
// discarded. An unterminated quote extends to end of input. Values containing
// operator characters (: = < >) must be quoted.

type tokenKind int

const (
	tokWord tokenKind = iota
	tokQuoted
	tokOp
	tokDelim
)

type lexToken struct {
	kind tokenKind
	text string
}

func isOpChar(r byte) bool {
	return r == ':' || r == '=' || r == '<' || r == '>'
}

func isBreakChar(r byte) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' ||
		r == ',' || r == ';' || r == '"' || r == '\'' || isOpChar(r)
}

// lex splits the search text into words, quoted literals, operator runs, and
// clause delimiters. Whitespace separates; it never produces a token.
func lex(text string) []lexToken {
	var toks []lexToken
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == ',' || c == ';':
			toks = append(toks, lexToken{kind: tokDelim, text: string(c)})
			i++
		case c == '"' || c == '\'':
			lit, next := lexQuoted(text, i)
			toks = append(toks, lexToken{kind: tokQuoted, text: lit})
			i = next
		case isOpChar(c):
			start := i
			for i < len(text) && isOpChar(text[i]) {
				i++
			}
			toks = append(toks, lexToken{kind: tokOp, text: text[start:i]})
		default:
			start := i
			for i < len(text) && !isBreakChar(text[i]) {
				i++
			}
			toks = append(toks, lexToken{kind: tokWord, text: text[start:i]})
		}
	}
	return toks
}

// lexQuoted scans a quoted literal starting at the opening quote. Backslash
// escapes the quote character and itself. An unterminated literal extends to
// the end of the input rather than failing, keeping search always-available.
func lexQuoted(text string, start int) (string, int) {
	quote := text[start]
	var b strings.Builder
	i := start + 1
	for i < len(text) {
		c := text[i]
		if c == '\\' && i+1 < len(text) && (text[i+1] == quote || text[i+1] == '\\') {
			b.WriteByte(text[i+1])
			i += 2
			continue
		}
		if c == quote {
			return b.String(), i + 1
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), i
}

// Parse compiles a free-form advanced-search string into an ordered clause
// list against the given mapping. Total over any input: every token ends up
// in some clause.
func Parse(text string, m Mapping) []Clause {
	toks := lex(text)
	var clauses []Clause

	i := 0
	for i < len(toks) {
		if toks[i].kind == tokDelim {
			i++
			continue
		}

		negated := false
		if toks[i].kind == tokWord {
			word, consumed := logicPrefix(toks, i)
			if consumed {
				negated = word == "not" || word == "-"
				i++
			} else if stripped, neg, ok := strippedSign(toks[i].text); ok {
				negated = neg
				toks[i].text = stripped
			}
		}

		if c, next, ok := tryAliasClause(toks, i, m); ok {
			c.Negated = negated
			clauses = append(clauses, c)
			i = next
			continue
		}

		// Default-field clause: the token itself is the value.
		clauses = append(clauses, Clause{
			Negated: negated,
			Op:      OpContains,
			Value:   toks[i].text,
		})
		i++
	}

	return clauses
}

// logicPrefix reports whether the word at i is a logic prefix followed by
// something it can apply to. A trailing "not" is a value, not a prefix.
func logicPrefix(toks []lexToken, i int) (string, bool) {
	word := strings.ToLower(toks[i].text)
	if word != "and" && word != "not" && word != "+" && word != "-" {
		return "", false
	}
	if i+1 >= len(toks) {
		return "", false
	}
	if k := toks[i+1].kind; k != tokWord && k != tokQuoted {
		return "", false
	}
	return word, true
}

// strippedSign splits a glued sign off a word: "-priority" acts like
// "- priority". Bare numbers keep their sign so "-5" can be a value.
func strippedSign(word string) (string, bool, bool) {
	if len(word) < 2 {
		return "", false, false
	}
	if word[0] != '+' && word[0] != '-' {
		return "", false, false
	}
	rest := word[1:]
	if isNumeric(rest) {
		return "", false, false
	}
	return rest, word[0] == '-', true
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if (s[i] < '0' || s[i] > '9') && s[i] != '.' {
			return false
		}
	}
	return len(s) > 0
}

// tryAliasClause attempts to read `alias [comparator] value` at position i,
// preferring the longest alias. It fails (and the caller falls back to a
// value clause) when no alias matches or no value follows.
func tryAliasClause(toks []lexToken, i int, m Mapping) (Clause, int, bool) {
	for n := m.MaxAliasWords(); n >= 1; n-- {
		if i+n > len(toks) {
			continue
		}
		words := make([]string, 0, n)
		for k := i; k < i+n; k++ {
			if toks[k].kind != tokWord {
				words = nil
				break
			}
			words = append(words, toks[k].text)
		}
		if words == nil {
			continue
		}
		alias := strings.ToLower(strings.Join(words, " "))
		if _, ok := m.Field(alias); !ok {
			continue
		}

		op, j := comparator(toks, i+n)
		if j >= len(toks) {
			continue
		}
		if k := toks[j].kind; k != tokWord && k != tokQuoted {
			continue
		}
		return Clause{Alias: alias, Op: op, Value: toks[j].text}, j + 1, true
	}
	return Clause{}, i, false
}

// comparator reads an optional comparison operator. Absence defaults to
// contains semantics.
func comparator(toks []lexToken, j int) (Op, int) {
	if j >= len(toks) {
		return OpContains, j
	}

	if toks[j].kind == tokOp {
		switch toks[j].text {
		case ":":
			return OpContains, j + 1
		case "=", "==":
			return OpEquals, j + 1
		case "<=":
			return OpStartsWith, j + 1
		case ">=":
			return OpEndsWith, j + 1
		case "<":
			return OpLess, j + 1
		case ">":
			return OpGreater, j + 1
		}
		return OpContains, j
	}

	if toks[j].kind != tokWord {
		return OpContains, j
	}
	word := strings.ToLower(toks[j].text)

	if j+1 < len(toks) && toks[j+1].kind == tokWord && strings.ToLower(toks[j+1].text) == "with" {
		switch word {
		case "starts", "begins":
			return OpStartsWith, j + 2
		case "ends":
			return OpEndsWith, j + 2
		}
	}

	switch word {
	case "contains":
		return OpContains, j + 1
	case "is":
		return OpEquals, j + 1
	case "startswith", "beginswith":
		return OpStartsWith, j + 1
	case "endswith":
		return OpEndsWith, j + 1
	}
	return OpContains, j
}
