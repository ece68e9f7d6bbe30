package match

import (
	"sort"
	"strings"

	"github.com/txstate-etc/featured-search-results/internal/domain/result"
	"github.com/txstate-etc/featured-search-results/internal/domain/search/token"
)

// Query is a tokenized search query with the derived forms the matchers need,
// computed once per query rather than once per candidate.
type Query struct {
	tokens []string
	set    map[string]struct{}
	joined string
}

// NewQuery tokenizes free text into a Query.
func NewQuery(text string) Query {
	tokens := token.Tokenize(text)
	return Query{
		tokens: tokens,
		set:    token.Set(tokens),
		joined: token.Join(tokens),
	}
}

// Tokens returns the query tokens.
func (q Query) Tokens() []string { return q.tokens }

// Empty reports whether the query normalized to zero tokens.
func (q Query) Empty() bool { return len(q.tokens) == 0 }

// Matches decides whether one entry matches the query under the entry's mode.
// Every mode tolerates the final query word being an in-progress prefix of the
// keyword it is matching, so as-you-type queries hit before the last word is
// finished.
func Matches(e result.Entry, q Query) bool {
	switch e.Mode() {
	case result.Exact:
		return matchExact(e.Keywords(), q)
	case result.Phrase:
		return matchPhrase(e.Keywords(), q)
	case result.Keyword:
		return matchKeyword(e.Keywords(), q)
	}
	return false
}

// matchExact requires the same word count and the joined keyphrase to begin
// with the joined query. Preceding words must match exactly; only the final
// query word may be a prefix of the final keyword.
func matchExact(keywords []string, q Query) bool {
	if len(keywords) != len(q.tokens) {
		return false
	}
	return strings.HasPrefix(token.Join(keywords), q.joined)
}

// matchPhrase scans the query left to right looking for the keyphrase as an
// ordered subsequence. Extra query words may appear anywhere without breaking
// the sequence.
func matchPhrase(keywords []string, q Query) bool {
	i := 0
	prefix := false
	for ti, tok := range q.tokens {
		if i < len(keywords) && tok == keywords[i] {
			i++
			prefix = false
			continue
		}
		if ti == len(q.tokens)-1 && i < len(keywords) && strings.HasPrefix(keywords[i], tok) {
			prefix = true
		}
	}
	if i == len(keywords) {
		return true
	}
	return i == len(keywords)-1 && prefix
}

// matchKeyword requires every keyword to appear in the query, order ignored.
// One keyword may instead be prefix-completed by some query token.
func matchKeyword(keywords []string, q Query) bool {
	exact := 0
	prefixed := 0
	for _, kw := range keywords {
		if _, ok := q.set[kw]; ok {
			exact++
			continue
		}
		for tok := range q.set {
			if strings.HasPrefix(kw, tok) {
				prefixed++
				break
			}
		}
	}
	if exact == len(keywords) {
		return true
	}
	return exact == len(keywords)-1 && prefixed == 1
}

// Match resolves the winning entry for one candidate: the highest-priority
// entry that matches. Reports the winning priority and whether any entry won.
func Match(item result.Result, q Query) (int, bool) {
	for _, e := range item.SortedEntries() {
		if Matches(e, q) {
			return e.Priority(), true
		}
	}
	return 0, false
}

// Rank filters candidates to true matches and orders them by winning priority
// descending, tie-broken by title ascending. The ordering is deterministic
// across runs. An empty query yields no matches.
func Rank(candidates []result.Result, q Query) []result.Result {
	if q.Empty() {
		return nil
	}

	type ranked struct {
		item     result.Result
		priority int
	}
	matched := make([]ranked, 0, len(candidates))
	for _, item := range candidates {
		if priority, ok := Match(item, q); ok {
			matched = append(matched, ranked{item: item, priority: priority})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].priority != matched[j].priority {
			return matched[i].priority > matched[j].priority
		}
		return matched[i].item.Title() < matched[j].item.Title()
	})

	out := make([]result.Result, len(matched))
	for i, m := range matched {
		out[i] = m.item
	}
	return out
}
