package result

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/txstate-etc/featured-search-results/internal/domain/search/token"
)

// urlRegex accepts scheme-prefixed and protocol-relative URLs.
var urlRegex = regexp.MustCompile(`^(\w+:)?//.+`)

// Mode is the matching semantics of an Entry.
type Mode string

// Entry match modes.
const (
	// Exact requires the query to cover the whole keyphrase, word for word.
	Exact Mode = "exact"
	// Phrase requires the keyphrase as an ordered subsequence of the query.
	Phrase Mode = "phrase"
	// Keyword requires every keyphrase word somewhere in the query, any order.
	Keyword Mode = "keyword"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Exact || m == Phrase || m == Keyword
}

// Entry is one keyphrase rule attached to a curated result.
type Entry struct {
	keywords []string
	mode     Mode
	priority int
}

// NewEntry validates and creates an Entry. The keyphrase is tokenized the same
// way queries are; a keyphrase that normalizes to zero tokens is rejected.
// Priority is mandatory and explicit: higher ranks more important.
func NewEntry(keyphrase string, mode Mode, priority int) (Entry, error) {
	if !mode.IsValid() {
		return Entry{}, fmt.Errorf("invalid entry mode: %q", mode)
	}
	keywords := token.Tokenize(keyphrase)
	if len(keywords) == 0 {
		return Entry{}, fmt.Errorf("entry keyphrase %q has no words", keyphrase)
	}
	return Entry{keywords: keywords, mode: mode, priority: priority}, nil
}

// ReconstructEntry creates an Entry without validation (storage hydration).
func ReconstructEntry(keywords []string, mode Mode, priority int) Entry {
	return Entry{keywords: keywords, mode: mode, priority: priority}
}

// Keywords returns the canonical keyphrase tokens.
func (e Entry) Keywords() []string { return e.keywords }

// Mode returns the matching semantics.
func (e Entry) Mode() Mode { return e.mode }

// Priority returns the editor-assigned rank.
func (e Entry) Priority() int { return e.priority }

// Currency is link-currency state, owned by an external link checker. The
// matching core only round-trips it.
type Currency struct {
	Broken      bool
	LastTested  time.Time
	BrokenSince *time.Time
}

// Result is a curated item: a URL with a title, tags, and keyphrase entries.
type Result struct {
	id       string
	url      string
	title    string
	tags     []string
	entries  []Entry
	currency Currency
}

// New validates and creates a Result. The URL must be scheme-prefixed or
// protocol-relative, the title non-empty after trimming, and at least one
// entry must be present. Tags are lowercased and de-duplicated.
func New(id, url, title string, tags []string, entries []Entry) (Result, error) {
	if id == "" {
		return Result{}, fmt.Errorf("result id is required")
	}
	url = strings.TrimSpace(url)
	if !urlRegex.MatchString(url) {
		return Result{}, fmt.Errorf("invalid url %q", url)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{}, fmt.Errorf("title is required")
	}
	if len(entries) == 0 {
		return Result{}, fmt.Errorf("at least one entry is required")
	}
	return Result{
		id:      id,
		url:     url,
		title:   title,
		tags:    normalizeTags(tags),
		entries: append([]Entry(nil), entries...),
	}, nil
}

// Reconstruct creates a Result without validation (storage hydration).
func Reconstruct(id, url, title string, tags []string, entries []Entry, currency Currency) Result {
	return Result{id: id, url: url, title: title, tags: tags, entries: entries, currency: currency}
}

// ID returns the result identifier.
func (r *Result) ID() string { return r.id }

// URL returns the curated page address.
func (r *Result) URL() string { return r.url }

// Title returns the display title.
func (r *Result) Title() string { return r.title }

// Tags returns the lowercase tag set.
func (r *Result) Tags() []string { return r.tags }

// Entries returns the keyphrase entries in ingestion order.
func (r *Result) Entries() []Entry { return r.entries }

// Currency returns the link-currency state.
func (r *Result) Currency() Currency { return r.currency }

// Priority returns the highest entry priority, used for index sorting.
func (r *Result) Priority() int {
	best := 0
	for i, e := range r.entries {
		if i == 0 || e.priority > best {
			best = e.priority
		}
	}
	return best
}

// SortedEntries returns a fresh copy of the entries ordered by priority
// descending. Ties keep ingestion order. The receiver is never mutated, so
// concurrent searches over the same snapshot need no coordination.
func (r *Result) SortedEntries() []Entry {
	sorted := append([]Entry(nil), r.entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].priority > sorted[j].priority
	})
	return sorted
}

// Keywords returns every entry keyword once, for the store's prefix index.
func (r *Result) Keywords() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range r.entries {
		for _, k := range e.keywords {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// Ref is the public projection of a matched result: no id, no priority, no
// entries. Editorial internals stay out of anonymous responses.
type Ref struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ToRef projects the result to its public shape.
func (r *Result) ToRef() Ref {
	return Ref{URL: r.url, Title: r.title}
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
