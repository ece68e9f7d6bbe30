package featuredsearch

import (
	"strings"
	"time"

	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
	resultuc "github.com/txstate-etc/featured-search-results/internal/usecase/result"
)

// Match is one search hit in rank order.
type Match struct {
	URL   string
	Title string
}

// Entry is one keyphrase rule on a curated result.
// Mode is "exact", "phrase", or "keyword".
type Entry struct {
	Keyphrase string
	Mode      string
	Priority  int
}

// ResultInput is an editor submission for a curated result.
type ResultInput struct {
	URL     string
	Title   string
	Tags    []string
	Entries []Entry
}

// ResultInfo is a stored curated result.
type ResultInfo struct {
	ID          string
	URL         string
	Title       string
	Tags        []string
	Entries     []Entry
	Broken      bool
	LastTested  time.Time
	BrokenSince *time.Time
}

func fromRefs(refs []domres.Ref) []Match {
	matches := make([]Match, len(refs))
	for i, r := range refs {
		matches[i] = Match{URL: r.URL, Title: r.Title}
	}
	return matches
}

func toInput(in ResultInput) resultuc.Input {
	entries := make([]resultuc.EntryInput, len(in.Entries))
	for i, e := range in.Entries {
		entries[i] = resultuc.EntryInput{
			Keyphrase: e.Keyphrase,
			Mode:      domres.Mode(e.Mode),
			Priority:  e.Priority,
		}
	}
	return resultuc.Input{
		URL:     in.URL,
		Title:   in.Title,
		Tags:    in.Tags,
		Entries: entries,
	}
}

func fromResult(r domres.Result) ResultInfo {
	entries := make([]Entry, 0, len(r.Entries()))
	for _, e := range r.Entries() {
		entries = append(entries, Entry{
			Keyphrase: strings.Join(e.Keywords(), " "),
			Mode:      string(e.Mode()),
			Priority:  e.Priority(),
		})
	}
	cur := r.Currency()
	return ResultInfo{
		ID:          r.ID(),
		URL:         r.URL(),
		Title:       r.Title(),
		Tags:        r.Tags(),
		Entries:     entries,
		Broken:      cur.Broken,
		LastTested:  cur.LastTested,
		BrokenSince: cur.BrokenSince,
	}
}
