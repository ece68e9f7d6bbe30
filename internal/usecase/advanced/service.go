// Package advanced serves the fielded admin searches: the mini query language
// compiled against the result catalog and the campus directory.
package advanced

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/txstate-etc/featured-search-results/internal/domain"
	"github.com/txstate-etc/featured-search-results/internal/domain/directory"
	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
	"github.com/txstate-etc/featured-search-results/internal/domain/search/clause"
	"github.com/txstate-etc/featured-search-results/internal/domain/search/match"
	"github.com/txstate-etc/featured-search-results/internal/metrics"
	"github.com/txstate-etc/featured-search-results/internal/repository/querylog"
)

// ResultView is one catalog hit, optionally annotated with per-entry hit
// counts gathered from the query log.
type ResultView struct {
	Item      domres.Result
	EntryHits []int // aligned with Item.Entries(); nil unless requested
}

// ResultPage is one page of catalog hits with the unpaged total.
type ResultPage struct {
	Total   int
	Results []ResultView
}

// PeoplePage is one page of directory hits with the unpaged total.
type PeoplePage struct {
	Total  int
	People []directory.Person
}

// Service compiles fielded queries and runs them against both backends.
type Service struct {
	results ResultSearcher
	people  PeopleStore
	hits    HitSource
}

// New creates an advanced search service.
func New(results ResultSearcher, people PeopleStore) *Service {
	return &Service{results: results, people: people}
}

// WithHitSource attaches the query log so listings can carry per-entry hit
// counts. Without one, withHits requests are served plain.
func (s *Service) WithHitSource(h HitSource) *Service {
	s.hits = h
	return s
}

// Results searches the curated catalog with a fielded query. The index
// supports only single-field ordering, so hits are sorted here after the
// filtered fetch; the catalog is small enough for that to stay cheap.
// withHits additionally annotates each entry with the visitor hits it won,
// counted from the query log; only the returned page is annotated.
func (s *Service) Results(
	ctx context.Context, searchText string, sorts []clause.SortRequest, page, pageSize int, withHits bool,
) (ResultPage, error) {
	m := clause.ResultMapping()
	clauses := clause.Parse(searchText, m)
	expr, err := clause.CompileDoc(clauses, m)
	if err != nil {
		return ResultPage{}, fmt.Errorf("compile query: %w", err)
	}

	hits, err := s.results.Search(ctx, expr)
	if err != nil {
		metrics.AdvancedSearchesTotal.WithLabelValues("results", "error").Inc()
		return ResultPage{}, fmt.Errorf("search results: %w", err)
	}
	metrics.AdvancedSearchesTotal.WithLabelValues("results", "ok").Inc()

	sortResults(hits, clause.Sort(m, sorts...))

	total := len(hits)
	offset, limit := clause.Paginate(page, pageSize)
	hits = pageSlice(hits, offset, limit)

	views := make([]ResultView, len(hits))
	for i := range hits {
		views[i].Item = hits[i]
	}
	if withHits && s.hits != nil {
		records, err := s.hits.List(ctx)
		if err != nil {
			return ResultPage{}, fmt.Errorf("list query log: %w", err)
		}
		attachEntryHits(views, records)
	}

	return ResultPage{Total: total, Results: views}, nil
}

// attachEntryHits credits each logged query's hits to the entry that won it:
// the highest-priority entry matching the query, on each result the query is
// recorded against.
func attachEntryHits(views []ResultView, records []querylog.Record) {
	type logged struct {
		q    match.Query
		urls map[string]struct{}
		hits int
	}
	byQuery := make([]logged, 0, len(records))
	for _, rec := range records {
		q := match.NewQuery(rec.Query)
		if q.Empty() || len(rec.Results) == 0 {
			continue
		}
		urls := make(map[string]struct{}, len(rec.Results))
		for _, ref := range rec.Results {
			urls[ref.URL] = struct{}{}
		}
		byQuery = append(byQuery, logged{q: q, urls: urls, hits: len(rec.Hits)})
	}

	for vi := range views {
		entries := views[vi].Item.Entries()
		counts := make([]int, len(entries))
		for _, l := range byQuery {
			if _, ok := l.urls[views[vi].Item.URL()]; !ok {
				continue
			}
			best := -1
			for ei := range entries {
				if !match.Matches(entries[ei], l.q) {
					continue
				}
				if best < 0 || entries[ei].Priority() > entries[best].Priority() {
					best = ei
				}
			}
			if best >= 0 {
				counts[best] += l.hits
			}
		}
		views[vi].EntryHits = counts
	}
}

// People searches the directory mirror with a fielded query.
func (s *Service) People(
	ctx context.Context, searchText string, sorts []clause.SortRequest, page, pageSize int,
) (PeoplePage, error) {
	if s.people == nil {
		return PeoplePage{}, fmt.Errorf("people directory: %w", domain.ErrNotFound)
	}

	m := clause.PeopleMapping()
	clauses := clause.Parse(searchText, m)
	where, binds, err := clause.CompileSQL(clauses, m)
	if err != nil {
		return PeoplePage{}, fmt.Errorf("compile query: %w", err)
	}

	total, err := s.people.Count(ctx, where, binds)
	if err != nil {
		return PeoplePage{}, fmt.Errorf("count people: %w", err)
	}

	order := clause.Sort(m, sorts...)
	offset, limit := clause.Paginate(page, pageSize)
	people, err := s.people.Search(ctx, where, binds, order, offset, limit)
	if err != nil {
		metrics.AdvancedSearchesTotal.WithLabelValues("directory", "error").Inc()
		return PeoplePage{}, fmt.Errorf("search people: %w", err)
	}
	metrics.AdvancedSearchesTotal.WithLabelValues("directory", "ok").Inc()

	return PeoplePage{Total: total, People: people}, nil
}

func pageSlice(hits []domres.Result, offset, limit int) []domres.Result {
	if limit <= 0 {
		return hits
	}
	if offset >= len(hits) {
		return []domres.Result{}
	}
	end := offset + limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[offset:end]
}

func sortResults(hits []domres.Result, order []clause.SortField) {
	sort.SliceStable(hits, func(i, j int) bool {
		for _, o := range order {
			cmp := compareField(&hits[i], &hits[j], o.Field)
			if cmp == 0 {
				continue
			}
			if o.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareField(a, b *domres.Result, field string) int {
	switch field {
	case "priority":
		return a.Priority() - b.Priority()
	case "broken":
		return boolInt(a.Currency().Broken) - boolInt(b.Currency().Broken)
	case "lasttested":
		return a.Currency().LastTested.Compare(b.Currency().LastTested)
	case "brokensince":
		at, bt := a.Currency().BrokenSince, b.Currency().BrokenSince
		switch {
		case at == nil && bt == nil:
			return 0
		case at == nil:
			return -1
		case bt == nil:
			return 1
		default:
			return at.Compare(*bt)
		}
	case "title":
		return strings.Compare(a.Title(), b.Title())
	case "tags":
		return strings.Compare(strings.Join(a.Tags(), ","), strings.Join(b.Tags(), ","))
	default: // url
		return strings.Compare(a.URL(), b.URL())
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
