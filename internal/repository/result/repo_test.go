package result

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/txstate-etc/featured-search-results/internal/db"
	"github.com/txstate-etc/featured-search-results/internal/domain"
	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
)

// --- Save ---

func TestSave_New(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	var gotKey string
	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotKey = key
		gotFields = fields
		return nil
	}

	res := testResult(t, "abc", "//gato.edu/admissions", "Admissions", "apply texas", "admissions")
	if err := repo.Save(ctx, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "featured:result:abc" {
		t.Errorf("unexpected key: %s", gotKey)
	}
	if gotFields["url"] != "//gato.edu/admissions" {
		t.Errorf("unexpected url field: %s", gotFields["url"])
	}
	if gotFields["keywords"] != "apply texas admissions" {
		t.Errorf("unexpected keywords field: %q", gotFields["keywords"])
	}
	if gotFields["priority"] != "2" {
		t.Errorf("unexpected priority field: %q", gotFields["priority"])
	}
}

func TestSave_URLConflict(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchListFn = func(_ context.Context, q *db.ListQuery) (*db.SearchResult, error) {
		if !strings.HasPrefix(q.Query, "@url:{") {
			t.Errorf("unexpected query: %s", q.Query)
		}
		return &db.SearchResult{
			Total:   1,
			Entries: []db.SearchEntry{{Key: "featured:result:other"}},
		}, nil
	}

	res := testResult(t, "abc", "//gato.edu/admissions", "Admissions", "admissions")
	err := repo.Save(ctx, res)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSave_SameIDNotConflict(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.searchListFn = func(_ context.Context, _ *db.ListQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total:   1,
			Entries: []db.SearchEntry{{Key: "featured:result:abc"}},
		}, nil
	}

	res := testResult(t, "abc", "//gato.edu/admissions", "Admissions", "admissions")
	if err := repo.Save(ctx, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSave_URLTagEscaping(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	var gotQuery string
	ms.searchListFn = func(_ context.Context, q *db.ListQuery) (*db.SearchResult, error) {
		gotQuery = q.Query
		return &db.SearchResult{}, nil
	}

	res := testResult(t, "abc", "//gato.edu/path;jsessionid=1", "Gato", "gato")
	if err := repo.Save(ctx, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `@url:{\/\/gato\.edu\/path\;jsessionid\=1}`
	if gotQuery != want {
		t.Errorf("url query = %q, want %q", gotQuery, want)
	}
}

// --- Get ---

func TestGet_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	stored := testResult(t, "abc", "//gato.edu/admissions", "Admissions", "apply texas")
	fields := testHashFields(t, stored)

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "featured:result:abc" {
			t.Errorf("unexpected key: %s", key)
		}
		return fields, nil
	}

	got, err := repo.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != "abc" || got.URL() != stored.URL() || got.Title() != stored.Title() {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Entries()) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got.Entries()))
	}
	e := got.Entries()[0]
	if e.Mode() != domres.Keyword || e.Priority() != 1 {
		t.Errorf("entry mismatch: mode=%s priority=%d", e.Mode(), e.Priority())
	}
	if len(e.Keywords()) != 2 || e.Keywords()[0] != "apply" || e.Keywords()[1] != "texas" {
		t.Errorf("keywords mismatch: %v", e.Keywords())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_CurrencyRoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)

	tested := mustTime(t, "2026-08-01T12:00:00Z")
	since := mustTime(t, "2026-07-15T00:00:00Z")
	base := testResult(t, "abc", "//gato.edu/a", "A", "a")
	stored := domres.Reconstruct(
		base.ID(), base.URL(), base.Title(), base.Tags(), base.Entries(),
		domres.Currency{Broken: true, LastTested: tested, BrokenSince: &since},
	)
	fields := testHashFields(t, &stored)

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return fields, nil
	}

	got, err := repo.Get(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cur := got.Currency()
	if !cur.Broken {
		t.Error("expected broken")
	}
	if !cur.LastTested.Equal(tested) {
		t.Errorf("lasttested mismatch: %v", cur.LastTested)
	}
	if cur.BrokenSince == nil || !cur.BrokenSince.Equal(since) {
		t.Errorf("brokensince mismatch: %v", cur.BrokenSince)
	}
}

// --- Delete ---

func TestDelete(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	deleted := ""
	ms.delFn = func(_ context.Context, key string) error {
		deleted = key
		return nil
	}

	if err := repo.Delete(context.Background(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "featured:result:abc" {
		t.Errorf("unexpected key: %s", deleted)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- RetrieveSuperset ---

func TestRetrieveSuperset_Query(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotQuery string
	ms.searchListFn = func(_ context.Context, q *db.ListQuery) (*db.SearchResult, error) {
		gotQuery = q.Query
		if q.IndexName != "featured:results:idx" {
			t.Errorf("unexpected index: %s", q.IndexName)
		}
		return &db.SearchResult{}, nil
	}

	_, err := repo.RetrieveSuperset(context.Background(), []string{"apply", "covid-19"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != `@keywords:(apply*|covid\-19*)` {
		t.Errorf("unexpected query: %s", gotQuery)
	}
}

func TestRetrieveSuperset_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchListFn = func(_ context.Context, _ *db.ListQuery) (*db.SearchResult, error) {
		t.Fatal("should not search with no tokens")
		return nil, nil
	}

	out, err := repo.RetrieveSuperset(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected nil, got %v", out)
	}
}

func TestRetrieveSuperset_ParsesHits(t *testing.T) {
	repo, ms := newTestRepo(t)

	stored := testResult(t, "abc", "//gato.edu/a", "A", "apply texas")
	fields := testHashFields(t, stored)

	ms.searchListFn = func(_ context.Context, _ *db.ListQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total:   1,
			Entries: []db.SearchEntry{{Key: "featured:result:abc", Fields: fields}},
		}, nil
	}

	out, err := repo.RetrieveSuperset(context.Background(), []string{"apply"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}
	if out[0].ID() != "abc" {
		t.Errorf("unexpected id: %s", out[0].ID())
	}
}

// --- EnsureIndex ---

func TestEnsureIndex_CreatesWhenMissing(t *testing.T) {
	repo, ms := newTestRepo(t)

	var created *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected index creation")
	}
	if created.Name != "featured:results:idx" {
		t.Errorf("unexpected index name: %s", created.Name)
	}
	if len(created.Prefixes) != 1 || created.Prefixes[0] != "featured:result:" {
		t.Errorf("unexpected prefixes: %v", created.Prefixes)
	}
}

func TestEnsureIndex_SkipsWhenPresent(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Fatal("should not create existing index")
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- dto details ---

func TestBuildHashFields_ZeroCurrency(t *testing.T) {
	res := testResult(t, "abc", "//gato.edu/a", "A", "a")
	fields := testHashFields(t, res)

	if fields["broken"] != "0" {
		t.Errorf("unexpected broken: %q", fields["broken"])
	}
	if fields["lasttested"] != "0" {
		t.Errorf("unexpected lasttested: %q", fields["lasttested"])
	}
	if _, ok := fields["brokensince"]; ok {
		t.Error("brokensince should be absent when link is healthy")
	}
}

func TestParseHashFields_ZeroEpoch(t *testing.T) {
	got, err := parseHashFields("abc", map[string]string{
		"url":        "//gato.edu/a",
		"title":      "A",
		"entries":    `[{"keywords":["a"],"mode":"exact","priority":1}]`,
		"lasttested": "0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Currency().LastTested.IsZero() {
		t.Errorf("expected zero time, got %v", got.Currency().LastTested)
	}
	if got.Currency().BrokenSince != nil {
		t.Error("expected nil BrokenSince")
	}
}
