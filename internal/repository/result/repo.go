package result

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/txstate-etc/featured-search-results/internal/db"
	"github.com/txstate-etc/featured-search-results/internal/domain"
	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
)

// store is the consumer interface for curated results (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo persists curated results as Redis hashes behind an FT index.
type Repo struct {
	store  store
	prefix string
}

// New creates a result repository. Keys are namespaced under prefix.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// EnsureIndex creates the result index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName(r.prefix))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, buildIndex(r.prefix)); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Save creates or replaces a result. A different result already holding the
// same URL is a conflict.
func (r *Repo) Save(ctx context.Context, res *domres.Result) error {
	other, err := r.findByURL(ctx, res.URL())
	if err != nil {
		return err
	}
	if other != "" && other != res.ID() {
		return fmt.Errorf("url %s: %w", res.URL(), domain.ErrAlreadyExists)
	}

	fields, err := buildHashFields(res)
	if err != nil {
		return fmt.Errorf("marshal result %s: %w", res.ID(), err)
	}
	if err := r.store.HSet(ctx, r.key(res.ID()), fields); err != nil {
		return fmt.Errorf("hset %s: %w", res.ID(), err)
	}
	return nil
}

// Get returns a result by ID.
func (r *Repo) Get(ctx context.Context, id string) (domres.Result, error) {
	m, err := r.store.HGetAll(ctx, r.key(id))
	if err != nil {
		return domres.Result{}, fmt.Errorf("hgetall %s: %w", id, err)
	}
	if len(m) == 0 {
		return domres.Result{}, domain.ErrNotFound
	}
	return parseHashFields(id, m)
}

// GetByURL returns the result holding the given URL.
func (r *Repo) GetByURL(ctx context.Context, url string) (domres.Result, error) {
	id, err := r.findByURL(ctx, url)
	if err != nil {
		return domres.Result{}, err
	}
	if id == "" {
		return domres.Result{}, domain.ErrNotFound
	}
	return r.Get(ctx, id)
}

// All returns every stored result.
func (r *Repo) All(ctx context.Context) ([]domres.Result, error) {
	return r.Search(ctx, "*")
}

// Delete removes a result by ID.
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, r.key(id))
	if err != nil {
		return fmt.Errorf("exists %s: %w", id, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("del %s: %w", id, err)
	}
	return nil
}

// RetrieveSuperset returns every result sharing at least one keyword prefix
// with the query tokens. Matching proper then prunes this superset in memory.
func (r *Repo) RetrieveSuperset(ctx context.Context, tokens []string) ([]domres.Result, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		terms = append(terms, textEscaper.Replace(tok)+"*")
	}
	return r.Search(ctx, fmt.Sprintf("@keywords:(%s)", strings.Join(terms, "|")))
}

// Search runs an FT query over the result index and parses every hit.
func (r *Repo) Search(ctx context.Context, query string) ([]domres.Result, error) {
	res, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName: indexName(r.prefix),
		Query:     query,
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	out := make([]domres.Result, 0, len(res.Entries))
	for _, e := range res.Entries {
		parsed, err := parseHashFields(r.extractID(e.Key), e.Fields)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Key, err)
		}
		out = append(out, parsed)
	}
	return out, nil
}

// findByURL returns the ID of the result holding url, or "" if none does.
func (r *Repo) findByURL(ctx context.Context, url string) (string, error) {
	res, err := r.store.SearchList(ctx, &db.ListQuery{
		IndexName:    indexName(r.prefix),
		Query:        fmt.Sprintf("@url:{%s}", tagEscaper.Replace(url)),
		Limit:        1,
		ReturnFields: []string{"url"},
	})
	if err != nil {
		return "", fmt.Errorf("lookup url %s: %w", url, err)
	}
	if len(res.Entries) == 0 {
		return "", nil
	}
	return r.extractID(res.Entries[0].Key), nil
}

func (r *Repo) key(id string) string {
	return resultPrefix(r.prefix) + id
}

func (r *Repo) extractID(key string) string {
	return strings.TrimPrefix(key, resultPrefix(r.prefix))
}

// tagEscaper protects FT tag-syntax metacharacters inside stored URLs.
var tagEscaper = strings.NewReplacer(
	",", "\\,", ".", "\\.", "<", "\\<", ">", "\\>", "{", "\\{", "}", "\\}",
	"[", "\\[", "]", "\\]", "\"", "\\\"", "'", "\\'", ":", "\\:", ";", "\\;",
	"!", "\\!", "@", "\\@", "#", "\\#", "$", "\\$", "%", "\\%", "^", "\\^",
	"&", "\\&", "*", "\\*", "(", "\\(", ")", "\\)", "-", "\\-", "+", "\\+",
	"=", "\\=", "~", "\\~", "|", "\\|", "/", "\\/", " ", "\\ ",
)

// textEscaper protects the characters tokenization can leave in a query token.
var textEscaper = strings.NewReplacer("-", "\\-", "_", "\\_")
