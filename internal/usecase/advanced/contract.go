package advanced

import (
	"context"

	"github.com/txstate-etc/featured-search-results/internal/domain/directory"
	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
	"github.com/txstate-etc/featured-search-results/internal/domain/search/clause"
	"github.com/txstate-etc/featured-search-results/internal/repository/querylog"
)

// ResultSearcher runs compiled document-store expressions over the catalog.
type ResultSearcher interface {
	Search(ctx context.Context, query string) ([]domres.Result, error)
}

// HitSource lists the recorded visitor queries, used to attribute hit counts
// to the catalog entries that won them.
type HitSource interface {
	List(ctx context.Context) ([]querylog.Record, error)
}

// PeopleStore runs compiled SQL clauses over the directory mirror.
type PeopleStore interface {
	Search(
		ctx context.Context, where string, binds []any,
		order []clause.SortField, offset, limit int,
	) ([]directory.Person, error)
	Count(ctx context.Context, where string, binds []any) (int, error)
}
