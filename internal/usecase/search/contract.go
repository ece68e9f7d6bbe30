package search

import (
	"context"

	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
)

// Repository defines the storage contract for candidate retrieval.
type Repository interface {
	RetrieveSuperset(ctx context.Context, tokens []string) ([]domres.Result, error)
}

// QueryLogger records completed searches, along with the results each query
// matched, for the popularity report.
type QueryLogger interface {
	Record(ctx context.Context, query string, matched []domres.Ref) error
}
