package result

import (
	"context"

	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
)

// Repository defines the storage contract for curated results.
type Repository interface {
	Save(ctx context.Context, res *domres.Result) error
	Get(ctx context.Context, id string) (domres.Result, error)
	All(ctx context.Context) ([]domres.Result, error)
	Delete(ctx context.Context, id string) error
}
