package featuredsearch

import "github.com/txstate-etc/featured-search-results/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrAlreadyExists = domain.ErrAlreadyExists
	ErrInvalidResult = domain.ErrInvalidResult
	ErrBadQuery      = domain.ErrBadQuery
)
