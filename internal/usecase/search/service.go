package search

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
	"github.com/txstate-etc/featured-search-results/internal/domain/search/match"
	"github.com/txstate-etc/featured-search-results/internal/logger"
	"github.com/txstate-etc/featured-search-results/internal/metrics"
)

// Service answers visitor searches against the curated catalog.
type Service struct {
	repo Repository
	log  QueryLogger
}

// New creates a search service.
func New(repo Repository, log QueryLogger) *Service {
	return &Service{repo: repo, log: log}
}

// FindByQuery returns the curated results matching a visitor query, best
// first. asYouType marks keystroke-driven lookups, which are answered the
// same way but kept out of the query log.
func (s *Service) FindByQuery(ctx context.Context, queryText string, asYouType bool) ([]domres.Ref, error) {
	q := match.NewQuery(queryText)
	if q.Empty() {
		return []domres.Ref{}, nil
	}

	candidates, err := s.repo.RetrieveSuperset(ctx, q.Tokens())
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}

	ranked := match.Rank(candidates, q)
	refs := make([]domres.Ref, 0, len(ranked))
	for i := range ranked {
		refs = append(refs, ranked[i].ToRef())
	}

	ayt := strconv.FormatBool(asYouType)
	metrics.FeaturedCandidatesRetrieved.WithLabelValues(ayt).Observe(float64(len(candidates)))
	outcome := "miss"
	if len(refs) > 0 {
		outcome = "hit"
	}
	metrics.FeaturedSearchesTotal.WithLabelValues(outcome, ayt).Inc()

	// Logging is best effort: a broken log never breaks a search.
	if !asYouType && len(refs) > 0 {
		if err := s.log.Record(ctx, queryText, refs); err != nil {
			logger.FromContext(ctx).Warn("Failed to record query",
				zap.String("query", queryText), zap.Error(err))
		}
	}

	return refs, nil
}
