package featuredsearch

import (
	"context"
	"fmt"
	"time"
)

// ResultService maintains the curated result catalog.
type ResultService struct {
	svc resultUseCase
	obs *observer
}

// Create validates and stores a new curated result.
func (s *ResultService) Create(ctx context.Context, in ResultInput) (_ ResultInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("result.create", start, err) }()

	res, err := s.svc.Create(ctx, toInput(in))
	if err != nil {
		return ResultInfo{}, fmt.Errorf("create result: %w", err)
	}
	return fromResult(res), nil
}

// Update replaces the editable fields of an existing result.
// Link-currency state is preserved.
func (s *ResultService) Update(ctx context.Context, id string, in ResultInput) (_ ResultInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("result.update", start, err) }()

	res, err := s.svc.Update(ctx, id, toInput(in))
	if err != nil {
		return ResultInfo{}, fmt.Errorf("update result: %w", err)
	}
	return fromResult(res), nil
}

// Get retrieves a curated result by id.
func (s *ResultService) Get(ctx context.Context, id string) (_ ResultInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("result.get", start, err) }()

	res, err := s.svc.Get(ctx, id)
	if err != nil {
		return ResultInfo{}, fmt.Errorf("get result: %w", err)
	}
	return fromResult(res), nil
}

// List returns the whole catalog.
func (s *ResultService) List(ctx context.Context) (_ []ResultInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("result.list", start, err) }()

	results, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	infos := make([]ResultInfo, len(results))
	for i := range results {
		infos[i] = fromResult(results[i])
	}
	return infos, nil
}

// Delete removes a curated result by id.
func (s *ResultService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("result.delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}
