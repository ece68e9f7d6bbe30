package result

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/txstate-etc/featured-search-results/internal/domain"
	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
)

// EntryInput is one keyphrase rule as submitted by an editor.
type EntryInput struct {
	Keyphrase string
	Mode      domres.Mode
	Priority  int
}

// Input is an editor submission for a curated result.
type Input struct {
	URL     string
	Title   string
	Tags    []string
	Entries []EntryInput
}

// Service handles editor maintenance of the curated catalog.
type Service struct {
	repo Repository
}

// New creates a result service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new curated result.
func (s *Service) Create(ctx context.Context, in Input) (domres.Result, error) {
	res, err := buildResult(uuid.NewString(), in)
	if err != nil {
		return domres.Result{}, err
	}
	if err := s.repo.Save(ctx, &res); err != nil {
		return domres.Result{}, fmt.Errorf("save result: %w", err)
	}
	return res, nil
}

// Update replaces an existing result's editable fields. Link-currency state
// is owned by the link checker and survives the rewrite untouched.
func (s *Service) Update(ctx context.Context, id string, in Input) (domres.Result, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domres.Result{}, fmt.Errorf("load result: %w", err)
	}

	res, err := buildResult(id, in)
	if err != nil {
		return domres.Result{}, err
	}
	res = domres.Reconstruct(id, res.URL(), res.Title(), res.Tags(), res.Entries(), current.Currency())

	if err := s.repo.Save(ctx, &res); err != nil {
		return domres.Result{}, fmt.Errorf("save result: %w", err)
	}
	return res, nil
}

// Get returns one result by ID.
func (s *Service) Get(ctx context.Context, id string) (domres.Result, error) {
	return s.repo.Get(ctx, id)
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ([]domres.Result, error) {
	return s.repo.All(ctx)
}

// Delete removes a result by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func buildResult(id string, in Input) (domres.Result, error) {
	entries := make([]domres.Entry, 0, len(in.Entries))
	for _, e := range in.Entries {
		entry, err := domres.NewEntry(e.Keyphrase, e.Mode, e.Priority)
		if err != nil {
			return domres.Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidResult, err)
		}
		entries = append(entries, entry)
	}
	res, err := domres.New(id, in.URL, in.Title, in.Tags, entries)
	if err != nil {
		return domres.Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidResult, err)
	}
	return res, nil
}
