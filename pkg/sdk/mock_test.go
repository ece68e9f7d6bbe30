package featuredsearch

import (
	"context"

	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
	resultuc "github.com/txstate-etc/featured-search-results/internal/usecase/result"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	findFn func(ctx context.Context, queryText string, asYouType bool) ([]domres.Ref, error)
}

func (m *mockSearchUC) FindByQuery(ctx context.Context, queryText string, asYouType bool) ([]domres.Ref, error) {
	return m.findFn(ctx, queryText, asYouType)
}

// --- resultUseCase mock ---

type mockResultUC struct {
	createFn func(ctx context.Context, in resultuc.Input) (domres.Result, error)
	updateFn func(ctx context.Context, id string, in resultuc.Input) (domres.Result, error)
	getFn    func(ctx context.Context, id string) (domres.Result, error)
	listFn   func(ctx context.Context) ([]domres.Result, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockResultUC) Create(ctx context.Context, in resultuc.Input) (domres.Result, error) {
	return m.createFn(ctx, in)
}

func (m *mockResultUC) Update(ctx context.Context, id string, in resultuc.Input) (domres.Result, error) {
	return m.updateFn(ctx, id, in)
}

func (m *mockResultUC) Get(ctx context.Context, id string) (domres.Result, error) {
	return m.getFn(ctx, id)
}

func (m *mockResultUC) List(ctx context.Context) ([]domres.Result, error) {
	return m.listFn(ctx)
}

func (m *mockResultUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// sampleResult builds a stored result for mocks.
func sampleResult(id, url, title string) domres.Result {
	e := domres.ReconstructEntry([]string{"gato", "cms"}, domres.Keyword, 2)
	return domres.Reconstruct(id, url, title, []string{"cms"}, []domres.Entry{e}, domres.Currency{})
}
