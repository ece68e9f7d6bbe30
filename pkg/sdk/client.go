package featuredsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/txstate-etc/featured-search-results/internal/db/redis"
	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
	querylogrepo "github.com/txstate-etc/featured-search-results/internal/repository/querylog"
	resultrepo "github.com/txstate-etc/featured-search-results/internal/repository/result"
	healthuc "github.com/txstate-etc/featured-search-results/internal/usecase/health"
	resultuc "github.com/txstate-etc/featured-search-results/internal/usecase/result"
	searchuc "github.com/txstate-etc/featured-search-results/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the use cases.
type searchUseCase interface {
	FindByQuery(ctx context.Context, queryText string, asYouType bool) ([]domres.Ref, error)
}

type resultUseCase interface {
	Create(ctx context.Context, in resultuc.Input) (domres.Result, error)
	Update(ctx context.Context, id string, in resultuc.Input) (domres.Result, error)
	Get(ctx context.Context, id string) (domres.Result, error)
	List(ctx context.Context) ([]domres.Result, error)
	Delete(ctx context.Context, id string) error
}

// Client is the featured-search SDK entry point.
type Client struct {
	store     *dbRedis.Store
	searchSvc searchUseCase
	resultSvc resultUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client, connects to the database, and ensures the search
// index exists. The provided context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: "featured:",
		retention: 14 * 24 * time.Hour,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("featuredsearch: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("featuredsearch: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("featuredsearch: database not ready: %w", err)
	}

	catalogRepo := resultrepo.New(store, cfg.keyPrefix)
	if err := catalogRepo.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("featuredsearch: ensure index: %w", err)
	}
	queryLog := querylogrepo.New(store, cfg.keyPrefix, cfg.retention)

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Client{
		store:     store,
		searchSvc: searchuc.New(catalogRepo, queryLog),
		resultSvc: resultuc.New(catalogRepo),
		healthSvc: healthuc.New(store, nil),
		obs:       obs,
	}, nil
}

// Close releases the database connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs a visitor query and returns the matched references in rank
// order. The query is recorded in the query log.
func (c *Client) Search(ctx context.Context, query string) (_ []Match, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	refs, err := c.searchSvc.FindByQuery(ctx, query, false)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromRefs(refs), nil
}

// AsYouType runs a partial query with trailing-prefix tolerance. These
// searches are not recorded in the query log.
func (c *Client) AsYouType(ctx context.Context, query string) (_ []Match, err error) {
	start := time.Now()
	defer func() { c.obs.observe("asyoutype", start, err) }()

	refs, err := c.searchSvc.FindByQuery(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("asyoutype search: %w", err)
	}
	return fromRefs(refs), nil
}

// Results returns the catalog maintenance service.
func (c *Client) Results() *ResultService {
	return &ResultService{svc: c.resultSvc, obs: c.obs}
}
