// Package chi is the HTTP transport: hand-written handlers on the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/txstate-etc/featured-search-results/internal/domain"
	"github.com/txstate-etc/featured-search-results/internal/domain/directory"
	domres "github.com/txstate-etc/featured-search-results/internal/domain/result"
	"github.com/txstate-etc/featured-search-results/internal/domain/search/clause"
	"github.com/txstate-etc/featured-search-results/internal/repository/querylog"
	advanceduc "github.com/txstate-etc/featured-search-results/internal/usecase/advanced"
	healthuc "github.com/txstate-etc/featured-search-results/internal/usecase/health"
	resultuc "github.com/txstate-etc/featured-search-results/internal/usecase/result"
	searchuc "github.com/txstate-etc/featured-search-results/internal/usecase/search"
)

// Limits applies the configured paging bounds to incoming requests.
type Limits struct {
	MaxQueryLength  int
	DefaultPageSize int
	MaxPageSize     int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the use cases behind the HTTP surface.
type Server struct {
	search        *searchuc.Service
	results       *resultuc.Service
	advanced      *advanceduc.Service
	queries       QueryLogReader
	health        *healthuc.Service
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// QueryLogReader lists the recorded visitor queries.
type QueryLogReader interface {
	List(ctx context.Context) ([]querylog.Record, error)
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	results *resultuc.Service,
	advanced *advanceduc.Service,
	queries QueryLogReader,
	health *healthuc.Service,
	limits Limits,
	logger *zap.Logger,
) *Server {
	if limits.DefaultPageSize <= 0 {
		limits.DefaultPageSize = 20
	}
	if limits.MaxPageSize <= 0 {
		limits.MaxPageSize = 100
	}
	s := &Server{
		search:   search,
		results:  results,
		advanced: advanced,
		queries:  queries,
		health:   health,
		limits:   limits,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeConflict),
		sentinelHandler(domain.ErrInvalidResult, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrBadQuery, http.StatusBadRequest, codeBadQuery),
		// ErrMappingMismatch is a configuration defect, not bad input; it
		// deliberately falls through to the 500 path.
	}
	return s
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Get("/search", s.handleSearch)
	r.Route("/results", func(r chi.Router) {
		r.Get("/", s.handleListResults)
		r.Post("/", s.handleCreateResult)
		r.Get("/{id}", s.handleGetResult)
		r.Put("/{id}", s.handleUpdateResult)
		r.Delete("/{id}", s.handleDeleteResult)
	})
	r.Get("/directory", s.handleDirectory)
	r.Get("/queries", s.handleQueries)
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// --- wire types ---

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeBadQuery         = "bad_query"
	codeNotFound         = "not_found"
	codeConflict         = "conflict"
	codeInternalError    = "internal_error"
)

type refItem struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type entryItem struct {
	Keyphrase string   `json:"keyphrase,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Mode      string   `json:"mode"`
	Priority  int      `json:"priority"`
	Hits      *int     `json:"hits,omitempty"`
}

type resultItem struct {
	ID          string      `json:"id"`
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Tags        []string    `json:"tags,omitempty"`
	Priority    int         `json:"priority"`
	Entries     []entryItem `json:"entries"`
	Broken      bool        `json:"broken"`
	LastTested  *time.Time  `json:"lasttested,omitempty"`
	BrokenSince *time.Time  `json:"brokensince,omitempty"`
}

type resultRequest struct {
	URL     string      `json:"url"`
	Title   string      `json:"title"`
	Tags    []string    `json:"tags"`
	Entries []entryItem `json:"entries"`
}

type resultPageResponse struct {
	Total   int          `json:"total"`
	Results []resultItem `json:"results"`
}

type peoplePageResponse struct {
	Total  int                `json:"total"`
	People []directory.Person `json:"people"`
}

type queryItem struct {
	Query   string      `json:"query"`
	Hits    []time.Time `json:"hits"`
	Results []refItem   `json:"results"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// --- handlers ---

// handleSearch answers the public featured-result lookup.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if s.limits.MaxQueryLength > 0 && len(q) > s.limits.MaxQueryLength {
		q = q[:s.limits.MaxQueryLength]
	}
	asYouType := queryFlag(r, "asyoutype")

	refs, err := s.search.FindByQuery(r.Context(), q, asYouType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]refItem, len(refs))
	for i, ref := range refs {
		items[i] = refItem{URL: ref.URL, Title: ref.Title}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleListResults serves both the plain catalog listing and the fielded
// advanced search; the q parameter decides which.
func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	sorts, page, pageSize, err := s.pagingParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	withHits := queryFlag(r, "hits")
	pageOut, err := s.advanced.Results(r.Context(), r.URL.Query().Get("q"), sorts, page, pageSize, withHits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]resultItem, len(pageOut.Results))
	for i := range pageOut.Results {
		items[i] = resultToItem(&pageOut.Results[i].Item, pageOut.Results[i].EntryHits)
	}
	writeJSON(w, http.StatusOK, resultPageResponse{Total: pageOut.Total, Results: items})
}

func (s *Server) handleCreateResult(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeResultInput(w, r)
	if !ok {
		return
	}
	res, err := s.results.Create(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resultToItem(&res, nil))
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.results.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToItem(&res, nil))
}

func (s *Server) handleUpdateResult(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeResultInput(w, r)
	if !ok {
		return
	}
	res, err := s.results.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToItem(&res, nil))
}

func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := s.results.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	sorts, page, pageSize, err := s.pagingParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	pageOut, err := s.advanced.People(r.Context(), r.URL.Query().Get("q"), sorts, page, pageSize)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if pageOut.People == nil {
		pageOut.People = []directory.Person{}
	}
	writeJSON(w, http.StatusOK, peoplePageResponse{Total: pageOut.Total, People: pageOut.People})
}

func (s *Server) handleQueries(w http.ResponseWriter, r *http.Request) {
	records, err := s.queries.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]queryItem, len(records))
	for i, rec := range records {
		refs := make([]refItem, len(rec.Results))
		for j, ref := range rec.Results {
			refs[j] = refItem{URL: ref.URL, Title: ref.Title}
		}
		items[i] = queryItem{Query: rec.Query, Hits: rec.Hits, Results: refs}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// --- helpers ---

func (s *Server) decodeResultInput(w http.ResponseWriter, r *http.Request) (resultuc.Input, bool) {
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return resultuc.Input{}, false
	}
	in := resultuc.Input{URL: req.URL, Title: req.Title, Tags: req.Tags}
	for _, e := range req.Entries {
		in.Entries = append(in.Entries, resultuc.EntryInput{
			Keyphrase: e.Keyphrase,
			Mode:      domres.Mode(e.Mode),
			Priority:  e.Priority,
		})
	}
	return in, true
}

// pagingParams reads sort/order/page/pagesize and clamps the page size to the
// configured maximum.
func (s *Server) pagingParams(r *http.Request) ([]clause.SortRequest, int, int, error) {
	q := r.URL.Query()

	var sorts []clause.SortRequest
	if f := q.Get("sort"); f != "" {
		sorts = append(sorts, clause.SortRequest{Fields: f, Order: clause.Order(q.Get("order"))})
	}

	page := 1
	if raw := q.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, 0, 0, errors.New("page must be a positive integer")
		}
		page = parsed
	}

	pageSize := s.limits.DefaultPageSize
	if raw := q.Get("pagesize"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, 0, 0, errors.New("pagesize must be a positive integer")
		}
		pageSize = parsed
	}
	if pageSize > s.limits.MaxPageSize {
		pageSize = s.limits.MaxPageSize
	}

	return sorts, page, pageSize, nil
}

func queryFlag(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return v == "1" || v == "true"
}

// resultToItem maps a catalog result to its wire shape. entryHits, when
// non-nil, is aligned with res.Entries() and attaches a hit counter per entry.
func resultToItem(res *domres.Result, entryHits []int) resultItem {
	entries := make([]entryItem, 0, len(res.Entries()))
	for i, e := range res.Entries() {
		item := entryItem{
			Keywords: e.Keywords(),
			Mode:     string(e.Mode()),
			Priority: e.Priority(),
		}
		if i < len(entryHits) {
			h := entryHits[i]
			item.Hits = &h
		}
		entries = append(entries, item)
	}
	item := resultItem{
		ID:       res.ID(),
		URL:      res.URL(),
		Title:    res.Title(),
		Tags:     res.Tags(),
		Priority: res.Priority(),
		Entries:  entries,
		Broken:   res.Currency().Broken,
	}
	if !res.Currency().LastTested.IsZero() {
		t := res.Currency().LastTested
		item.LastTested = &t
	}
	item.BrokenSince = res.Currency().BrokenSince
	return item
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidResult,
		domain.ErrBadQuery,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
