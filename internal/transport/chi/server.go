package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
	"github.com/kailas-cloud/catalogd/internal/domain/search/request"
	"github.com/kailas-cloud/catalogd/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/catalogd/internal/logger"
	healthuc "github.com/kailas-cloud/catalogd/internal/usecase/health"
	searchuc "github.com/kailas-cloud/catalogd/internal/usecase/search"
	usageuc "github.com/kailas-cloud/catalogd/internal/usecase/usage"
	validationuc "github.com/kailas-cloud/catalogd/internal/usecase/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the catalog HTTP API.
type Server struct {
	search        *searchuc.Service
	validation    *validationuc.Service
	health        *healthuc.Service
	usage         *usageuc.Service
	logger        *zap.Logger
	defaultLimit  int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	validation *validationuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:       search,
		validation:   validation,
		health:       health,
		usage:        usageuc.New(nil),
		logger:       logger,
		defaultLimit: request.DefaultLimit,
	}
	// Order matters: an index build failure wraps the data source error.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSuperseded, http.StatusConflict, ErrorResponseCodeSuperseded),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrIndexBuild, http.StatusServiceUnavailable, ErrorResponseCodeIndexBuildFailed),
		sentinelHandler(domain.ErrDataSourceUnavailable,
			http.StatusServiceUnavailable, ErrorResponseCodeDataSourceUnavailable),
		sentinelHandler(domain.ErrExpanderQuotaExceeded,
			http.StatusTooManyRequests, ErrorResponseCodeQuotaExceeded),
		sentinelHandler(domain.ErrExpanderProviderError,
			http.StatusBadGateway, ErrorResponseCodeExpanderProviderError),
	}
	return s
}

// WithUsage reports expander token usage from u instead of an unlimited budget.
func (s *Server) WithUsage(u *usageuc.Service) *Server {
	if u != nil {
		s.usage = u
	}
	return s
}

// WithDefaultLimit sets the result limit used when a search omits one.
func (s *Server) WithDefaultLimit(n int) *Server {
	if n > 0 && n <= request.MaxLimit {
		s.defaultLimit = n
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r gochi.Router) {
		r.Get("/search", s.Search)
		r.Get("/search/suggestions", s.Suggestions)
		r.Post("/search/reindex", s.Reindex)
		r.Get("/search/index", s.IndexStats)
		r.Delete("/search/index", s.InvalidateIndex)

		r.Post("/validate", s.Validate)
		r.Get("/contracts/{id}/validation", s.ContractValidation)

		r.Get("/layers/{layer}/pipeline-types", s.LayerPipelineTypes)
		r.Get("/pipeline-types/{type}/layers", s.PipelineTypeLayers)

		r.Get("/usage", s.GetUsage)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeBadRequest, "method not allowed")
	})
}

// Search handles GET /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}
	req, err := searchRequestFromParams(&params, r.Header.Get(SessionHeader), s.defaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}

	results, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchResult, len(results))
	for i := range results {
		items[i] = searchResultToAPI(&results[i])
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   req.Query(),
		Total:   len(items),
		Results: items,
	})
}

// Suggestions handles GET /api/v1/search/suggestions.
func (s *Server) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.search.Suggestions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []result.Suggestion{}
	}
	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// Reindex handles POST /api/v1/search/reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	st, err := s.search.BuildIndex(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToAPI(st))
}

// IndexStats handles GET /api/v1/search/index.
func (s *Server) IndexStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statsToAPI(s.search.Stats()))
}

// InvalidateIndex handles DELETE /api/v1/search/index.
func (s *Server) InvalidateIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.search.Invalidate(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles POST /api/v1/validate.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Contract == nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "contract is required")
		return
	}

	res := s.validation.Validate(r.Context(), req.Contract, req.Products)
	writeJSON(w, http.StatusOK, res)
}

// ContractValidation handles GET /api/v1/contracts/{id}/validation.
func (s *Server) ContractValidation(w http.ResponseWriter, r *http.Request) {
	res, err := s.validation.ValidateContract(r.Context(), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// LayerPipelineTypes handles GET /api/v1/layers/{layer}/pipeline-types.
func (s *Server) LayerPipelineTypes(w http.ResponseWriter, r *http.Request) {
	l, err := layer.Parse(gochi.URLParam(r, "layer"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, PipelineTypesResponse{
		Layer:         l,
		PipelineTypes: s.validation.Recommendations(l),
	})
}

// PipelineTypeLayers handles GET /api/v1/pipeline-types/{type}/layers.
func (s *Server) PipelineTypeLayers(w http.ResponseWriter, r *http.Request) {
	t, err := pipeline.Parse(gochi.URLParam(r, "type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, LayersResponse{
		PipelineType: t,
		Layers:       s.validation.LayerSuggestions(t),
	})
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := usageuc.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	report := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, usageToAPI(&report))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSuperseded,
		domain.ErrNotFound,
		domain.ErrInvalidRequest,
		domain.ErrIndexBuild,
		domain.ErrDataSourceUnavailable,
		domain.ErrExpanderProviderError,
		domain.ErrExpanderQuotaExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			if !errors.Is(err, domain.ErrSuperseded) {
				log.Warn("domain error", zap.Error(err))
			}
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
