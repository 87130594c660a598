package chi

import (
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/domain/search/entity"
	"github.com/kailas-cloud/catalogd/internal/domain/search/index"
	"github.com/kailas-cloud/catalogd/internal/domain/search/result"
	usageuc "github.com/kailas-cloud/catalogd/internal/usecase/usage"
)

// SessionHeader names the client session a search belongs to. A newer search
// with the same session supersedes an older one still in flight.
const SessionHeader = "X-Search-Session"

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest            ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized          ErrorResponseCode = "unauthorized"
	ErrorResponseCodeNotFound              ErrorResponseCode = "not_found"
	ErrorResponseCodeSuperseded            ErrorResponseCode = "superseded"
	ErrorResponseCodeDataSourceUnavailable ErrorResponseCode = "data_source_unavailable"
	ErrorResponseCodeIndexBuildFailed      ErrorResponseCode = "index_build_failed"
	ErrorResponseCodeExpanderProviderError ErrorResponseCode = "expander_provider_error"
	ErrorResponseCodeQuotaExceeded         ErrorResponseCode = "quota_exceeded"
	ErrorResponseCodeInternalError         ErrorResponseCode = "internal_error"
)

// ErrorResponse is the error envelope of every failed request.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// SearchParams are the query parameters of GET /api/v1/search.
// Array parameters repeat the key: ?layer=Gold&layer=Silver.
// Optional parameters are pointers; nil means absent.
type SearchParams struct {
	Q          *string   `json:"q,omitempty"`
	Domain     *[]string `json:"domain,omitempty"`
	Layer      *[]string `json:"layer,omitempty"`
	Status     *[]string `json:"status,omitempty"`
	Technology *[]string `json:"technology,omitempty"`
	Limit      *int      `json:"limit,omitempty"`
}

// SearchResult is one ranked hit.
type SearchResult struct {
	ID             string             `json:"id"`
	Type           entity.Type        `json:"type"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	RelevanceScore float64            `json:"relevance_score"`
	Metadata       result.Metadata    `json:"metadata"`
	Highlights     *result.Highlights `json:"highlights,omitempty"`
	Actions        []entity.Action    `json:"actions"`
}

// SearchResponse is the body of GET /api/v1/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Total   int            `json:"total"`
	Results []SearchResult `json:"results"`
}

// SuggestionsResponse is the body of GET /api/v1/search/suggestions.
type SuggestionsResponse struct {
	Suggestions []result.Suggestion `json:"suggestions"`
}

// IndexStatsResponse describes the installed search index.
type IndexStatsResponse struct {
	Domains     int        `json:"domains"`
	Contracts   int        `json:"contracts"`
	Products    int        `json:"products"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Fresh       bool       `json:"fresh"`
}

// ValidateRequest is the body of POST /api/v1/validate.
type ValidateRequest struct {
	Contract *contract.Contract `json:"contract"`
	Products []product.Product  `json:"products"`
}

// PipelineTypesResponse lists the pipeline types a layer accepts.
type PipelineTypesResponse struct {
	Layer         layer.Layer     `json:"layer"`
	PipelineTypes []pipeline.Type `json:"pipeline_types"`
}

// LayersResponse lists the layers a pipeline type may run on.
type LayersResponse struct {
	PipelineType pipeline.Type `json:"pipeline_type"`
	Layers       []layer.Layer `json:"layers"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// UsageResponse is the body of GET /api/v1/usage. A limit of 0 and
// tokens_remaining of -1 mean unlimited.
type UsageResponse struct {
	Period          usageuc.Period `json:"period"`
	PeriodStart     time.Time      `json:"period_start"`
	PeriodEnd       time.Time      `json:"period_end"`
	TokensLimit     int64          `json:"tokens_limit"`
	TokensUsed      int64          `json:"tokens_used"`
	TokensRemaining int64          `json:"tokens_remaining"`
	Exhausted       bool           `json:"exhausted"`
}

func usageToAPI(r *usageuc.Report) UsageResponse {
	return UsageResponse{
		Period:          r.Period,
		PeriodStart:     r.PeriodStart,
		PeriodEnd:       r.PeriodEnd,
		TokensLimit:     r.Limit,
		TokensUsed:      r.Used,
		TokensRemaining: r.Remaining,
		Exhausted:       r.Exhausted,
	}
}

func searchResultToAPI(r *result.Result) SearchResult {
	out := SearchResult{
		ID:             r.ID(),
		Type:           r.Type(),
		Title:          r.Title(),
		Description:    r.Description(),
		RelevanceScore: r.Score(),
		Metadata:       r.Metadata(),
		Actions:        r.Actions(),
	}
	if h := r.Highlights(); !h.IsEmpty() {
		out.Highlights = &h
	}
	return out
}

func statsToAPI(st index.Stats) IndexStatsResponse {
	out := IndexStatsResponse{
		Domains:   st.Domains,
		Contracts: st.Contracts,
		Products:  st.Products,
		Fresh:     st.Fresh,
	}
	if !st.LastUpdated.IsZero() {
		t := st.LastUpdated
		out.LastUpdated = &t
	}
	return out
}
