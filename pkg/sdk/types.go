package catalogd

import (
	"context"
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/domain/search/index"
	"github.com/kailas-cloud/catalogd/internal/domain/search/result"
	domval "github.com/kailas-cloud/catalogd/internal/domain/validation"
)

// Catalog model types.
type (
	Contract         = contract.Contract
	TableSchema      = contract.TableSchema
	Column           = contract.Column
	QualityRule      = contract.QualityRule
	Tags             = contract.Tags
	Status           = contract.Status
	Product          = product.Product
	PipelineConfig   = product.Config
	IngestionConfig  = product.IngestionConfig
	ProcessingConfig = product.ProcessingConfig
	InferenceConfig  = product.InferenceConfig
	TrainingConfig   = product.TrainingConfig
	ServingConfig    = product.ServingConfig
	Section          = product.Section
	Model            = product.Model
	Layer            = layer.Layer
	PipelineType     = pipeline.Type
	ValidationResult = domval.Result
	Suggestion       = result.Suggestion
)

// Layers.
const (
	Bronze     = layer.Bronze
	Silver     = layer.Silver
	Gold       = layer.Gold
	ModelLayer = layer.Model
)

// Pipeline types.
const (
	Ingestion      = pipeline.Ingestion
	Processing     = pipeline.Processing
	ModelInference = pipeline.ModelInference
	ModelTraining  = pipeline.ModelTraining
	ModelServing   = pipeline.ModelServing
)

// Expander returns extra search terms for a lowercase, trimmed query.
// Errors are logged and ignored; the static synonym table still applies.
type Expander interface {
	Expand(ctx context.Context, query string) ([]string, error)
}

// Hit is one ranked search result.
type Hit struct {
	ID           string
	Type         string // "domain", "contract" or "product"
	Title        string
	Description  string
	Score        float64
	Domain       string
	Layer        string
	Status       string
	Technology   string
	QualityScore *float64
	// Highlighted copies of Title and Description with <mark> tags; empty when not matched.
	TitleHighlight       string
	DescriptionHighlight string
	Actions              []string
}

// IndexStats describes the search index held by the client.
type IndexStats struct {
	Domains     int
	Contracts   int
	Products    int
	LastUpdated time.Time // zero before the first build
	Fresh       bool
}

func fromResult(r *result.Result) Hit {
	md := r.Metadata()
	hl := r.Highlights()
	actions := make([]string, 0, len(r.Actions()))
	for _, a := range r.Actions() {
		actions = append(actions, string(a))
	}
	return Hit{
		ID:                   r.ID(),
		Type:                 string(r.Type()),
		Title:                r.Title(),
		Description:          r.Description(),
		Score:                r.Score(),
		Domain:               md.Domain,
		Layer:                md.Layer,
		Status:               md.Status,
		Technology:           md.Technology,
		QualityScore:         md.QualityScore,
		TitleHighlight:       hl.Name,
		DescriptionHighlight: hl.Description,
		Actions:              actions,
	}
}

func fromResults(rs []result.Result) []Hit {
	out := make([]Hit, len(rs))
	for i := range rs {
		out[i] = fromResult(&rs[i])
	}
	return out
}

func fromStats(st index.Stats) IndexStats {
	return IndexStats{
		Domains:     st.Domains,
		Contracts:   st.Contracts,
		Products:    st.Products,
		LastUpdated: st.LastUpdated,
		Fresh:       st.Fresh,
	}
}
