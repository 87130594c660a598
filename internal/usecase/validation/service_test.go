package validation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/metrics"
)

// --- Mocks ---

type mockSource struct {
	contracts map[string]contract.Contract
	products  []product.Product
	err       error
}

func (m *mockSource) GetContract(_ context.Context, id string) (contract.Contract, error) {
	c, ok := m.contracts[id]
	if !ok {
		return contract.Contract{}, domain.ErrNotFound
	}
	return c, nil
}

func (m *mockSource) ListProductsByContract(_ context.Context, id string) ([]product.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return product.ForContract(m.products, id), nil
}

func bronze() contract.Contract {
	return contract.Contract{ID: "c1", Name: "raw_events", Tags: contract.Tags{Layer: layer.Bronze}}
}

func section() product.Section { return product.Section{"table": "t"} }

// --- Tests ---

func TestValidate_CountsOutcome(t *testing.T) {
	svc := New(nil)
	c := bronze()

	validBefore := testutil.ToFloat64(metrics.ValidationsTotal.WithLabelValues("valid"))
	invalidBefore := testutil.ToFloat64(metrics.ValidationsTotal.WithLabelValues("invalid"))

	ok := svc.Validate(context.Background(), &c, []product.Product{{
		ID: "p1", DataContractID: "c1", PipelineType: pipeline.Ingestion,
		Config: product.IngestionConfig{Source: section(), Target: section()},
	}})
	if !ok.Valid {
		t.Fatalf("expected valid, got %+v", ok)
	}

	bad := svc.Validate(context.Background(), &c, []product.Product{{
		ID: "p2", DataContractID: "c1", PipelineType: pipeline.ModelServing,
		Config: product.ServingConfig{Model: &product.Model{Name: "m"}, Endpoint: section()},
	}})
	if bad.Valid || len(bad.Errors) != 1 {
		t.Fatalf("expected one layer error, got %+v", bad)
	}

	if got := testutil.ToFloat64(metrics.ValidationsTotal.WithLabelValues("valid")) - validBefore; got != 1 {
		t.Errorf("valid delta = %v", got)
	}
	if got := testutil.ToFloat64(metrics.ValidationsTotal.WithLabelValues("invalid")) - invalidBefore; got != 1 {
		t.Errorf("invalid delta = %v", got)
	}
}

func TestValidateContract(t *testing.T) {
	src := &mockSource{
		contracts: map[string]contract.Contract{"c1": bronze()},
		products: []product.Product{
			{ID: "p1", Name: "loader", DataContractID: "c1", PipelineType: pipeline.Ingestion, Technology: "Airbyte",
				Config: product.IngestionConfig{Source: section()}},
			{ID: "p2", Name: "other", DataContractID: "c2", PipelineType: pipeline.ModelTraining},
		},
	}
	svc := New(src)

	res, err := svc.ValidateContract(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid || len(res.Errors) != 1 || !strings.Contains(res.Errors[0], `"target"`) {
		t.Errorf("result = %+v", res)
	}
}

func TestValidateContract_NotFound(t *testing.T) {
	svc := New(&mockSource{contracts: map[string]contract.Contract{}})
	_, err := svc.ValidateContract(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestValidateContract_SourceError(t *testing.T) {
	src := &mockSource{
		contracts: map[string]contract.Contract{"c1": bronze()},
		err:       domain.NewFetchError("list products", errors.New("timeout")),
	}
	_, err := New(src).ValidateContract(context.Background(), "c1")
	if !errors.Is(err, domain.ErrDataSourceUnavailable) {
		t.Errorf("want ErrDataSourceUnavailable, got %v", err)
	}
}

func TestValidateContract_NoSource(t *testing.T) {
	if _, err := New(nil).ValidateContract(context.Background(), "c1"); err == nil {
		t.Error("expected error without a data source")
	}
}

func TestRecommendations(t *testing.T) {
	svc := New(nil)
	if got := svc.Recommendations(layer.Model); len(got) != 1 || got[0] != pipeline.ModelTraining {
		t.Errorf("model recommendations = %v", got)
	}
	if got := svc.LayerSuggestions(pipeline.Processing); len(got) != 2 {
		t.Errorf("processing layers = %v", got)
	}
}
