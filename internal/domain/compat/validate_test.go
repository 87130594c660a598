package compat

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
)

func section() product.Section { return product.Section{"table": "t"} }

func newContract(l layer.Layer) *contract.Contract {
	return &contract.Contract{
		ID:   "c1",
		Name: "card_transactions",
		Tags: contract.Tags{Layer: l, Status: contract.Published},
	}
}

func TestValidateLayerPipelineCompatibility_AllPairs(t *testing.T) {
	allowed := map[layer.Layer][]pipeline.Type{
		layer.Bronze: {pipeline.Ingestion},
		layer.Silver: {pipeline.Processing, pipeline.ModelInference, pipeline.ModelServing},
		layer.Gold:   {pipeline.Processing, pipeline.ModelInference, pipeline.ModelServing},
		layer.Model:  {pipeline.ModelTraining},
	}
	for _, l := range layer.All() {
		for _, p := range pipeline.All() {
			want := false
			for _, a := range allowed[l] {
				if a == p {
					want = true
				}
			}
			res := ValidateLayerPipelineCompatibility(l, p)
			if res.Valid != want {
				t.Errorf("%s/%s: valid=%v, want %v", l, p, res.Valid, want)
			}
			if want && len(res.Errors) != 0 {
				t.Errorf("%s/%s: unexpected errors %v", l, p, res.Errors)
			}
			if !want && len(res.Errors) != 1 {
				t.Errorf("%s/%s: want exactly one error, got %v", l, p, res.Errors)
			}
			if len(res.Warnings) != 0 {
				t.Errorf("%s/%s: compatibility check must not warn, got %v", l, p, res.Warnings)
			}
		}
	}
}

func TestValidateLayerPipelineCompatibility_BronzeProcessing(t *testing.T) {
	res := ValidateLayerPipelineCompatibility(layer.Bronze, pipeline.Processing)
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "not allowed for layer") {
		t.Errorf("errors = %v", res.Errors)
	}
	if !strings.Contains(res.Errors[0], "ingestion") {
		t.Errorf("error should list the allowed types: %q", res.Errors[0])
	}
}

func TestValidateMultipleProductsTechnology(t *testing.T) {
	c := newContract(layer.Silver)

	tests := []struct {
		name       string
		products   []product.Product
		wantErrors int
	}{
		{"no products", nil, 0},
		{"single product", []product.Product{{DataContractID: "c1", Technology: "Spark"}}, 0},
		{"distinct", []product.Product{
			{DataContractID: "c1", Technology: "Spark"},
			{DataContractID: "c1", Technology: "Databricks"},
		}, 0},
		{"duplicate", []product.Product{
			{DataContractID: "c1", Technology: "Databricks"},
			{DataContractID: "c1", Technology: "Databricks"},
		}, 1},
		{"three with one duplicate", []product.Product{
			{DataContractID: "c1", Technology: "Spark"},
			{DataContractID: "c1", Technology: "dbt"},
			{DataContractID: "c1", Technology: "Spark"},
		}, 1},
		{"both missing technology collide", []product.Product{
			{DataContractID: "c1"},
			{DataContractID: "c1"},
		}, 1},
		{"missing vs literal undefined collide", []product.Product{
			{DataContractID: "c1"},
			{DataContractID: "c1", Technology: "undefined"},
		}, 1},
		{"other contract ignored", []product.Product{
			{DataContractID: "c1", Technology: "Spark"},
			{DataContractID: "c2", Technology: "Spark"},
		}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateMultipleProductsTechnology(c, tc.products)
			if len(res.Errors) != tc.wantErrors {
				t.Fatalf("errors = %v, want %d", res.Errors, tc.wantErrors)
			}
			if res.Valid != (tc.wantErrors == 0) {
				t.Errorf("valid = %v", res.Valid)
			}
			if tc.wantErrors == 1 {
				if !strings.Contains(res.Errors[0], "same technology") {
					t.Errorf("error = %q", res.Errors[0])
				}
				if !strings.Contains(res.Errors[0], "card_transactions") {
					t.Errorf("error should name the contract: %q", res.Errors[0])
				}
			}
		})
	}
}

func TestValidatePipelineConfig(t *testing.T) {
	tests := []struct {
		name         string
		product      product.Product
		wantErrors   []string
		wantWarnings int
	}{
		{
			name:         "no pipeline type warns",
			product:      product.Product{Name: "p"},
			wantWarnings: 1,
		},
		{
			name: "ingestion ok",
			product: product.Product{PipelineType: pipeline.Ingestion,
				Config: product.IngestionConfig{Source: section(), Target: section()}},
		},
		{
			name: "ingestion pointer variant ok",
			product: product.Product{PipelineType: pipeline.Ingestion,
				Config: &product.IngestionConfig{Source: section(), Target: section()}},
		},
		{
			name: "training pointer variant missing artifact path",
			product: product.Product{PipelineType: pipeline.ModelTraining,
				Config: &product.TrainingConfig{Source: section(), Model: &product.Model{Name: "m"}}},
			wantErrors: []string{"artifact"},
		},
		{
			name: "nil pointer variant counts as missing",
			product: product.Product{PipelineType: pipeline.Processing,
				Config: (*product.ProcessingConfig)(nil)},
			wantErrors: []string{`"source"`, `"target"`},
		},
		{
			name: "serving pointer variant with target warns",
			product: product.Product{PipelineType: pipeline.ModelServing,
				Config: &product.ServingConfig{Model: &product.Model{}, Endpoint: section(), Target: section()}},
			wantWarnings: 1,
		},
		{
			name:       "ingestion missing everything",
			product:    product.Product{PipelineType: pipeline.Ingestion},
			wantErrors: []string{`"source"`, `"target"`},
		},
		{
			name: "processing missing target",
			product: product.Product{PipelineType: pipeline.Processing,
				Config: product.ProcessingConfig{Source: section()}},
			wantErrors: []string{`"target"`},
		},
		{
			name: "inference missing model",
			product: product.Product{PipelineType: pipeline.ModelInference,
				Config: product.InferenceConfig{Source: section(), Target: section()}},
			wantErrors: []string{`"model"`},
		},
		{
			name: "training ok without target",
			product: product.Product{PipelineType: pipeline.ModelTraining,
				Config: product.TrainingConfig{Source: section(),
					Model: &product.Model{ArtifactPath: "s3://m"}}},
		},
		{
			name: "training missing artifact path",
			product: product.Product{PipelineType: pipeline.ModelTraining,
				Config: product.TrainingConfig{Source: section(), Model: &product.Model{Name: "m"}}},
			wantErrors: []string{"artifact"},
		},
		{
			name: "serving ok",
			product: product.Product{PipelineType: pipeline.ModelServing,
				Config: product.ServingConfig{Model: &product.Model{}, Endpoint: section()}},
		},
		{
			name: "serving with target warns",
			product: product.Product{PipelineType: pipeline.ModelServing,
				Config: product.ServingConfig{Model: &product.Model{}, Endpoint: section(), Target: section()}},
			wantWarnings: 1,
		},
		{
			name: "variant mismatch counts as missing",
			product: product.Product{PipelineType: pipeline.Ingestion,
				Config: product.ServingConfig{Model: &product.Model{}, Endpoint: section()}},
			wantErrors: []string{`"source"`, `"target"`},
		},
		{
			name:       "unknown type",
			product:    product.Product{PipelineType: "streaming"},
			wantErrors: []string{"streaming"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidatePipelineConfig(&tc.product)
			if len(res.Errors) != len(tc.wantErrors) {
				t.Fatalf("errors = %v, want %d", res.Errors, len(tc.wantErrors))
			}
			for i, want := range tc.wantErrors {
				if !strings.Contains(res.Errors[i], want) {
					t.Errorf("error[%d] = %q, want substring %q", i, res.Errors[i], want)
				}
			}
			if len(res.Warnings) != tc.wantWarnings {
				t.Errorf("warnings = %v, want %d", res.Warnings, tc.wantWarnings)
			}
			if res.Valid != (len(tc.wantErrors) == 0) {
				t.Errorf("valid = %v", res.Valid)
			}
		})
	}
}

func TestValidatePipelineConfig_MissingFieldNamesPipeline(t *testing.T) {
	p := product.Product{Name: "lander", PipelineType: pipeline.Ingestion}
	res := ValidatePipelineConfig(&p)
	for _, e := range res.Errors {
		if !strings.Contains(e, "ingestion") {
			t.Errorf("error should name the pipeline type: %q", e)
		}
	}
}

func TestValidatePipelineConfig_Idempotent(t *testing.T) {
	p := product.Product{PipelineType: pipeline.ModelServing,
		Config: product.ServingConfig{Target: section()}}
	first := ValidatePipelineConfig(&p)
	second := ValidatePipelineConfig(&p)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestValidateDataContractWithProducts_BronzeIngestion(t *testing.T) {
	c := newContract(layer.Bronze)
	products := []product.Product{{
		ID: "p1", DataContractID: "c1", PipelineType: pipeline.Ingestion, Technology: "Airbyte",
		Config: product.IngestionConfig{Source: section(), Target: section()},
	}}
	res := ValidateDataContractWithProducts(c, products)
	if !res.Valid || len(res.Errors) != 0 {
		t.Errorf("expected valid, got %+v", res)
	}
}

func TestValidateDataContractWithProducts_ModelTrainingMissingArtifact(t *testing.T) {
	c := newContract(layer.Model)
	products := []product.Product{{
		ID: "p1", DataContractID: "c1", PipelineType: pipeline.ModelTraining,
		Config: product.TrainingConfig{Source: section()},
	}}
	res := ValidateDataContractWithProducts(c, products)
	if res.Valid {
		t.Fatal("expected invalid")
	}
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "artifact") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an artifact error, got %v", res.Errors)
	}
}

func TestValidateDataContractWithProducts_Ordering(t *testing.T) {
	c := newContract(layer.Bronze)
	products := []product.Product{
		{ID: "a", Name: "a", DataContractID: "c1", PipelineType: pipeline.Processing, Technology: "Spark"},
		{ID: "x", Name: "x", DataContractID: "other", PipelineType: pipeline.ModelTraining},
		{ID: "b", Name: "b", DataContractID: "c1", Technology: "Spark"},
	}
	res := ValidateDataContractWithProducts(c, products)

	// a: layer error, missing source, missing target; then technology collision.
	if len(res.Errors) != 4 {
		t.Fatalf("errors = %v", res.Errors)
	}
	if !strings.Contains(res.Errors[0], "not allowed for layer") {
		t.Errorf("layer check must come first: %q", res.Errors[0])
	}
	if !strings.Contains(res.Errors[1], `"source"`) || !strings.Contains(res.Errors[2], `"target"`) {
		t.Errorf("config errors out of order: %v", res.Errors[1:3])
	}
	if !strings.Contains(res.Errors[3], "same technology") {
		t.Errorf("technology check must come last: %q", res.Errors[3])
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], `"b"`) {
		t.Errorf("warnings = %v", res.Warnings)
	}
}
