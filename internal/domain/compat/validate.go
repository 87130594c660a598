package compat

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/product"
	"github.com/kailas-cloud/catalogd/internal/domain/validation"
)

// ValidateLayerPipelineCompatibility checks t against the layer table.
// A violation yields exactly one error; warnings are never produced.
func ValidateLayerPipelineCompatibility(l layer.Layer, t pipeline.Type) validation.Result {
	res := validation.OK()
	if isAllowed(l, t) {
		return res
	}
	allowed := make([]string, 0, len(allowedPipelines[l]))
	for _, a := range allowedPipelines[l] {
		allowed = append(allowed, string(a))
	}
	res.AddError(fmt.Sprintf(
		"Pipeline type %q is not allowed for layer %q. Allowed types: %s",
		t, l, strings.Join(allowed, ", "),
	))
	return res
}

// ValidateMultipleProductsTechnology requires distinct technologies among the
// products of c. Products without a technology all count as "undefined".
func ValidateMultipleProductsTechnology(c *contract.Contract, products []product.Product) validation.Result {
	res := validation.OK()
	own := product.ForContract(products, c.ID)
	if len(own) <= 1 {
		return res
	}

	seen := make(map[string]struct{}, len(own))
	for i := range own {
		seen[own[i].TechnologyKey()] = struct{}{}
	}
	if len(seen) < len(own) {
		res.AddError(fmt.Sprintf(
			"Data contract %q has multiple products with the same technology. "+
				"Each product of a contract must use a different technology",
			contractLabel(c),
		))
	}
	return res
}

// ValidatePipelineConfig checks the required configuration fields for the
// product's pipeline type. An unset pipeline type is only a warning.
func ValidatePipelineConfig(p *product.Product) validation.Result {
	res := validation.OK()
	if !p.PipelineType.IsSet() {
		res.AddWarning(noPipelineTypeWarning(p))
		return res
	}

	missing := func(field string) {
		res.AddError(fmt.Sprintf(
			"Missing required field %q in config of %s pipeline %q",
			field, p.PipelineType, productLabel(p),
		))
	}

	config := product.Normalize(p.Config)
	switch p.PipelineType {
	case pipeline.Ingestion:
		cfg, _ := config.(product.IngestionConfig)
		if cfg.Source == nil {
			missing("source")
		}
		if cfg.Target == nil {
			missing("target")
		}
	case pipeline.Processing:
		cfg, _ := config.(product.ProcessingConfig)
		if cfg.Source == nil {
			missing("source")
		}
		if cfg.Target == nil {
			missing("target")
		}
	case pipeline.ModelInference:
		cfg, _ := config.(product.InferenceConfig)
		if cfg.Source == nil {
			missing("source")
		}
		if cfg.Model == nil {
			missing("model")
		}
		if cfg.Target == nil {
			missing("target")
		}
	case pipeline.ModelTraining:
		cfg, _ := config.(product.TrainingConfig)
		if cfg.Source == nil {
			missing("source")
		}
		if cfg.Model == nil || cfg.Model.ArtifactPath == "" {
			missing("model.artifact_path")
		}
	case pipeline.ModelServing:
		cfg, _ := config.(product.ServingConfig)
		if cfg.Model == nil {
			missing("model")
		}
		if cfg.Endpoint == nil {
			missing("endpoint")
		}
		if cfg.Target != nil {
			res.AddWarning(fmt.Sprintf(
				"Target of model_serving pipeline %q is optional and is treated as a logging table",
				productLabel(p),
			))
		}
	default:
		res.AddError(fmt.Sprintf("Unknown pipeline type %q for product %q", p.PipelineType, productLabel(p)))
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateDataContractWithProducts runs every check for c and the products built
// against it: per product the layer check then the config check, in product
// order, followed by one technology uniqueness check.
func ValidateDataContractWithProducts(c *contract.Contract, products []product.Product) validation.Result {
	res := validation.OK()
	own := product.ForContract(products, c.ID)

	for i := range own {
		p := &own[i]
		if !p.PipelineType.IsSet() {
			res.AddWarning(noPipelineTypeWarning(p))
			continue
		}
		res.Merge(ValidateLayerPipelineCompatibility(c.Layer(), p.PipelineType))
		res.Merge(ValidatePipelineConfig(p))
	}

	res.Merge(ValidateMultipleProductsTechnology(c, products))
	return res
}

func noPipelineTypeWarning(p *product.Product) string {
	return fmt.Sprintf("Product %q has no pipeline type defined", productLabel(p))
}

func productLabel(p *product.Product) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func contractLabel(c *contract.Contract) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
