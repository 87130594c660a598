package product

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/contract"
	"github.com/kailas-cloud/catalogd/internal/domain/catalog/pipeline"
)

// UndefinedTechnology is the technology a product without one is compared as.
const UndefinedTechnology = "undefined"

// Product is one pipeline implementation built against a data contract.
type Product struct {
	ID             string          `json:"id" yaml:"id"`
	Name           string          `json:"name" yaml:"name"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	DataContractID string          `json:"data_contract_id" yaml:"data_contract_id"`
	PipelineType   pipeline.Type   `json:"pipeline_type,omitempty" yaml:"pipeline_type,omitempty"`
	Technology     string          `json:"technology,omitempty" yaml:"technology,omitempty"`
	Config         Config          `json:"config,omitempty" yaml:"-"`
	Status         contract.Status `json:"status,omitempty" yaml:"status,omitempty"`
	QualityScore   *float64        `json:"quality_score,omitempty" yaml:"quality_score,omitempty"`
}

// TechnologyKey returns the technology used for uniqueness checks.
func (p *Product) TechnologyKey() string {
	if p.Technology == "" {
		return UndefinedTechnology
	}
	return p.Technology
}

// ForContract filters products down to those built against contractID, keeping order.
func ForContract(products []Product, contractID string) []Product {
	out := make([]Product, 0, len(products))
	for i := range products {
		if products[i].DataContractID == contractID {
			out = append(out, products[i])
		}
	}
	return out
}

type productAlias Product

// UnmarshalJSON decodes the config variant according to pipeline_type.
func (p *Product) UnmarshalJSON(data []byte) error {
	var aux struct {
		productAlias
		Config json.RawMessage `json:"config"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decode product: %w", err)
	}
	cfg, err := DecodeJSONConfig(aux.PipelineType, aux.Config)
	if err != nil {
		return fmt.Errorf("product %q: %w", aux.ID, err)
	}
	*p = Product(aux.productAlias)
	p.Config = cfg
	return nil
}

// UnmarshalYAML decodes the config variant according to pipeline_type.
func (p *Product) UnmarshalYAML(node *yaml.Node) error {
	var aux struct {
		productAlias `yaml:",inline"`
		Config       yaml.Node `yaml:"config"`
	}
	if err := node.Decode(&aux); err != nil {
		return fmt.Errorf("decode product: %w", err)
	}
	cfg, err := DecodeYAMLConfig(aux.PipelineType, &aux.Config)
	if err != nil {
		return fmt.Errorf("product %q: %w", aux.ID, err)
	}
	*p = Product(aux.productAlias)
	p.Config = cfg
	return nil
}
