package contract

import (
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain/catalog/layer"
)

// Status is the publication state of a contract.
type Status string

// Status constants.
const (
	Draft     Status = "draft"
	Published Status = "published"
	Archived  Status = "archived"
)

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	return s == Draft || s == Published || s == Archived
}

// Column is a single column of a contract table.
type Column struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Nullable    bool   `json:"nullable" yaml:"nullable"`
	PrimaryKey  bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// TableSchema is the table a contract commits to. Columns keep declaration order.
type TableSchema struct {
	TableName  string            `json:"table_name" yaml:"table_name"`
	Columns    []Column          `json:"columns" yaml:"columns"`
	Dictionary map[string]string `json:"dictionary,omitempty" yaml:"dictionary,omitempty"`
}

// PrimaryKey returns the names of the primary key columns in declaration order.
func (s TableSchema) PrimaryKey() []string {
	var keys []string
	for _, c := range s.Columns {
		if c.PrimaryKey {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

// QualityRule is a data quality expectation attached to a contract.
type QualityRule struct {
	Name      string   `json:"name" yaml:"name"`
	Column    string   `json:"column,omitempty" yaml:"column,omitempty"`
	Rule      string   `json:"rule" yaml:"rule"`
	Threshold *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Severity  string   `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// Tags classify a contract.
type Tags struct {
	Layer  layer.Layer `json:"layer" yaml:"layer"`
	Status Status      `json:"status" yaml:"status"`
	Labels []string    `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Contract is a schema commitment owned by a domain.
// The layer constrains which pipeline types products built against it may use.
type Contract struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	Domain       string        `json:"domain" yaml:"domain"`
	Collection   string        `json:"collection,omitempty" yaml:"collection,omitempty"`
	Owner        string        `json:"owner,omitempty" yaml:"owner,omitempty"`
	Schema       TableSchema   `json:"schema" yaml:"schema"`
	QualityRules []QualityRule `json:"quality_rules,omitempty" yaml:"quality_rules,omitempty"`
	Tags         Tags          `json:"tags" yaml:"tags"`
	QualityScore *float64      `json:"quality_score,omitempty" yaml:"quality_score,omitempty"`
	CreatedAt    time.Time     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt    time.Time     `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Layer returns the contract layer tag.
func (c *Contract) Layer() layer.Layer { return c.Tags.Layer }

// Status returns the contract status tag.
func (c *Contract) Status() Status { return c.Tags.Status }
