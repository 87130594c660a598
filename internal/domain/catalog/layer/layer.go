package layer

import (
	"fmt"
	"strings"
)

// Layer is the data maturity tier of a contract.
type Layer string

// Layer constants in ascending order of refinement.
const (
	Bronze Layer = "Bronze"
	Silver Layer = "Silver"
	Gold   Layer = "Gold"
	// Model holds feature sets and artifacts consumed by model training.
	Model Layer = "Model"
)

// All lists every known layer in canonical order.
func All() []Layer {
	return []Layer{Bronze, Silver, Gold, Model}
}

// IsValid checks if the layer is one of the supported values.
func (l Layer) IsValid() bool {
	return l == Bronze || l == Silver || l == Gold || l == Model
}

func (l Layer) String() string { return string(l) }

// Parse resolves a layer name case-insensitively ("gold", "GOLD" -> Gold).
func Parse(s string) (Layer, error) {
	for _, l := range All() {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown layer %q", s)
}
