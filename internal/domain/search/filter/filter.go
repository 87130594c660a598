package filter

import "fmt"

// MaxValuesPerDimension caps the allowed values in a single filter dimension.
const MaxValuesPerDimension = 64

// Filters restrict search results. Dimensions are ANDed; an empty dimension
// imposes no constraint.
type Filters struct {
	Domains      []string `json:"domains,omitempty"`
	Layers       []string `json:"layers,omitempty"`
	Statuses     []string `json:"statuses,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// Target is the set of filterable fields of an entity.
type Target struct {
	Domain     string
	Layer      string
	Status     string
	Technology string
}

// IsEmpty reports whether no dimension is active.
func (f Filters) IsEmpty() bool {
	return len(f.Domains) == 0 && len(f.Layers) == 0 &&
		len(f.Statuses) == 0 && len(f.Technologies) == 0
}

// Matches reports whether t passes every active dimension.
// An entity without a value for an active dimension is excluded.
func (f Filters) Matches(t Target) bool {
	return allows(f.Domains, t.Domain) &&
		allows(f.Layers, t.Layer) &&
		allows(f.Statuses, t.Status) &&
		allows(f.Technologies, t.Technology)
}

func allows(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// Validate checks dimension sizes.
func (f Filters) Validate() error {
	dims := []struct {
		name   string
		values []string
	}{
		{"domain", f.Domains},
		{"layer", f.Layers},
		{"status", f.Statuses},
		{"technology", f.Technologies},
	}
	for _, d := range dims {
		if len(d.values) > MaxValuesPerDimension {
			return fmt.Errorf("too many %s filter values (max %d)", d.name, MaxValuesPerDimension)
		}
	}
	return nil
}
