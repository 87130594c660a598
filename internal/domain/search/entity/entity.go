package entity

// Type is the kind of indexed catalog entity.
type Type string

// Entity type constants.
const (
	Domain   Type = "domain"
	Contract Type = "contract"
	Product  Type = "product"
)

// IsValid checks if the entity type is one of the supported values.
func (t Type) IsValid() bool {
	return t == Domain || t == Contract || t == Product
}

// Boost is the ranking multiplier applied to results of this type.
func (t Type) Boost() float64 {
	switch t {
	case Domain:
		return 1.2
	case Contract:
		return 1.1
	default:
		return 1.0
	}
}

// Action is something a user may do with a search result.
type Action string

// Action constants.
const (
	Navigate Action = "navigate"
	Cart     Action = "cart"
	Preview  Action = "preview"
)

// Actions returns the permitted actions for results of this type.
func (t Type) Actions() []Action {
	switch t {
	case Domain:
		return []Action{Navigate}
	case Contract:
		return []Action{Navigate, Preview}
	case Product:
		return []Action{Navigate, Cart, Preview}
	}
	return nil
}
