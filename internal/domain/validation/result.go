package validation

// Result is the outcome of a validation check.
// Errors make a configuration illegal; warnings never block.
type Result struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK returns the zero-error success value.
func OK() Result {
	return Result{Valid: true, Errors: []string{}, Warnings: []string{}}
}

// AddError appends an error and marks the result invalid.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Valid = false
}

// AddWarning appends a warning. Validity is unchanged.
func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Merge appends other's errors and warnings in order and recomputes validity.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Valid = len(r.Errors) == 0
}
