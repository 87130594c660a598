package catalogd

import "github.com/kailas-cloud/catalogd/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound              = domain.ErrNotFound
	ErrInvalidRequest        = domain.ErrInvalidRequest
	ErrDataSourceUnavailable = domain.ErrDataSourceUnavailable
	ErrIndexBuild            = domain.ErrIndexBuild
	ErrSuperseded            = domain.ErrSuperseded
	ErrExpanderProviderError = domain.ErrExpanderProviderError
)
