package brewdesk

import "github.com/kailas-cloud/brewdesk/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument        = domain.ErrInvalidArgument
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
	ErrSchemaViolation        = domain.ErrSchemaViolation
	ErrSchemaVersionMismatch  = domain.ErrSchemaVersionMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrGenerationUnavailable  = domain.ErrGenerationUnavailable
	ErrTransient              = domain.ErrTransient
)
