package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument signals a malformed request (empty question, k <= 0).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDimensionMismatch signals an embedding dimension incompatibility.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrUnsupportedQuery signals that no safe structured query could be derived.
	ErrUnsupportedQuery = errors.New("unsupported query")
	// ErrGenerationUnavailable signals a text generation provider failure.
	ErrGenerationUnavailable = errors.New("generation unavailable")
	// ErrSchemaViolation signals a query outside the outlet allow-list.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrSchemaVersionMismatch signals an allow-list version the translator does not know.
	ErrSchemaVersionMismatch = errors.New("schema version mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrTransient marks a failure worth one retry.
	ErrTransient = errors.New("transient failure")
)

// SchemaViolationError wraps ErrSchemaViolation with the offending field/operator pair.
type SchemaViolationError struct {
	Field    string
	Operator string
}

func (e *SchemaViolationError) Error() string {
	if e.Operator == "" {
		return fmt.Sprintf("%s: field %q is not allow-listed", ErrSchemaViolation.Error(), e.Field)
	}
	return fmt.Sprintf("%s: operator %q is not allow-listed for field %q",
		ErrSchemaViolation.Error(), e.Operator, e.Field)
}

func (e *SchemaViolationError) Unwrap() error { return ErrSchemaViolation }

// NewSchemaViolation creates a schema violation error.
func NewSchemaViolation(field, operator string) error {
	return &SchemaViolationError{Field: field, Operator: operator}
}

// DimensionMismatchError wraps ErrDimensionMismatch with the expected and actual sizes.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrDimensionMismatch.Error(), e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(want, got int) error {
	return &DimensionMismatchError{Want: want, Got: got}
}

// IsTransient reports whether err is marked as retryable.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsHardFailure reports whether err indicates a configuration bug that must not be
// recovered into a degraded answer.
func IsHardFailure(err error) bool {
	return errors.Is(err, ErrSchemaViolation) || errors.Is(err, ErrDimensionMismatch)
}
