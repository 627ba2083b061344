package compose

import (
	"context"

	"github.com/kailas-cloud/brewdesk/internal/domain"
)

// Generator is the external text generation capability.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}
