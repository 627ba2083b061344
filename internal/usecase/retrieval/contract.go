package retrieval

import (
	"context"

	"github.com/kailas-cloud/brewdesk/internal/domain"
)

// Embedder vectorizes query text with the same model used for the corpus.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
