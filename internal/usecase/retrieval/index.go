package retrieval

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/chunk"
	"github.com/kailas-cloud/brewdesk/internal/domain/evidence"
)

// Options tune a single search.
type Options struct {
	K        int
	MinScore float64
	Price    *PriceRange
}

// Index is an exact in-memory cosine index over product chunks.
// Built once at startup and read-only afterwards, so it is safe for concurrent use.
type Index struct {
	chunks []chunk.Chunk
	norms  []float64
	dims   int
	embed  Embedder
}

// New builds the index. Every chunk must carry exactly dims components.
func New(chunks []chunk.Chunk, embed Embedder, dims int) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidArgument, dims)
	}
	if embed == nil {
		return nil, fmt.Errorf("%w: embedder is required", domain.ErrInvalidArgument)
	}

	seen := make(map[string]bool, len(chunks))
	norms := make([]float64, len(chunks))
	kept := make([]chunk.Chunk, len(chunks))
	for i, c := range chunks {
		if c.ID() == "" {
			return nil, fmt.Errorf("%w: chunk %d has no id", domain.ErrInvalidArgument, i)
		}
		if seen[c.ID()] {
			return nil, fmt.Errorf("%w: duplicate chunk id %q", domain.ErrInvalidArgument, c.ID())
		}
		seen[c.ID()] = true
		if c.Dimensions() != dims {
			return nil, fmt.Errorf("chunk %q: %w", c.ID(), domain.NewDimensionMismatch(dims, c.Dimensions()))
		}
		kept[i] = c
		norms[i] = norm(c.Embedding())
	}

	return &Index{chunks: kept, norms: norms, dims: dims, embed: embed}, nil
}

// Len returns the number of indexed chunks.
func (x *Index) Len() int { return len(x.chunks) }

// Dimensions returns the pinned embedding dimension.
func (x *Index) Dimensions() int { return x.dims }

// Search returns at most k chunks nearest to text.
func (x *Index) Search(ctx context.Context, text string, k int) ([]evidence.Evidence, error) {
	return x.SearchWithOptions(ctx, text, Options{K: k})
}

// SearchWithOptions ranks every chunk by cosine similarity, then applies the
// price and min-score post-filters and truncates to K.
func (x *Index) SearchWithOptions(ctx context.Context, text string, opts Options) ([]evidence.Evidence, error) {
	if opts.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, opts.K)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrInvalidArgument)
	}
	if len(x.chunks) == 0 {
		return []evidence.Evidence{}, nil
	}

	res, err := x.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(res.Embedding) != x.dims {
		return nil, fmt.Errorf("query vector: %w", domain.NewDimensionMismatch(x.dims, len(res.Embedding)))
	}

	qnorm := norm(res.Embedding)
	scored := make([]evidence.Evidence, 0, len(x.chunks))
	for i, c := range x.chunks {
		if opts.Price != nil {
			price, ok := c.Price()
			if !ok || !opts.Price.Contains(price) {
				continue
			}
		}
		s := cosine(res.Embedding, c.Embedding(), qnorm, x.norms[i])
		if s < opts.MinScore && opts.MinScore > 0 {
			continue
		}
		scored = append(scored, evidence.New(c.ID(), c.Text(), s))
	}

	evidence.Sort(scored)
	if len(scored) > opts.K {
		scored = scored[:opts.K]
	}
	return scored, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// cosine returns 0 for zero vectors instead of NaN.
func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (na * nb)
}
