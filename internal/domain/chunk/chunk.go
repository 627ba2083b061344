package chunk

import (
	"strconv"
	"strings"
)

// MetaPrice is the source metadata key carrying the product price in RM.
const MetaPrice = "price"

// Chunk is a bounded span of product text stored with its embedding. Immutable once built.
type Chunk struct {
	id        string
	text      string
	embedding []float32
	metadata  map[string]string
}

// New creates a chunk. The embedding and metadata are copied.
func New(id, text string, embedding []float32, metadata map[string]string) Chunk {
	emb := make([]float32, len(embedding))
	copy(emb, embedding)

	var meta map[string]string
	if len(metadata) > 0 {
		meta = make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}
	return Chunk{id: id, text: text, embedding: emb, metadata: meta}
}

// ID returns the chunk identifier.
func (c Chunk) ID() string { return c.id }

// Text returns the chunk text.
func (c Chunk) Text() string { return c.text }

// Embedding returns the chunk vector. Callers must not mutate it.
func (c Chunk) Embedding() []float32 { return c.embedding }

// Dimensions returns the embedding length.
func (c Chunk) Dimensions() int { return len(c.embedding) }

// Metadata returns the value of a source metadata key.
func (c Chunk) Metadata(key string) (string, bool) {
	v, ok := c.metadata[key]
	return v, ok
}

// AllMetadata returns a copy of the source metadata.
func (c Chunk) AllMetadata() map[string]string {
	if c.metadata == nil {
		return nil
	}
	out := make(map[string]string, len(c.metadata))
	for k, v := range c.metadata {
		out[k] = v
	}
	return out
}

// MetadataLen returns the number of metadata entries.
func (c Chunk) MetadataLen() int { return len(c.metadata) }

// Price parses the "price" metadata. Accepts "RM 55.00", "rm55", "55".
func (c Chunk) Price() (float64, bool) {
	raw, ok := c.metadata[MetaPrice]
	if !ok {
		return 0, false
	}
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "rm")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
