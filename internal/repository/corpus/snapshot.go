package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/chunk"
)

// Sources.
const (
	SourceJSON = "json"
	SourceBolt = "bolt"
)

// Snapshot is a prebuilt product corpus: chunks with embeddings produced by Model.
type Snapshot struct {
	Model      string
	Dimensions int
	Chunks     []chunk.Chunk
}

// CheckCompatible verifies the snapshot was embedded the way queries will be.
func (s Snapshot) CheckCompatible(model string, dims int) error {
	if s.Model != "" && model != "" && s.Model != model {
		return fmt.Errorf("%w: corpus embedded with %q, queries use %q",
			domain.ErrDimensionMismatch, s.Model, model)
	}
	if s.Dimensions != 0 && s.Dimensions != dims {
		return fmt.Errorf("corpus: %w", domain.NewDimensionMismatch(dims, s.Dimensions))
	}
	return nil
}

// chunkRow is the serialized chunk shared by the JSON and bolt formats.
type chunkRow struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (r chunkRow) toChunk() chunk.Chunk {
	return chunk.New(r.ID, r.Text, r.Embedding, r.Metadata)
}

func rowFromChunk(c chunk.Chunk) chunkRow {
	return chunkRow{ID: c.ID(), Text: c.Text(), Embedding: c.Embedding(), Metadata: c.AllMetadata()}
}

// Load reads a snapshot from the given source kind.
// A missing file is reported as domain.ErrNotFound.
func Load(source, path string) (Snapshot, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, fmt.Errorf("corpus %s: %w", path, domain.ErrNotFound)
	}
	switch source {
	case SourceJSON, "":
		return LoadJSON(path)
	case SourceBolt:
		return LoadBolt(path)
	default:
		return Snapshot{}, fmt.Errorf("unknown corpus source %q", source)
	}
}
