package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kailas-cloud/brewdesk/internal/domain/chunk"
)

type snapshotFile struct {
	Model      string     `json:"model"`
	Dimensions int        `json:"dimensions"`
	Chunks     []chunkRow `json:"chunks"`
}

// DecodeJSON reads a snapshot document.
func DecodeJSON(r io.Reader) (Snapshot, error) {
	var f snapshotFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return Snapshot{}, fmt.Errorf("decode corpus: %w", err)
	}
	chunks := make([]chunk.Chunk, len(f.Chunks))
	for i, row := range f.Chunks {
		chunks[i] = row.toChunk()
	}
	return Snapshot{Model: f.Model, Dimensions: f.Dimensions, Chunks: chunks}, nil
}

// LoadJSON reads a snapshot file.
func LoadJSON(path string) (Snapshot, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return Snapshot{}, fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeJSON(f)
}
