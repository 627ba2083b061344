package evidence

import (
	"math"
	"sort"
)

// Evidence is a retrieved product chunk with its similarity score in [-1, 1].
type Evidence struct {
	chunkID string
	text    string
	score   float64
}

// New creates evidence, clamping the score into [-1, 1]. NaN becomes -1.
func New(chunkID, text string, score float64) Evidence {
	switch {
	case math.IsNaN(score):
		score = -1
	case score > 1:
		score = 1
	case score < -1:
		score = -1
	}
	return Evidence{chunkID: chunkID, text: text, score: score}
}

// ChunkID returns the source chunk identifier.
func (e Evidence) ChunkID() string { return e.chunkID }

// Text returns the chunk text.
func (e Evidence) Text() string { return e.text }

// Score returns the similarity score.
func (e Evidence) Score() float64 { return e.score }

// Sort orders evidence by descending score, ties broken by ascending chunk id.
func Sort(items []Evidence) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].chunkID < items[j].chunkID
	})
}

// IDs returns the chunk ids in order.
func IDs(items []Evidence) []string {
	ids := make([]string, len(items))
	for i, e := range items {
		ids[i] = e.chunkID
	}
	return ids
}
