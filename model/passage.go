package model

import (
	"time"
)

// UntitledPassage is used for passages stored without a title.
const UntitledPassage = "Sin título"

// Passage is a stored unit of manual text with its embedding.
// SubchunkIndex is 0 for a whole document and the sub-section ordinal otherwise.
type Passage struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	CharCount     int       `json:"char_count"`
	SubchunkIndex int       `json:"subchunk_index"`
	Embedding     []float32 `json:"embedding,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// RetrievedChunk is a passage returned by a store lookup.
// Similarity is 1 - cosine distance and is zero for title lookups.
type RetrievedChunk struct {
	ChunkID       int       `json:"chunk_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Similarity    float64   `json:"similarity"`
	SubchunkIndex int       `json:"subchunk_index"`
	CharCount     int       `json:"char_count"`
	CreatedAt     time.Time `json:"created_at"`
}
