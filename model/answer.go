package model

// Source attributes a generated answer to one retrieved passage.
type Source struct {
	Title         string  `json:"title"`
	Similarity    float64 `json:"similarity"`
	SubchunkIndex int     `json:"subchunk_index"`
	ChunkID       int     `json:"chunk_id"`
}

// GeneratedAnswer is the output of the generation stage.
// ContextUsed and Sources follow the order of the retrieved chunks.
type GeneratedAnswer struct {
	Text        string   `json:"text"`
	ContextUsed []string `json:"context_used"`
	Confidence  float64  `json:"confidence"`
	Sources     []Source `json:"sources"`
}

// FallbackAnswer returns an answer without sources and zero confidence.
func FallbackAnswer(text string) *GeneratedAnswer {
	return &GeneratedAnswer{
		Text:        text,
		ContextUsed: []string{},
		Confidence:  0.0,
		Sources:     []Source{},
	}
}

// SourcesOf mirrors chunks into source attributions, keeping their order.
func SourcesOf(chunks []*RetrievedChunk) []Source {
	sources := make([]Source, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, Source{
			Title:         chunk.Title,
			Similarity:    chunk.Similarity,
			SubchunkIndex: chunk.SubchunkIndex,
			ChunkID:       chunk.ChunkID,
		})
	}
	return sources
}

// MeanSimilarity is the arithmetic mean of the chunk similarities, 0 for no chunks.
func MeanSimilarity(chunks []*RetrievedChunk) float64 {
	if len(chunks) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, chunk := range chunks {
		sum += chunk.Similarity
	}
	return sum / float64(len(chunks))
}
