package retrieval

import (
	"context"
	"log/slog"

	"github.com/siherrmann/manualrag/model"
)

// DefaultTopK is used when a non-positive topK is requested.
const DefaultTopK = 4

// Embedder turns a query into a vector, empty when no embedding is available.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// NeighborSearcher finds the passages closest to a vector.
type NeighborSearcher interface {
	NearestNeighbors(ctx context.Context, vector []float32, k int) []*model.RetrievedChunk
}

// Retriever embeds a query and looks up its nearest passages.
type Retriever struct {
	embedder    Embedder
	searcher    NeighborSearcher
	defaultTopK int
	logger      *slog.Logger
}

// NewRetriever creates a new retriever.
func NewRetriever(embedder Embedder, searcher NeighborSearcher, defaultTopK int, logger *slog.Logger) *Retriever {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &Retriever{
		embedder:    embedder,
		searcher:    searcher,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// Retrieve returns up to topK passages for query, most similar first.
// An empty result is a valid outcome and never an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []*model.RetrievedChunk {
	if topK <= 0 {
		topK = r.defaultTopK
	}

	vector := r.embedder.Embed(ctx, query)
	if len(vector) == 0 {
		r.logger.Warn("No embedding available for query, skipping retrieval", "query", query)
		return []*model.RetrievedChunk{}
	}

	chunks := r.searcher.NearestNeighbors(ctx, vector, topK)
	if len(chunks) == 0 {
		r.logger.Warn("No relevant chunks found", "query", query)
		return []*model.RetrievedChunk{}
	}

	r.logger.Info("Retrieved relevant chunks", "count", len(chunks))

	return chunks
}
