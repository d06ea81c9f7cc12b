package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/siherrmann/manualrag/database"
	"github.com/siherrmann/manualrag/helper"
	"github.com/siherrmann/manualrag/model"
)

// Store wraps the passages data layer and never returns an error.
// Failures are logged with their kind and replaced by empty results.
type Store struct {
	passages database.PassagesDBHandlerFunctions
	timeout  time.Duration
	logger   *slog.Logger
}

// NewStore creates a new store accessor.
func NewStore(passages database.PassagesDBHandlerFunctions, timeout time.Duration, logger *slog.Logger) *Store {
	return &Store{
		passages: passages,
		timeout:  timeout,
		logger:   logger,
	}
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// NearestNeighbors returns the k passages most similar to vector, most similar first.
func (s *Store) NearestNeighbors(ctx context.Context, vector []float32, k int) []*model.RetrievedChunk {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	chunks, err := s.passages.SelectPassagesBySimilarity(ctx, vector, k)
	if err != nil {
		s.logger.Error("Error in similarity search", "error", err, "error_kind", helper.KindOf(err), "k", k)
		return []*model.RetrievedChunk{}
	}
	if chunks == nil {
		return []*model.RetrievedChunk{}
	}

	return chunks
}

// SearchByTitle returns passages whose title contains substring, longest first.
func (s *Store) SearchByTitle(ctx context.Context, substring string, limit int) []*model.RetrievedChunk {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	chunks, err := s.passages.SelectPassagesByTitle(ctx, substring, limit)
	if err != nil {
		s.logger.Error("Error in title search", "error", err, "error_kind", helper.KindOf(err), "title", substring)
		return []*model.RetrievedChunk{}
	}
	if chunks == nil {
		return []*model.RetrievedChunk{}
	}

	return chunks
}

// CorpusStatistics returns the corpus statistics or nil if any of them failed.
func (s *Store) CorpusStatistics(ctx context.Context) *model.CorpusStatistics {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stats, err := s.passages.SelectCorpusStatistics(ctx)
	if err != nil {
		s.logger.Warn("Error getting corpus statistics", "error", err, "error_kind", helper.KindOf(err))
		return nil
	}

	return stats
}

// HealthCheck reports the state of the store.
// An unreachable store yields all flags false and a non-empty error.
func (s *Store) HealthCheck(ctx context.Context) *model.StoreHealth {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	health, err := s.passages.SelectHealth(ctx)
	if err != nil {
		s.logger.Error("Error in health check", "error", err, "error_kind", helper.KindOf(err))
		return model.UnreachableStore(err)
	}

	return health
}
