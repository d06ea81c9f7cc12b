package database

import (
	"context"
	"testing"
	"time"

	"github.com/siherrmann/manualrag/helper"
	"github.com/siherrmann/manualrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertTestPassages(t *testing.T, h *PassagesDBHandler) []*model.Passage {
	passages := []*model.Passage{
		{Title: "Ajuste de asientos", Content: "Tire de la palanca para desplazar el asiento.", Embedding: []float32{1, 0, 0, 0}},
		{Title: "Ajuste de retrovisores", Content: "Gire el mando hasta la posición deseada.", SubchunkIndex: 1, Embedding: []float32{0.8, 0.6, 0, 0}},
		{Title: "Climatización", Content: "Pulse el botón AUTO para activar la climatización automática del habitáculo.", Embedding: []float32{0, 1, 0, 0}},
		{Title: "Airbags", Content: "Los airbags frontales se activan en colisiones graves.", Embedding: []float32{0, 0, 1, 0}},
		{Title: "Sistema de luces", Content: "Gire el mando de luces.", Embedding: []float32{0, 0, 0, 1}},
	}

	for _, p := range passages {
		err := h.InsertPassage(context.Background(), p)
		require.NoError(t, err, "Expected InsertPassage to not return an error")
	}

	return passages
}

func TestPassagesNewPassagesDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewPassagesDBHandler", func(t *testing.T) {
		passagesDbHandler, err := NewPassagesDBHandler(database, testEmbeddingDim, true)
		assert.NoError(t, err, "Expected NewPassagesDBHandler to not return an error")
		require.NotNil(t, passagesDbHandler, "Expected NewPassagesDBHandler to return a non-nil instance")
		require.NotNil(t, passagesDbHandler.db.Instance, "Expected a non-nil database connection instance")
		assert.Equal(t, testEmbeddingDim, passagesDbHandler.EmbeddingDim())
	})

	t.Run("Invalid call NewPassagesDBHandler with nil database", func(t *testing.T) {
		_, err := NewPassagesDBHandler(nil, testEmbeddingDim, false)
		assert.Error(t, err, "Expected error when creating PassagesDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil")
		assert.Equal(t, helper.ErrKindStoreUnavailable, helper.KindOf(err))
	})

	t.Run("Invalid call NewPassagesDBHandler with zero dimension", func(t *testing.T) {
		_, err := NewPassagesDBHandler(database, 0, false)
		assert.Error(t, err)
		assert.Equal(t, helper.ErrKindInvalidArgument, helper.KindOf(err))
	})
}

func TestPassagesInsert(t *testing.T) {
	h := initPassages(t)

	t.Run("Insert passage with embedding", func(t *testing.T) {
		passage := &model.Passage{
			Title:         "Ajuste de asientos",
			Content:       "Tire de la palanca.",
			SubchunkIndex: 2,
			Embedding:     []float32{0.1, 0.2, 0.3, 0.4},
		}

		err := h.InsertPassage(context.Background(), passage)
		assert.NoError(t, err, "Expected Insert to not return an error")
		assert.NotZero(t, passage.ID, "Expected inserted passage to have an ID")
		assert.Equal(t, len("Tire de la palanca."), passage.CharCount, "Expected char count to be computed")
		assert.Equal(t, 2, passage.SubchunkIndex)
		assert.WithinDuration(t, time.Now(), passage.CreatedAt, 5*time.Second, "Expected CreatedAt to be set")
	})

	t.Run("Insert passage without embedding", func(t *testing.T) {
		passage := &model.Passage{Title: "Sin vector", Content: "Texto"}

		err := h.InsertPassage(context.Background(), passage)
		assert.NoError(t, err)
		assert.NotZero(t, passage.ID)
	})

	t.Run("Insert passage with wrong dimension", func(t *testing.T) {
		passage := &model.Passage{Title: "Mal", Content: "Texto", Embedding: []float32{1, 2}}

		err := h.InsertPassage(context.Background(), passage)
		assert.Error(t, err)
		assert.Equal(t, helper.ErrKindDimensionMismatch, helper.KindOf(err))
	})
}

func TestPassagesSelectBySimilarity(t *testing.T) {
	h := initPassages(t)
	passages := insertTestPassages(t, h)
	ctx := context.Background()

	t.Run("Returns k nearest passages by descending similarity", func(t *testing.T) {
		chunks, err := h.SelectPassagesBySimilarity(ctx, []float32{1, 0, 0, 0}, 4)
		require.NoError(t, err)
		require.Len(t, chunks, 4)

		assert.Equal(t, passages[0].ID, chunks[0].ChunkID, "Expected exact match first")
		assert.InDelta(t, 1.0, chunks[0].Similarity, 1e-6)
		assert.Equal(t, passages[1].ID, chunks[1].ChunkID)
		assert.InDelta(t, 0.8, chunks[1].Similarity, 1e-6)
		assert.Equal(t, 1, chunks[1].SubchunkIndex)

		for i := 1; i < len(chunks); i++ {
			assert.GreaterOrEqual(t, chunks[i-1].Similarity, chunks[i].Similarity, "Expected descending similarity")
		}
	})

	t.Run("Equal distances are ordered by id", func(t *testing.T) {
		chunks, err := h.SelectPassagesBySimilarity(ctx, []float32{1, 0, 0, 0}, 5)
		require.NoError(t, err)
		require.Len(t, chunks, 5)

		// Climatización, Airbags and Sistema de luces are all orthogonal to the query
		assert.Equal(t, passages[2].ID, chunks[2].ChunkID)
		assert.Equal(t, passages[3].ID, chunks[3].ChunkID)
		assert.Equal(t, passages[4].ID, chunks[4].ChunkID)
	})

	t.Run("Repeated calls are deterministic", func(t *testing.T) {
		query := []float32{0.5, 0.5, 0.1, 0}
		first, err := h.SelectPassagesBySimilarity(ctx, query, 4)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			again, err := h.SelectPassagesBySimilarity(ctx, query, 4)
			require.NoError(t, err)
			require.Len(t, again, len(first))
			for j := range first {
				assert.Equal(t, first[j].ChunkID, again[j].ChunkID)
			}
		}
	})

	t.Run("Invalid k is rejected", func(t *testing.T) {
		_, err := h.SelectPassagesBySimilarity(ctx, []float32{1, 0, 0, 0}, 0)
		assert.Error(t, err)
		assert.Equal(t, helper.ErrKindInvalidArgument, helper.KindOf(err))
	})

	t.Run("Wrong dimension is rejected", func(t *testing.T) {
		_, err := h.SelectPassagesBySimilarity(ctx, []float32{1, 0, 0}, 4)
		assert.Error(t, err)
		assert.Equal(t, helper.ErrKindDimensionMismatch, helper.KindOf(err))
	})
}

func TestPassagesSelectByTitle(t *testing.T) {
	h := initPassages(t)
	passages := insertTestPassages(t, h)
	ctx := context.Background()

	t.Run("Case-insensitive substring ordered by char count", func(t *testing.T) {
		chunks, err := h.SelectPassagesByTitle(ctx, "AJUSTE", 10)
		require.NoError(t, err)
		require.Len(t, chunks, 2)

		assert.Equal(t, passages[0].ID, chunks[0].ChunkID, "Expected the longer passage first")
		assert.Equal(t, passages[1].ID, chunks[1].ChunkID)
		assert.GreaterOrEqual(t, chunks[0].CharCount, chunks[1].CharCount)
		assert.Zero(t, chunks[0].Similarity, "Expected no similarity for title search")
	})

	t.Run("Limit caps the result", func(t *testing.T) {
		chunks, err := h.SelectPassagesByTitle(ctx, "ajuste", 1)
		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	})

	t.Run("Wildcards are matched literally", func(t *testing.T) {
		chunks, err := h.SelectPassagesByTitle(ctx, "%", 10)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("No match returns empty", func(t *testing.T) {
		chunks, err := h.SelectPassagesByTitle(ctx, "inexistente", 10)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

func TestPassagesSelectCorpusStatistics(t *testing.T) {
	h := initPassages(t)
	ctx := context.Background()

	t.Run("Empty table", func(t *testing.T) {
		stats, err := h.SelectCorpusStatistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.TotalChunks)
		assert.Equal(t, int64(0), stats.DistinctTitles)
		assert.Equal(t, 0.0, stats.MeanCharCount)
		assert.Nil(t, stats.LastInsert)
	})

	t.Run("Populated table", func(t *testing.T) {
		passages := insertTestPassages(t, h)

		total := 0
		for _, p := range passages {
			total += p.CharCount
		}

		stats, err := h.SelectCorpusStatistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), stats.TotalChunks)
		assert.Equal(t, int64(5), stats.DistinctTitles)
		assert.InDelta(t, float64(total)/5.0, stats.MeanCharCount, 1e-6)
		require.NotNil(t, stats.LastInsert)
		assert.WithinDuration(t, time.Now(), *stats.LastInsert, time.Minute)
	})
}

func TestPassagesSelectHealth(t *testing.T) {
	h := initPassages(t)

	health, err := h.SelectHealth(context.Background())
	require.NoError(t, err)
	assert.True(t, health.VectorExtensionInstalled)
	assert.True(t, health.TableExists)
	assert.True(t, health.VectorIndexExists)
	assert.True(t, health.ConnectionOK)
	assert.Empty(t, health.Error)
}
