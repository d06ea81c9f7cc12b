package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/manualrag/helper"
	"github.com/siherrmann/manualrag/model"
	loadSql "github.com/siherrmann/manualrag/sql"
)

const passagesTable = "passages"

// PassagesDBHandlerFunctions defines the interface for Passages database operations.
type PassagesDBHandlerFunctions interface {
	InsertPassage(ctx context.Context, passage *model.Passage) error
	SelectPassagesBySimilarity(ctx context.Context, embedding []float32, k int) ([]*model.RetrievedChunk, error)
	SelectPassagesByTitle(ctx context.Context, title string, limit int) ([]*model.RetrievedChunk, error)
	SelectCorpusStatistics(ctx context.Context) (*model.CorpusStatistics, error)
	SelectHealth(ctx context.Context) (*model.StoreHealth, error)
}

// PassagesDBHandler handles passage-related database operations.
// Every operation draws its own connection from the pool and releases it before returning.
type PassagesDBHandler struct {
	db           *helper.Database
	embeddingDim int
}

// NewPassagesDBHandler creates a new passages database handler.
// It loads the passage SQL functions and makes sure the table and vector index exist.
// If force is true, it will reload the SQL functions even if they already exist.
func NewPassagesDBHandler(db *helper.Database, embeddingDim int, force bool) (*PassagesDBHandler, error) {
	if db == nil || db.Instance == nil {
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewKindError(helper.ErrKindInvalidArgument, "embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	passagesDbHandler := &PassagesDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := loadSql.LoadPassagesSql(passagesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "load passages sql", err)
	}

	err = passagesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized PassagesDBHandler", "embedding_dim", embeddingDim)

	return passagesDbHandler, nil
}

// CreateTable creates the 'passages' table and its indexes if they do not exist.
func (h *PassagesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_passages($1);`, h.embeddingDim)
	if err != nil {
		return helper.NewKindError(helper.ErrKindStoreQuery, "init passages", err)
	}

	h.db.Logger.Info("Checked/created table passages")

	return nil
}

// EmbeddingDim returns the dimension query vectors must have.
func (h *PassagesDBHandler) EmbeddingDim() int {
	return h.embeddingDim
}

// InsertPassage inserts a new passage and fills its generated fields.
func (h *PassagesDBHandler) InsertPassage(ctx context.Context, passage *model.Passage) error {
	var embedding interface{}
	if passage.Embedding != nil {
		if err := h.checkDimension(passage.Embedding); err != nil {
			return err
		}
		embedding = pgvector.NewVector(passage.Embedding)
	}

	conn, err := h.db.Instance.Conn(ctx)
	if err != nil {
		return helper.NewKindError(helper.ErrKindStoreUnavailable, "acquire connection", err)
	}
	defer conn.Close()

	var title, content sql.NullString
	var charCount, subchunkIndex sql.NullInt64
	err = conn.QueryRowContext(
		ctx,
		`SELECT * FROM insert_passage($1, $2, $3, $4)`,
		passage.Title,
		passage.Content,
		passage.SubchunkIndex,
		embedding,
	).Scan(
		&passage.ID,
		&title,
		&content,
		&charCount,
		&subchunkIndex,
		&passage.CreatedAt,
	)
	if err != nil {
		return helper.NewKindError(helper.ErrKindStoreQuery, "scan", err)
	}

	passage.Title = title.String
	passage.Content = content.String
	passage.CharCount = int(charCount.Int64)
	passage.SubchunkIndex = int(subchunkIndex.Int64)

	return nil
}

// SelectPassagesBySimilarity returns the k passages closest to embedding by cosine distance.
// Results are ordered by ascending distance, equal distances by ascending id.
func (h *PassagesDBHandler) SelectPassagesBySimilarity(ctx context.Context, embedding []float32, k int) ([]*model.RetrievedChunk, error) {
	if k <= 0 {
		return nil, helper.NewKindError(helper.ErrKindInvalidArgument, "validate k", fmt.Errorf("k must be a positive integer, got %d", k))
	}
	if err := h.checkDimension(embedding); err != nil {
		return nil, err
	}

	conn, err := h.db.Instance.Conn(ctx)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "acquire connection", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(
		ctx,
		`SELECT * FROM select_passages_by_similarity($1, $2)`,
		pgvector.NewVector(embedding),
		k,
	)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreQuery, "query", err)
	}
	defer rows.Close()

	var chunks []*model.RetrievedChunk
	for rows.Next() {
		chunk, err := scanRetrievedChunk(rows, true)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreQuery, "rows error", err)
	}

	return chunks, nil
}

// SelectPassagesByTitle returns passages whose title contains title, case-insensitively,
// longest passages first.
func (h *PassagesDBHandler) SelectPassagesByTitle(ctx context.Context, title string, limit int) ([]*model.RetrievedChunk, error) {
	if limit <= 0 {
		return nil, helper.NewKindError(helper.ErrKindInvalidArgument, "validate limit", fmt.Errorf("limit must be a positive integer, got %d", limit))
	}

	conn, err := h.db.Instance.Conn(ctx)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "acquire connection", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(
		ctx,
		`SELECT * FROM select_passages_by_title($1, $2)`,
		title,
		limit,
	)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreQuery, "query", err)
	}
	defer rows.Close()

	var chunks []*model.RetrievedChunk
	for rows.Next() {
		chunk, err := scanRetrievedChunk(rows, false)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreQuery, "rows error", err)
	}

	return chunks, nil
}

// SelectCorpusStatistics runs one aggregate query per statistic.
// Any failing query fails the whole call, partial statistics are never returned.
func (h *PassagesDBHandler) SelectCorpusStatistics(ctx context.Context) (*model.CorpusStatistics, error) {
	conn, err := h.db.Instance.Conn(ctx)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "acquire connection", err)
	}
	defer conn.Close()

	stats := &model.CorpusStatistics{}

	err = conn.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, passagesTable)).Scan(&stats.TotalChunks)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreQuery, "select total chunks", err)
	}

	err = conn.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(DISTINCT title) FROM %s;`, passagesTable)).Scan(&stats.DistinctTitles)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreQuery, "select distinct titles", err)
	}

	var meanCharCount sql.NullFloat64
	err = conn.QueryRowContext(ctx, fmt.Sprintf(`SELECT AVG(char_count)::DOUBLE PRECISION FROM %s;`, passagesTable)).Scan(&meanCharCount)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreQuery, "select mean char count", err)
	}
	stats.MeanCharCount = meanCharCount.Float64

	var lastInsert sql.NullTime
	err = conn.QueryRowContext(ctx, fmt.Sprintf(`SELECT MAX(created_at) FROM %s;`, passagesTable)).Scan(&lastInsert)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreQuery, "select last insert", err)
	}
	if lastInsert.Valid {
		stats.LastInsert = &lastInsert.Time
	}

	return stats, nil
}

// SelectHealth checks the vector extension, the passages table and its vector index.
// An error means the store could not be queried at all.
func (h *PassagesDBHandler) SelectHealth(ctx context.Context) (*model.StoreHealth, error) {
	conn, err := h.db.Instance.Conn(ctx)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "acquire connection", err)
	}
	defer conn.Close()

	health := &model.StoreHealth{}

	err = conn.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector');`,
	).Scan(&health.VectorExtensionInstalled)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "check vector extension", err)
	}

	err = conn.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1);`,
		passagesTable,
	).Scan(&health.TableExists)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "check table", err)
	}

	err = conn.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_indexes WHERE tablename = $1 AND indexname LIKE '%embedding%');`,
		passagesTable,
	).Scan(&health.VectorIndexExists)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "check vector index", err)
	}

	health.ConnectionOK = true

	return health, nil
}

func (h *PassagesDBHandler) checkDimension(embedding []float32) error {
	if len(embedding) != h.embeddingDim {
		return helper.NewKindError(helper.ErrKindDimensionMismatch, "validate embedding", fmt.Errorf("expected %d dimensions, got %d", h.embeddingDim, len(embedding)))
	}
	return nil
}

func scanRetrievedChunk(rows *sql.Rows, withSimilarity bool) (*model.RetrievedChunk, error) {
	chunk := &model.RetrievedChunk{}

	var title, content sql.NullString
	var charCount, subchunkIndex sql.NullInt64
	dest := []interface{}{
		&chunk.ChunkID,
		&title,
		&content,
		&charCount,
		&subchunkIndex,
		&chunk.CreatedAt,
	}
	if withSimilarity {
		dest = append(dest, &chunk.Similarity)
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, helper.NewKindError(helper.ErrKindStoreQuery, "scan", err)
	}

	chunk.Title = title.String
	if chunk.Title == "" {
		chunk.Title = model.UntitledPassage
	}
	chunk.Content = content.String
	chunk.CharCount = int(charCount.Int64)
	chunk.SubchunkIndex = int(subchunkIndex.Int64)

	return chunk, nil
}
