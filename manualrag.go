package manualrag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/manualrag/core/embedding"
	"github.com/siherrmann/manualrag/core/evaluation"
	"github.com/siherrmann/manualrag/core/generation"
	"github.com/siherrmann/manualrag/core/llm"
	"github.com/siherrmann/manualrag/core/retrieval"
	"github.com/siherrmann/manualrag/core/store"
	"github.com/siherrmann/manualrag/database"
	"github.com/siherrmann/manualrag/helper"
	"github.com/siherrmann/manualrag/model"
	loadSql "github.com/siherrmann/manualrag/sql"
)

// Dependencies are the collaborators an Assistant is built from.
type Dependencies struct {
	// DB is closed by Assistant.Close when set.
	DB        *helper.Database
	Passages  database.PassagesDBHandlerFunctions
	Embed     embedding.EmbedFunc
	Completer llm.Completer
	Logger    *slog.Logger
}

// Assistant answers questions about the manual.
// It holds no per-query state and is safe for concurrent use.
type Assistant struct {
	DB     *helper.Database
	Store  *store.Store
	config model.PipelineConfig

	retriever *retrieval.Retriever
	generator *generation.Generator
	evaluator *evaluation.Evaluator
	// Logging
	log *slog.Logger
}

// NewAssistant creates a new Assistant.
// It fails if the store is not reachable or holds no passages.
func NewAssistant(ctx context.Context, deps Dependencies, config *model.PipelineConfig) (*Assistant, error) {
	if deps.Passages == nil || deps.Embed == nil || deps.Completer == nil {
		return nil, helper.NewKindError(helper.ErrKindConfiguration, "validate dependencies", fmt.Errorf("passages, embed and completer are required"))
	}

	if config == nil {
		defaultConfig := model.DefaultPipelineConfig()
		config = &defaultConfig
	}

	logger := deps.Logger
	if logger == nil {
		logger = helper.NewPrettyLogger(os.Stdout, slog.LevelInfo)
	}

	passageStore := store.NewStore(deps.Passages, config.StoreTimeout, logger)

	health := passageStore.HealthCheck(ctx)
	if !health.ConnectionOK {
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "check store health", fmt.Errorf("store connection failed: %s", health.Error))
	}

	stats := passageStore.CorpusStatistics(ctx)
	if stats == nil {
		return nil, helper.NewKindError(helper.ErrKindStoreQuery, "check corpus", fmt.Errorf("corpus statistics unavailable"))
	}
	if stats.TotalChunks == 0 {
		return nil, helper.NewKindError(helper.ErrKindEmptyCorpus, "check corpus", fmt.Errorf("store holds no passages"))
	}

	embedder := embedding.NewClient(deps.Embed, config.EmbeddingTimeout, logger)

	assistant := &Assistant{
		DB:        deps.DB,
		Store:     passageStore,
		config:    *config,
		retriever: retrieval.NewRetriever(embedder, passageStore, config.TopK, logger),
		generator: generation.NewGenerator(deps.Completer, config, logger),
		evaluator: evaluation.NewEvaluator(deps.Completer, config, logger),
		log:       logger,
	}

	logger.Info("Assistant ready", slog.Int64("total_chunks", stats.TotalChunks), slog.Int64("distinct_titles", stats.DistinctTitles))

	return assistant, nil
}

// New builds the database, handler, embedder and language model client from
// the configuration and creates an Assistant from them.
func New(ctx context.Context, config *helper.Configuration, logger *slog.Logger) (*Assistant, error) {
	if config == nil {
		return nil, helper.NewKindError(helper.ErrKindConfiguration, "validate configuration", fmt.Errorf("configuration is nil"))
	}
	if logger == nil {
		logger = helper.NewPrettyLogger(os.Stdout, config.LogLevel)
	}

	db, err := helper.NewDatabase("manualrag", config.Database, logger)
	if err != nil {
		return nil, helper.NewError("create database", err)
	}

	err = loadSql.LoadAllSql(db.Instance, false)
	if err != nil {
		db.Close()
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "load sql functions", err)
	}

	passages, err := database.NewPassagesDBHandler(db, config.EmbeddingDim, false)
	if err != nil {
		db.Close()
		return nil, helper.NewKindError(helper.ErrKindStoreUnavailable, "create passages handler", err)
	}

	if config.IndexType != "" {
		err = passages.ChangeIndexType(ctx, config.IndexType, nil)
		if err != nil {
			db.Close()
			return nil, helper.NewError("change index type", err)
		}
	}

	client := llm.NewOpenAIClient(config.OpenAIAPIKey, config.OpenAIBaseURL)

	var embed embedding.EmbedFunc
	switch config.EmbeddingProvider {
	case helper.EmbeddingProviderLocal:
		embed, err = embedding.DefaultEmbedder(config.EmbeddingModel, config.EmbeddingOnnxFile)
		if err != nil {
			db.Close()
			return nil, helper.NewError("create local embedder", err)
		}
	default:
		embed = embedding.OpenAIEmbedder(client, config.EmbeddingModel)
	}

	pipelineConfig := PipelineConfigFrom(config)

	assistant, err := NewAssistant(ctx, Dependencies{
		DB:        db,
		Passages:  passages,
		Embed:     embed,
		Completer: llm.NewOpenAICompleter(client),
		Logger:    logger,
	}, &pipelineConfig)
	if err != nil {
		db.Close()
		return nil, err
	}

	return assistant, nil
}

// PipelineConfigFrom maps the service configuration onto the stage settings.
func PipelineConfigFrom(config *helper.Configuration) model.PipelineConfig {
	pipelineConfig := model.DefaultPipelineConfig()
	pipelineConfig.TopK = config.TopK
	pipelineConfig.GenerationModel = config.LLMModel
	pipelineConfig.EvaluationModel = config.LLMModel
	pipelineConfig.EmbeddingTimeout = config.EmbeddingTimeout
	pipelineConfig.CompletionTimeout = config.CompletionTimeout
	pipelineConfig.StoreTimeout = config.StoreTimeout
	pipelineConfig.StoreName = config.StoreName
	return pipelineConfig
}

// Close closes the database connection
func (a *Assistant) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// ProcessQuery runs retrieval, generation and evaluation in sequence.
// Stage failures degrade to fallback values, so a result is always returned.
func (a *Assistant) ProcessQuery(ctx context.Context, query string) *model.PipelineResult {
	requestID := uuid.New()
	log := a.log.With(slog.String("request_id", requestID.String()))
	log.Info("Processing query", slog.String("query", query))

	chunks := a.retriever.Retrieve(ctx, query, a.config.TopK)
	answer := a.generator.Generate(ctx, query, chunks)
	score := a.evaluator.Evaluate(ctx, query, answer)

	log.Info("Processed query", slog.Int("chunks", len(chunks)), slog.String("quality_score", score))

	return &model.PipelineResult{
		RequestID:    requestID,
		Query:        query,
		Chunks:       chunks,
		Answer:       answer,
		QualityScore: score,
		Timestamp:    time.Now(),
		Source:       a.config.StoreName,
	}
}

// HealthCheck reports the state of the store.
func (a *Assistant) HealthCheck(ctx context.Context) *model.StoreHealth {
	return a.Store.HealthCheck(ctx)
}

// CorpusStatistics returns the corpus statistics or nil if they are unavailable.
func (a *Assistant) CorpusStatistics(ctx context.Context) *model.CorpusStatistics {
	return a.Store.CorpusStatistics(ctx)
}

// SearchByTitle returns passages whose title contains title.
func (a *Assistant) SearchByTitle(ctx context.Context, title string, limit int) []*model.RetrievedChunk {
	return a.Store.SearchByTitle(ctx, title, limit)
}

// StoreName is the label reported as the source of every result.
func (a *Assistant) StoreName() string {
	return a.config.StoreName
}
