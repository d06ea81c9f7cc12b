package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/siherrmann/manualrag/core/llm"
	"github.com/siherrmann/manualrag/helper"
	"github.com/siherrmann/manualrag/model"
)

// Generator answers a query from retrieved passages.
type Generator struct {
	completer   llm.Completer
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      *slog.Logger
}

// NewGenerator creates a new generator from the generation settings of config.
func NewGenerator(completer llm.Completer, config *model.PipelineConfig, logger *slog.Logger) *Generator {
	return &Generator{
		completer:   completer,
		model:       config.GenerationModel,
		temperature: config.GenerationTemperature,
		maxTokens:   config.GenerationMaxTokens,
		timeout:     config.CompletionTimeout,
		logger:      logger,
	}
}

// Generate returns an answer grounded on chunks. It never fails:
// without chunks it returns FallbackText, a model failure returns the error text.
// Both carry zero confidence and no sources.
func (g *Generator) Generate(ctx context.Context, query string, chunks []*model.RetrievedChunk) *model.GeneratedAnswer {
	if len(chunks) == 0 {
		g.logger.Warn("No relevant information found, returning fallback answer")
		return model.FallbackAnswer(FallbackText)
	}

	blocks := ContextBlocks(chunks)

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.completer.Complete(ctx, llm.CompletionRequest{
		Model: g.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: UserPrompt(query, blocks)},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		g.logger.Warn("Error generating answer", "error", err, "error_kind", helper.ErrKindCompletion)
		return model.FallbackAnswer(fmt.Sprintf("Error generando respuesta: %v", err))
	}

	answer := &model.GeneratedAnswer{
		Text:        text,
		ContextUsed: blocks,
		Confidence:  model.MeanSimilarity(chunks),
		Sources:     model.SourcesOf(chunks),
	}

	g.logger.Info("Generated answer", "confidence", fmt.Sprintf("%.2f", answer.Confidence))

	return answer
}
