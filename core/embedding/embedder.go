package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/knights-analytics/hugot"
	openai "github.com/sashabaranov/go-openai"
	"github.com/siherrmann/manualrag/helper"
)

// DefaultLocalModel produces 384-dimensional embeddings.
const DefaultLocalModel = helper.DefaultLocalEmbeddingModel

// EmbedFunc is a function that generates an embedding for text.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// OpenAIEmbedder creates an embedder backed by the OpenAI embeddings endpoint.
func OpenAIEmbedder(client *openai.Client, model string) EmbedFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(model),
			Input: []string{text},
		})
		if err != nil {
			return nil, helper.NewKindError(helper.ErrKindEmbedding, "create embeddings", err)
		}

		if len(resp.Data) == 0 {
			return nil, helper.NewKindError(helper.ErrKindEmbedding, "create embeddings", errors.New("no embedding data returned from API"))
		}

		embedding := make([]float32, len(resp.Data[0].Embedding))
		for i, v := range resp.Data[0].Embedding {
			embedding[i] = float32(v)
		}

		return embedding, nil
	}
}

// DefaultEmbedder creates an embedder using a local sentence transformer model.
// The model is downloaded on first use. An empty onnxFilePath selects the
// pinned export for the default model and lets hugot pick for any other.
func DefaultEmbedder(modelName string, onnxFilePath string) (EmbedFunc, error) {
	if modelName == "" {
		modelName = DefaultLocalModel
	}

	modelPath, err := helper.PrepareModel(modelName, onnxFilePath)
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindEmbedding, "prepare model", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, helper.NewKindError(helper.ErrKindEmbedding, "create hugot session", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "manual-embedder",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, helper.NewKindError(helper.ErrKindEmbedding, "create sentence pipeline", fmt.Errorf("%w (cleanup error: %v)", err, destroyErr))
		}
		return nil, helper.NewKindError(helper.ErrKindEmbedding, "create sentence pipeline", err)
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		if err := ctx.Err(); err != nil {
			return nil, helper.NewKindError(helper.ErrKindEmbedding, "embed", err)
		}

		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, helper.NewKindError(helper.ErrKindEmbedding, "run pipeline", err)
		}

		if len(result.Embeddings) == 0 {
			return nil, helper.NewKindError(helper.ErrKindEmbedding, "run pipeline", errors.New("no embedding generated"))
		}

		return result.Embeddings[0], nil
	}, nil
}
