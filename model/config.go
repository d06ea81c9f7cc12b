package model

import "time"

// PipelineConfig holds the tunables of the three pipeline stages.
type PipelineConfig struct {
	// Retrieval
	TopK int `json:"top_k"`

	// Generation
	GenerationModel       string  `json:"generation_model"`
	GenerationTemperature float32 `json:"generation_temperature"`
	GenerationMaxTokens   int     `json:"generation_max_tokens"`

	// Evaluation
	EvaluationModel       string  `json:"evaluation_model"`
	EvaluationTemperature float32 `json:"evaluation_temperature"`
	EvaluationMaxTokens   int     `json:"evaluation_max_tokens"`

	// Timeouts per external call
	EmbeddingTimeout  time.Duration `json:"embedding_timeout"`
	CompletionTimeout time.Duration `json:"completion_timeout"`
	StoreTimeout      time.Duration `json:"store_timeout"`

	// Label of the backing store reported with every result
	StoreName string `json:"store_name"`
}

// DefaultPipelineConfig returns a sensible default configuration
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		TopK:                  4,
		GenerationModel:       "gpt-4o-mini",
		GenerationTemperature: 0.3,
		GenerationMaxTokens:   1000,
		EvaluationModel:       "gpt-4o-mini",
		EvaluationTemperature: 0.1,
		EvaluationMaxTokens:   10,
		EmbeddingTimeout:      10 * time.Second,
		CompletionTimeout:     60 * time.Second,
		StoreTimeout:          10 * time.Second,
		StoreName:             "PostgreSQL",
	}
}
