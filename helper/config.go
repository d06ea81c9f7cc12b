package helper

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EmbeddingProviderOpenAI = "openai"
	EmbeddingProviderLocal  = "local"

	DefaultOpenAIEmbeddingModel = "text-embedding-ada-002"
	DefaultOpenAIEmbeddingDim   = 1536
)

// Configuration is the complete service configuration read from the environment.
type Configuration struct {
	Database *DatabaseConfiguration

	OpenAIAPIKey  string
	OpenAIBaseURL string

	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingDim      int
	// EmbeddingOnnxFile picks the onnx export of a local model, see OnnxFileFor.
	EmbeddingOnnxFile string
	LLMModel          string

	TopK      int
	StoreName string
	// IndexType rebuilds the vector index as "hnsw" or "ivfflat" at startup when set.
	IndexType string

	EmbeddingTimeout  time.Duration
	CompletionTimeout time.Duration
	StoreTimeout      time.Duration

	HTTPAddr string
	LogLevel slog.Level
}

// NewConfiguration reads the configuration from the environment.
// Call godotenv.Load() before to pick up a .env file.
// All missing required variables are reported at once.
func NewConfiguration() (*Configuration, error) {
	dbConfig, dbErr := NewDatabaseConfiguration()

	config := &Configuration{
		Database:          dbConfig,
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		EmbeddingProvider: strings.ToLower(getEnvOrDefault("EMBEDDING_PROVIDER", EmbeddingProviderOpenAI)),
		EmbeddingOnnxFile: os.Getenv("EMBEDDING_ONNX_FILE"),
		LLMModel:          getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		StoreName:         getEnvOrDefault("STORE_NAME", "PostgreSQL"),
		IndexType:         strings.ToLower(os.Getenv("INDEX_TYPE")),
		HTTPAddr:          getEnvOrDefault("HTTP_ADDR", ":8000"),
	}

	defaultModel, defaultDim := DefaultOpenAIEmbeddingModel, DefaultOpenAIEmbeddingDim
	if config.EmbeddingProvider == EmbeddingProviderLocal {
		defaultModel, defaultDim = DefaultLocalEmbeddingModel, DefaultLocalEmbeddingDim
	}
	config.EmbeddingModel = getEnvOrDefault("EMBEDDING_MODEL", defaultModel)

	var problems []string
	if dbErr != nil {
		problems = append(problems, dbErr.Error())
	}
	if config.OpenAIAPIKey == "" {
		problems = append(problems, "missing environment variables: [OPENAI_API_KEY]")
	}

	var err error
	if config.EmbeddingDim, err = intFromEnv("EMBEDDING_DIM", defaultDim); err != nil {
		problems = append(problems, err.Error())
	}
	if config.TopK, err = intFromEnv("TOP_K", 4); err != nil {
		problems = append(problems, err.Error())
	}
	if config.EmbeddingTimeout, err = durationFromEnv("EMBEDDING_TIMEOUT", 10*time.Second); err != nil {
		problems = append(problems, err.Error())
	}
	if config.CompletionTimeout, err = durationFromEnv("COMPLETION_TIMEOUT", 60*time.Second); err != nil {
		problems = append(problems, err.Error())
	}
	if config.StoreTimeout, err = durationFromEnv("STORE_TIMEOUT", 10*time.Second); err != nil {
		problems = append(problems, err.Error())
	}
	if config.LogLevel, err = levelFromEnv("LOG_LEVEL", slog.LevelInfo); err != nil {
		problems = append(problems, err.Error())
	}

	switch config.EmbeddingProvider {
	case EmbeddingProviderOpenAI, EmbeddingProviderLocal:
	default:
		problems = append(problems, fmt.Sprintf("unsupported EMBEDDING_PROVIDER %q (use %q or %q)", config.EmbeddingProvider, EmbeddingProviderOpenAI, EmbeddingProviderLocal))
	}

	switch config.IndexType {
	case "", "hnsw", "ivfflat":
	default:
		problems = append(problems, fmt.Sprintf("unsupported INDEX_TYPE %q (use \"hnsw\" or \"ivfflat\")", config.IndexType))
	}

	if len(problems) > 0 {
		return nil, NewKindError(ErrKindConfiguration, "configuration", fmt.Errorf("%s", strings.Join(problems, "; ")))
	}

	return config, nil
}

func intFromEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func levelFromEnv(key string, def slog.Level) (slog.Level, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return def, fmt.Errorf("%s must be one of debug, info, warn, error, got %q", key, v)
	}
	return level, nil
}
