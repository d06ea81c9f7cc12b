package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/siherrmann/manualrag/model"
)

// Assistant is the question answering pipeline served by the API.
type Assistant interface {
	ProcessQuery(ctx context.Context, query string) *model.PipelineResult
	HealthCheck(ctx context.Context) *model.StoreHealth
	CorpusStatistics(ctx context.Context) *model.CorpusStatistics
	SearchByTitle(ctx context.Context, title string, limit int) []*model.RetrievedChunk
	StoreName() string
}

// server holds the HTTP handlers. A nil assistant serves degraded responses.
type server struct {
	assistant Assistant
	storeName string
	log       *slog.Logger
}

// NewRouter configures all routes and middleware.
func NewRouter(assistant Assistant, storeName string, logger *slog.Logger) http.Handler {
	s := &server{
		assistant: assistant,
		storeName: storeName,
		log:       logger,
	}
	if assistant != nil {
		s.storeName = assistant.StoreName()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/health", s.handleHealth)
		r.Get("/database/stats", s.handleStats)
		r.Post("/search/title", s.handleTitleSearch)
		r.Get("/examples", s.handleExamples)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "Endpoint no encontrado",
			Message: "La ruta solicitada no existe",
		})
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("Handled request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
