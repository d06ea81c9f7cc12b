package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/manualrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	health     *model.StoreHealth
	stats      *model.CorpusStatistics
	chunks     []*model.RetrievedChunk
	queries    []string
	titleQuery string
	titleLimit int
}

func (f *fakeAssistant) ProcessQuery(ctx context.Context, query string) *model.PipelineResult {
	f.queries = append(f.queries, query)
	return &model.PipelineResult{
		RequestID: uuid.New(),
		Query:     query,
		Chunks:    f.chunks,
		Answer: &model.GeneratedAnswer{
			Text:        "1. Tire de la palanca.",
			ContextUsed: []string{"INFORMACIÓN 1:\n"},
			Confidence:  0.91,
			Sources:     model.SourcesOf(f.chunks),
		},
		QualityScore: "8",
		Timestamp:    time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC),
		Source:       "PostgreSQL",
	}
}

func (f *fakeAssistant) HealthCheck(ctx context.Context) *model.StoreHealth {
	return f.health
}

func (f *fakeAssistant) CorpusStatistics(ctx context.Context) *model.CorpusStatistics {
	return f.stats
}

func (f *fakeAssistant) SearchByTitle(ctx context.Context, title string, limit int) []*model.RetrievedChunk {
	f.titleQuery = title
	f.titleLimit = limit
	return f.chunks
}

func (f *fakeAssistant) StoreName() string {
	return "PostgreSQL"
}

func healthyStore() *model.StoreHealth {
	return &model.StoreHealth{VectorExtensionInstalled: true, TableExists: true, VectorIndexExists: true, ConnectionOK: true}
}

func newTestAssistant() *fakeAssistant {
	return &fakeAssistant{
		health: healthyStore(),
		stats:  &model.CorpusStatistics{TotalChunks: 5, DistinctTitles: 4, MeanCharCount: 120.5},
		chunks: []*model.RetrievedChunk{
			{ChunkID: 1, Title: "Ajuste de asientos", Content: "Tire de la palanca.", Similarity: 0.91, CharCount: 19},
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func do(t *testing.T, handler http.Handler, method string, target string, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "Expected a JSON body, got %q", rec.Body.String())
	return rec, decoded
}

func TestChat(t *testing.T) {
	t.Run("Valid call chat", func(t *testing.T) {
		assistant := newTestAssistant()
		router := NewRouter(assistant, "", discardLogger())

		rec, body := do(t, router, http.MethodPost, "/api/chat", `{"query":"  ¿Cómo se ajustan los asientos?  "}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.Equal(t, []string{"¿Cómo se ajustan los asientos?"}, assistant.queries, "Expected the query to be trimmed")

		assert.Equal(t, true, body["success"])
		assert.Equal(t, "8", body["evaluacion_calidad"])
		assert.Equal(t, float64(1), body["chunks_recuperados"])
		assert.Equal(t, "2024-05-17 09:30:00", body["timestamp"])
		assert.Equal(t, "PostgreSQL", body["fuente"])

		answer := body["respuesta_llm"].(map[string]interface{})
		assert.Equal(t, "1. Tire de la palanca.", answer["respuesta"])
		assert.Equal(t, 0.91, answer["confianza"])
		sources := answer["fuentes"].([]interface{})
		require.Len(t, sources, 1)
		assert.Equal(t, "Ajuste de asientos", sources[0].(map[string]interface{})["titulo"])
	})

	t.Run("Blank query is rejected", func(t *testing.T) {
		assistant := newTestAssistant()
		router := NewRouter(assistant, "", discardLogger())

		rec, body := do(t, router, http.MethodPost, "/api/chat", `{"query":"   "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "La consulta no puede estar vacía", body["detail"])
		assert.Empty(t, assistant.queries)
	})

	t.Run("Malformed body is rejected", func(t *testing.T) {
		rec, _ := do(t, NewRouter(newTestAssistant(), "", discardLogger()), http.MethodPost, "/api/chat", `{"query":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Missing pipeline serves the degraded body", func(t *testing.T) {
		router := NewRouter(nil, "PostgreSQL", discardLogger())

		rec, body := do(t, router, http.MethodPost, "/api/chat", `{"query":"¿Cómo se ajustan los asientos?"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "5", body["evaluacion_calidad"])
		assert.Equal(t, float64(0), body["chunks_recuperados"])
		assert.Equal(t, "PostgreSQL", body["fuente"])
		answer := body["respuesta_llm"].(map[string]interface{})
		assert.Equal(t, float64(0), answer["confianza"])
		assert.Empty(t, answer["fuentes"])
	})
}

func TestHealth(t *testing.T) {
	t.Run("Healthy pipeline", func(t *testing.T) {
		rec, body := do(t, NewRouter(newTestAssistant(), "", discardLogger()), http.MethodGet, "/api/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, true, body["pipeline_available"])

		status := body["database_status"].(map[string]interface{})
		assert.Equal(t, true, status["pgvector_instalado"])
		assert.Equal(t, true, status["tabla_existe"])
		assert.Equal(t, true, status["indice_vectorial"])
		assert.Equal(t, true, status["conexion_ok"])
		assert.NotContains(t, status, "error")
	})

	t.Run("Unreachable store", func(t *testing.T) {
		assistant := newTestAssistant()
		assistant.health = model.UnreachableStore(assert.AnError)

		_, body := do(t, NewRouter(assistant, "", discardLogger()), http.MethodGet, "/api/health", "")
		assert.Equal(t, "error", body["status"])
		status := body["database_status"].(map[string]interface{})
		assert.Equal(t, false, status["conexion_ok"])
		assert.NotEmpty(t, status["error"])
	})

	t.Run("Missing pipeline", func(t *testing.T) {
		_, body := do(t, NewRouter(nil, "PostgreSQL", discardLogger()), http.MethodGet, "/api/health", "")
		assert.Equal(t, "error", body["status"])
		assert.Equal(t, false, body["pipeline_available"])
		status := body["database_status"].(map[string]interface{})
		assert.Equal(t, false, status["pgvector_instalado"])
		assert.Equal(t, false, status["conexion_ok"])
		assert.NotEmpty(t, status["error"])
	})
}

func TestStats(t *testing.T) {
	t.Run("Valid call stats", func(t *testing.T) {
		rec, body := do(t, NewRouter(newTestAssistant(), "", discardLogger()), http.MethodGet, "/api/database/stats", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])

		stats := body["statistics"].(map[string]interface{})
		assert.Equal(t, float64(5), stats["total_chunks"])
		assert.Equal(t, float64(4), stats["titulos_unicos"])
		assert.Equal(t, 120.5, stats["promedio_caracteres"])
		assert.Nil(t, stats["ultimo_ingreso"])

		health := body["health"].(map[string]interface{})
		assert.Equal(t, true, health["conexion_ok"])
	})

	t.Run("Missing statistics are an empty object", func(t *testing.T) {
		assistant := newTestAssistant()
		assistant.stats = nil

		_, body := do(t, NewRouter(assistant, "", discardLogger()), http.MethodGet, "/api/database/stats", "")
		assert.Equal(t, map[string]interface{}{}, body["statistics"])
	})

	t.Run("Missing pipeline", func(t *testing.T) {
		rec, _ := do(t, NewRouter(nil, "PostgreSQL", discardLogger()), http.MethodGet, "/api/database/stats", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestTitleSearch(t *testing.T) {
	t.Run("Valid call title search", func(t *testing.T) {
		assistant := newTestAssistant()

		rec, body := do(t, NewRouter(assistant, "", discardLogger()), http.MethodPost, "/api/search/title?titulo=asientos&limit=5", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "asientos", assistant.titleQuery)
		assert.Equal(t, 5, assistant.titleLimit)
		assert.Equal(t, "asientos", body["titulo_buscado"])
		assert.Equal(t, float64(1), body["total_encontrados"])

		results := body["resultados"].([]interface{})
		require.Len(t, results, 1)
		first := results[0].(map[string]interface{})
		assert.Equal(t, "Ajuste de asientos", first["titulo"])
		assert.Equal(t, "Tire de la palanca.", first["cont"])
		assert.Equal(t, float64(19), first["num"])
		assert.NotContains(t, first, "similitud")
	})

	t.Run("Default limit", func(t *testing.T) {
		assistant := newTestAssistant()
		do(t, NewRouter(assistant, "", discardLogger()), http.MethodPost, "/api/search/title?titulo=asientos", "")
		assert.Equal(t, 10, assistant.titleLimit)
	})

	t.Run("Blank title is rejected", func(t *testing.T) {
		rec, body := do(t, NewRouter(newTestAssistant(), "", discardLogger()), http.MethodPost, "/api/search/title?titulo=%20%20", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "El título no puede estar vacío", body["detail"])
	})

	t.Run("Invalid limit is rejected", func(t *testing.T) {
		for _, limit := range []string{"abc", "0", "1000"} {
			rec, _ := do(t, NewRouter(newTestAssistant(), "", discardLogger()), http.MethodPost, "/api/search/title?titulo=asientos&limit="+limit, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %q", limit)
		}
	})
}

func TestExamplesAndNotFound(t *testing.T) {
	router := NewRouter(nil, "PostgreSQL", discardLogger())

	rec, body := do(t, router, http.MethodGet, "/api/examples", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(10), body["total"])
	assert.Len(t, body["ejemplos"], 10)
	assert.Contains(t, body["ejemplos"], "¿Cómo se ajustan los asientos?")

	rec, body = do(t, router, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint no encontrado", body["error"])
}
