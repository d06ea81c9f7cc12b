package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/siherrmann/manualrag/model"
)

const defaultTitleSearchLimit = 10

// Examples are the sample questions offered to users.
var Examples = []string{
	"¿Cómo funciona el sistema de luces?",
	"¿Qué tipos de airbags tiene el vehículo?",
	"¿Cómo se usa la climatización?",
	"¿Cuáles son las características de la cámara frontal?",
	"¿Cómo configurar el sistema de navegación?",
	"¿Qué sistemas de seguridad incluye el vehículo?",
	"¿Cómo funciona el sistema de frenado?",
	"¿Cuáles son las características del motor?",
	"¿Cómo se ajustan los asientos?",
	"¿Qué hacer si aparece una luz de advertencia?",
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = writeDetail(w, http.StatusBadRequest, fmt.Sprintf("Cuerpo de la petición inválido: %v", err))
		return
	}

	if s.assistant == nil {
		_ = writeJSON(w, http.StatusServiceUnavailable, s.degradedChatResponse(req.Query))
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if err := validateStruct(&req); err != nil {
		_ = writeDetail(w, http.StatusBadRequest, "La consulta no puede estar vacía")
		return
	}

	s.log.Info("New query received", slog.String("query", req.Query))

	result := s.assistant.ProcessQuery(r.Context(), req.Query)

	_ = writeJSON(w, http.StatusOK, newChatResponse(result))
}

func (s *server) degradedChatResponse(query string) chatResponse {
	return chatResponse{
		Success: false,
		Query:   query,
		Answer: answerResponse{
			Text:       "Servicio en modo degradado (DB no disponible).",
			Confidence: 0.0,
			Sources:    []sourceResponse{},
		},
		QualityScore:    model.DefaultQualityScore.String(),
		ChunksRetrieved: 0,
		Timestamp:       now(),
		Source:          s.storeName,
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var health *model.StoreHealth
	if s.assistant != nil {
		health = s.assistant.HealthCheck(r.Context())
	} else {
		health = &model.StoreHealth{Error: "Pipeline no disponible al arranque"}
	}

	status := "error"
	if s.assistant != nil && health.ConnectionOK {
		status = "ok"
	}

	_ = writeJSON(w, http.StatusOK, healthResponse{
		Status:            status,
		PipelineAvailable: s.assistant != nil,
		DatabaseStatus:    newStoreHealthResponse(health),
		Timestamp:         now(),
	})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		_ = writeDetail(w, http.StatusServiceUnavailable, "Pipeline no disponible")
		return
	}

	stats := s.assistant.CorpusStatistics(r.Context())
	health := s.assistant.HealthCheck(r.Context())

	_ = writeJSON(w, http.StatusOK, statsResponse{
		Success:    true,
		Statistics: newStatistics(stats),
		Health:     newStoreHealthResponse(health),
		Timestamp:  now(),
	})
}

func (s *server) handleTitleSearch(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("titulo")

	limit := defaultTitleSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			_ = writeDetail(w, http.StatusBadRequest, fmt.Sprintf("limit inválido: %q", raw))
			return
		}
		limit = n
	}

	req := titleSearchRequest{Title: strings.TrimSpace(title), Limit: limit}
	if err := validateStruct(&req); err != nil {
		if req.Title == "" {
			_ = writeDetail(w, http.StatusBadRequest, "El título no puede estar vacío")
			return
		}
		_ = writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.assistant == nil {
		_ = writeDetail(w, http.StatusServiceUnavailable, "Pipeline no disponible")
		return
	}

	chunks := s.assistant.SearchByTitle(r.Context(), req.Title, req.Limit)

	_ = writeJSON(w, http.StatusOK, titleSearchResponse{
		Success:   true,
		Title:     title,
		Results:   newPassageResponses(chunks),
		Total:     len(chunks),
		Timestamp: now(),
	})
}

func (s *server) handleExamples(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, examplesResponse{
		Success:  true,
		Examples: Examples,
		Total:    len(Examples),
	})
}
