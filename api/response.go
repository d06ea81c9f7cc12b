package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/siherrmann/manualrag/model"
)

type sourceResponse struct {
	Title      string  `json:"titulo"`
	Similarity float64 `json:"similitud"`
	Subchunk   int     `json:"subchunk"`
	ChunkID    int     `json:"chunk_id"`
}

type answerResponse struct {
	Text       string           `json:"respuesta"`
	Confidence float64          `json:"confianza"`
	Sources    []sourceResponse `json:"fuentes"`
}

type chatResponse struct {
	Success         bool           `json:"success"`
	Query           string         `json:"query"`
	Answer          answerResponse `json:"respuesta_llm"`
	QualityScore    string         `json:"evaluacion_calidad"`
	ChunksRetrieved int            `json:"chunks_recuperados"`
	Timestamp       string         `json:"timestamp"`
	Source          string         `json:"fuente"`
}

type storeHealthResponse struct {
	VectorExtensionInstalled bool   `json:"pgvector_instalado"`
	TableExists              bool   `json:"tabla_existe"`
	VectorIndexExists        bool   `json:"indice_vectorial"`
	ConnectionOK             bool   `json:"conexion_ok"`
	Error                    string `json:"error,omitempty"`
}

type healthResponse struct {
	Status            string              `json:"status"`
	PipelineAvailable bool                `json:"pipeline_available"`
	DatabaseStatus    storeHealthResponse `json:"database_status"`
	Timestamp         string              `json:"timestamp"`
}

type statisticsResponse struct {
	TotalChunks    int64      `json:"total_chunks"`
	DistinctTitles int64      `json:"titulos_unicos"`
	MeanCharCount  float64    `json:"promedio_caracteres"`
	LastInsert     *time.Time `json:"ultimo_ingreso"`
}

type statsResponse struct {
	Success    bool                `json:"success"`
	Statistics interface{}         `json:"statistics"`
	Health     storeHealthResponse `json:"health"`
	Timestamp  string              `json:"timestamp"`
}

type passageResponse struct {
	ChunkID   int       `json:"chunk_id"`
	Title     string    `json:"titulo"`
	Content   string    `json:"cont"`
	CharCount int       `json:"num"`
	Subchunk  int       `json:"subchunk"`
	CreatedAt time.Time `json:"created_at"`
}

type titleSearchResponse struct {
	Success   bool              `json:"success"`
	Title     string            `json:"titulo_buscado"`
	Results   []passageResponse `json:"resultados"`
	Total     int               `json:"total_encontrados"`
	Timestamp string            `json:"timestamp"`
}

type examplesResponse struct {
	Success  bool     `json:"success"`
	Examples []string `json:"ejemplos"`
	Total    int      `json:"total"`
}

type errorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func newChatResponse(result *model.PipelineResult) chatResponse {
	answer := result.Answer
	if answer == nil {
		answer = model.FallbackAnswer("")
	}

	sources := make([]sourceResponse, 0, len(answer.Sources))
	for _, s := range answer.Sources {
		sources = append(sources, sourceResponse{
			Title:      s.Title,
			Similarity: s.Similarity,
			Subchunk:   s.SubchunkIndex,
			ChunkID:    s.ChunkID,
		})
	}

	return chatResponse{
		Success: true,
		Query:   result.Query,
		Answer: answerResponse{
			Text:       answer.Text,
			Confidence: answer.Confidence,
			Sources:    sources,
		},
		QualityScore:    result.QualityScore,
		ChunksRetrieved: len(result.Chunks),
		Timestamp:       result.FormattedTimestamp(),
		Source:          result.Source,
	}
}

func newStoreHealthResponse(health *model.StoreHealth) storeHealthResponse {
	if health == nil {
		health = model.UnreachableStore(nil)
	}
	return storeHealthResponse{
		VectorExtensionInstalled: health.VectorExtensionInstalled,
		TableExists:              health.TableExists,
		VectorIndexExists:        health.VectorIndexExists,
		ConnectionOK:             health.ConnectionOK,
		Error:                    health.Error,
	}
}

// newStatistics maps missing statistics to an empty object.
func newStatistics(stats *model.CorpusStatistics) interface{} {
	if stats == nil {
		return map[string]interface{}{}
	}
	return statisticsResponse{
		TotalChunks:    stats.TotalChunks,
		DistinctTitles: stats.DistinctTitles,
		MeanCharCount:  stats.MeanCharCount,
		LastInsert:     stats.LastInsert,
	}
}

func newPassageResponses(chunks []*model.RetrievedChunk) []passageResponse {
	passages := make([]passageResponse, 0, len(chunks))
	for _, c := range chunks {
		passages = append(passages, passageResponse{
			ChunkID:   c.ChunkID,
			Title:     c.Title,
			Content:   c.Content,
			CharCount: c.CharCount,
			Subchunk:  c.SubchunkIndex,
			CreatedAt: c.CreatedAt,
		})
	}
	return passages
}

func now() string {
	return time.Now().Format(model.TimestampLayout)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) error {
	return writeJSON(w, status, errorResponse{Detail: detail})
}
