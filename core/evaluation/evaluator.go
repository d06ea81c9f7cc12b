package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/siherrmann/manualrag/core/llm"
	"github.com/siherrmann/manualrag/helper"
	"github.com/siherrmann/manualrag/model"
)

const systemPrompt = "Eres un evaluador de respuestas técnicas. Puntúa la respuesta del 1 al 10 según relevancia, precisión, completitud, claridad y fundamentación. Responde SOLO con el número."

// Evaluator scores generated answers with a language model.
type Evaluator struct {
	completer   llm.Completer
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	logger      *slog.Logger
}

// NewEvaluator creates a new evaluator from the evaluation settings of config.
func NewEvaluator(completer llm.Completer, config *model.PipelineConfig, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		completer:   completer,
		model:       config.EvaluationModel,
		temperature: config.EvaluationTemperature,
		maxTokens:   config.EvaluationMaxTokens,
		timeout:     config.CompletionTimeout,
		logger:      logger,
	}
}

// RubricPrompt asks for a single 1 to 10 rating of answer.
func RubricPrompt(query string, answer string) string {
	return fmt.Sprintf(`Puntúa del 1 al 10 la calidad de esta respuesta sobre el vehículo:

CONSULTA:
%s

RESPUESTA:
%s

CRITERIOS:
1. Relevancia: ¿contesta directamente a la consulta?
2. Precisión: ¿es técnicamente correcta?
3. Completitud: ¿cubre los puntos importantes?
4. Claridad: ¿se entiende con facilidad?
5. Fundamentación: ¿se apoya en la información del manual?

Responde SOLO con el número del 1 al 10:`, query, answer)
}

// Evaluate returns the score of answer as "1" to "10".
// Any model failure or unusable reply yields the default score.
func (e *Evaluator) Evaluate(ctx context.Context, query string, answer *model.GeneratedAnswer) string {
	text := ""
	if answer != nil {
		text = answer.Text
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	reply, err := e.completer.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: RubricPrompt(query, text)},
		},
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		e.logger.Warn("Error evaluating answer, using default score", "error", err, "error_kind", helper.ErrKindCompletion)
		return model.DefaultQualityScore.String()
	}

	score, err := model.ParseQualityScore(reply)
	if err != nil {
		e.logger.Error("Unusable quality score, using default score", "reply", reply, "error", err, "error_kind", helper.KindOf(err))
		return model.DefaultQualityScore.String()
	}

	e.logger.Info("Evaluated answer", "score", score.String())

	return score.String()
}
