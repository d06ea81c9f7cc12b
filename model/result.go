package model

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the layout of the timestamps returned to callers.
const TimestampLayout = "2006-01-02 15:04:05"

// PipelineResult aggregates one pass through retrieval, generation and evaluation.
type PipelineResult struct {
	RequestID    uuid.UUID         `json:"request_id"`
	Query        string            `json:"query"`
	Chunks       []*RetrievedChunk `json:"chunks"`
	Answer       *GeneratedAnswer  `json:"answer"`
	QualityScore string            `json:"quality_score"`
	Timestamp    time.Time         `json:"timestamp"`
	Source       string            `json:"source"`
}

// FormattedTimestamp renders Timestamp with TimestampLayout.
func (r *PipelineResult) FormattedTimestamp() string {
	return r.Timestamp.Format(TimestampLayout)
}
