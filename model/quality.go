package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/siherrmann/manualrag/helper"
)

// QualityScore is an answer rating between MinQualityScore and MaxQualityScore.
type QualityScore int

const (
	MinQualityScore     QualityScore = 1
	MaxQualityScore     QualityScore = 10
	DefaultQualityScore QualityScore = 5
)

// ParseQualityScore parses an evaluator reply.
// The error kind tells a non-integer reply apart from an out of range one.
func ParseQualityScore(reply string) (QualityScore, error) {
	n, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil {
		return DefaultQualityScore, helper.NewKindError(helper.ErrKindEvaluationParse, "parse quality score", err)
	}

	score := QualityScore(n)
	if !score.Valid() {
		return DefaultQualityScore, helper.NewKindError(helper.ErrKindEvaluationRange, "validate quality score", fmt.Errorf("score %d outside [%d, %d]", n, MinQualityScore, MaxQualityScore))
	}

	return score, nil
}

// Valid reports whether the score is within bounds.
func (s QualityScore) Valid() bool {
	return s >= MinQualityScore && s <= MaxQualityScore
}

func (s QualityScore) String() string {
	return strconv.Itoa(int(s))
}
