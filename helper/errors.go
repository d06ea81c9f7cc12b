package helper

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so that degraded paths stay distinguishable in logs.
type ErrorKind string

const (
	ErrKindStoreUnavailable  ErrorKind = "store_unavailable"
	ErrKindEmptyCorpus       ErrorKind = "empty_corpus"
	ErrKindStoreQuery        ErrorKind = "store_query"
	ErrKindDimensionMismatch ErrorKind = "dimension_mismatch"
	ErrKindInvalidArgument   ErrorKind = "invalid_argument"
	ErrKindEmbedding         ErrorKind = "embedding"
	ErrKindCompletion        ErrorKind = "completion"
	ErrKindEvaluationParse   ErrorKind = "evaluation_parse"
	ErrKindEvaluationRange   ErrorKind = "evaluation_range"
	ErrKindConfiguration     ErrorKind = "configuration"
)

// Error wraps an error with the operation that failed and an optional kind.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with the failing operation.
// The kind of a wrapped *Error is carried over.
func NewError(op string, err error) error {
	return &Error{
		Kind: KindOf(err),
		Op:   op,
		Err:  err,
	}
}

// NewKindError wraps err with the failing operation and an explicit kind.
func NewKindError(kind ErrorKind, op string, err error) error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}

// KindOf returns the outermost kind found in the error chain, or "" if none.
func KindOf(err error) ErrorKind {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Kind != "" {
			return e.Kind
		}
		err = e.Err
	}
	return ""
}
