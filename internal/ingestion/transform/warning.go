// Package transform maps raw dataset rows onto the canonical movie graph model.
package transform

import (
	"errors"
	"fmt"
)

// ErrRowRejected marks a row that lacks a required attribute. The row is skipped;
// ingestion continues.
var ErrRowRejected = errors.New("row rejected")

// Warning is a non-fatal data-quality finding attached to a source line.
type Warning struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return fmt.Sprintf("line %d: %s: %s", w.Line, w.Field, w.Message)
}

func rejectf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRowRejected, fmt.Sprintf(format, args...))
}
