// Package normalization turns the raw text cells of the source datasets into typed values.
//
// Nested list cells are decoded tolerantly: a malformed cell yields an empty slice plus a
// *MalformedFieldError the caller records as a data-quality warning. Nothing in this
// package panics on bad input.
package normalization

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

const snippetLen = 48

// MalformedFieldError reports a nested cell that could not be decoded.
type MalformedFieldError struct {
	Snippet string
	Err     error
}

func (e *MalformedFieldError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("malformed nested field %q: %v", e.Snippet, e.Err)
}

func (e *MalformedFieldError) Unwrap() error { return e.Err }

// DecodeList decodes a cell holding a list of records. Blank cells decode to an empty
// slice with no error. JSON is tried first, then the Python-literal dialect (single
// quotes, None/True/False) some exports use. The returned slice is never nil.
func DecodeList[T any](cell string) (items []T, err error) {
	raw := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
	if isBlank(raw) {
		return []T{}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			items = []T{}
			err = &MalformedFieldError{Snippet: snippet(raw), Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()

	items, err = decodeJSON[T](raw)
	if err == nil {
		return items, nil
	}
	if rewritten, rerr := pythonLiteralToJSON(raw); rerr == nil {
		if items, perr := decodeJSON[T](rewritten); perr == nil {
			return items, nil
		}
	}
	return []T{}, &MalformedFieldError{Snippet: snippet(raw), Err: err}
}

func decodeJSON[T any](raw string) ([]T, error) {
	if strings.HasPrefix(raw, "{") {
		var one T
		if err := json.Unmarshal([]byte(raw), &one); err != nil {
			return nil, err
		}
		return []T{one}, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func isBlank(raw string) bool {
	switch strings.ToLower(raw) {
	case "", "[]", "nan", "none", "null":
		return true
	}
	return false
}

func snippet(raw string) string {
	r := []rune(raw)
	if len(r) <= snippetLen {
		return raw
	}
	return string(r[:snippetLen]) + "..."
}
