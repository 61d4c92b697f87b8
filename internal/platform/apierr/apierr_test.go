package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/yungbote/moviegraph/internal/pkg/errors"
)

func TestFrom(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("catalog: %w: director is required", pkgerrors.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{fmt.Errorf("x: %w", pkgerrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("catalog: counts: %w", pkgerrors.ErrStoreUnavailable), http.StatusServiceUnavailable, "store_unavailable"},
		{fmt.Errorf("update ingest run: %w: dup", pkgerrors.ErrConflict), http.StatusConflict, "conflict"},
		{fmt.Errorf("update ingest run: %w: locked", pkgerrors.ErrRetryable), http.StatusServiceUnavailable, "retry_later"},
		{fmt.Errorf("wrapped: %w", New(http.StatusConflict, "busy", nil)), http.StatusConflict, "busy"},
		{errors.New("boom"), http.StatusInternalServerError, "query_failed"},
	}
	for _, tc := range cases {
		got := From(tc.err, "query_failed")
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("From(%v): want=%d/%s got=%d/%s", tc.err, tc.status, tc.code, got.Status, got.Code)
		}
	}
	if From(nil, "x") != nil {
		t.Fatalf("From(nil) should be nil")
	}
}

func TestErrorMessage(t *testing.T) {
	if got := New(http.StatusTeapot, "", nil).Error(); got != "api error (418)" {
		t.Fatalf("Error: got=%q", got)
	}
	if got := New(0, "movie_not_found", nil).Error(); got != "movie_not_found" {
		t.Fatalf("Error: got=%q", got)
	}
}
