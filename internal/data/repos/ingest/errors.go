package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	pkgerrors "github.com/yungbote/moviegraph/internal/pkg/errors"
)

// mapError tags ledger write failures with ErrConflict or ErrRetryable so callers
// can decide whether to try again. Other errors are wrapped with op only.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrConflict, err)
		case "40001", "40P01", "55P03": // serialization, deadlock, lock_not_available
			return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrRetryable, err)
		}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrConflict, err)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "deadlock"):
		return fmt.Errorf("%s: %w: %w", op, pkgerrors.ErrRetryable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
