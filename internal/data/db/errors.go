package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	commonerr "github.com/yungbote/neurobridge-commons/internal/pkg/errors"
)

// Classify tags infrastructure failures as ErrConflict or ErrRetryable so
// callers can branch with errors.Is. Other errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, commonerr.ErrConflict) || errors.Is(err, commonerr.ErrRetryable) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return commonerr.Tag(commonerr.ErrRetryable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return commonerr.Tag(commonerr.ErrConflict, err) // unique_violation
		case "40001", "40P01", "55P03":
			return commonerr.Tag(commonerr.ErrRetryable, err) // serialization/deadlock/lock_not_available
		}
		return err
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"):
		return commonerr.Tag(commonerr.ErrConflict, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return commonerr.Tag(commonerr.ErrRetryable, err)
	default:
		return err
	}
}

// IsConflict reports whether err was classified as a conflict.
func IsConflict(err error) bool { return errors.Is(Classify(err), commonerr.ErrConflict) }
