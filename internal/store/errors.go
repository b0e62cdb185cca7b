package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is wrapped by every lookup that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateDay reports a second day for the same subject and date.
	ErrDuplicateDay = errors.New("duplicate day for subject")
	// ErrSchemaMismatch indicates the database was created by another schema version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)

const (
	sqliteBusyCode             = 5
	sqliteConstraintUniqueCode = 2067
	pgUniqueViolation          = "23505"
)

func notFound(entity string, key any) error {
	return fmt.Errorf("%s %v: %w", entity, key, ErrNotFound)
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// isDayConflict reports a violation of the (subject_id, date) constraint.
func isDayConflict(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation && strings.HasPrefix(pqErr.Constraint, "days_")
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteConstraintUniqueCode {
		return strings.Contains(err.Error(), "days.")
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: days.")
}
