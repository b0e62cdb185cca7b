package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ListDays returns the subject's days ordered by date.
func (s *Store) ListDays(ctx context.Context, subjectID int64) ([]*Day, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind("SELECT "+dayColumns+" FROM days WHERE subject_id = ? ORDER BY date"),
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()

	var days []*Day
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// GetDay returns one day by id.
func (s *Store) GetDay(ctx context.Context, id int64) (*Day, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, s.dialect.rebind("SELECT "+dayColumns+" FROM days WHERE id = ?"), id)
	day, err := scanDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("day", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get day %d: %w", id, err)
	}
	return day, nil
}

// DayByIndex returns the subject's index-th day (0-based) in date order.
func (s *Store) DayByIndex(ctx context.Context, subjectID int64, index int) (*Day, error) {
	if index < 0 {
		return nil, notFound("day index", index)
	}
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		s.dialect.rebind("SELECT "+dayColumns+" FROM days WHERE subject_id = ? ORDER BY date LIMIT 1 OFFSET ?"),
		subjectID, index,
	)
	day, err := scanDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("day index", index)
	}
	if err != nil {
		return nil, fmt.Errorf("day %d of subject %d: %w", index, subjectID, err)
	}
	return day, nil
}

// UpdateDayFlags applies the non-nil flags of a partial update.
func (s *Store) UpdateDayFlags(ctx context.Context, dayID int64, flags DayFlags) error {
	if flags.Empty() {
		_, err := s.GetDay(ctx, dayID)
		return err
	}

	var (
		sets []string
		args []any
	)
	if flags.IsMissingSleep != nil {
		sets = append(sets, "is_missing_sleep = ?")
		args = append(args, boolToInt(*flags.IsMissingSleep))
	}
	if flags.IsMultipleSleep != nil {
		sets = append(sets, "is_multiple_sleep = ?")
		args = append(args, boolToInt(*flags.IsMultipleSleep))
	}
	if flags.IsReviewed != nil {
		sets = append(sets, "is_reviewed = ?")
		args = append(args, boolToInt(*flags.IsReviewed))
	}
	args = append(args, dayID)

	res, err := s.execWithRetry(ctx, "UPDATE days SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update day flags: %w", err)
	}
	return expectAffected(res, "day", dayID)
}
