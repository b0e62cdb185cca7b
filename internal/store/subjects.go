package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"actigraphy/internal/sleep"
)

// ReadSubject returns the subject with the given name.
func (s *Store) ReadSubject(ctx context.Context, name string) (*Subject, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, s.dialect.rebind("SELECT "+subjectColumns+" FROM subjects WHERE name = ?"), name)
	subject, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("subject", name)
	}
	if err != nil {
		return nil, fmt.Errorf("read subject %s: %w", name, err)
	}
	return subject, nil
}

// GetSubject returns the subject with the given id.
func (s *Store) GetSubject(ctx context.Context, id int64) (*Subject, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, s.dialect.rebind("SELECT "+subjectColumns+" FROM subjects WHERE id = ?"), id)
	subject, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("subject", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get subject %d: %w", id, err)
	}
	return subject, nil
}

// ListSubjects returns every subject ordered by name.
func (s *Store) ListSubjects(ctx context.Context) ([]*Subject, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT "+subjectColumns+" FROM subjects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []*Subject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

// GetOrCreateSubject returns the named subject, creating an empty one when
// it does not exist yet.
func (s *Store) GetOrCreateSubject(ctx context.Context, name string, nPointsPerDay int) (*Subject, error) {
	subject, err := s.ReadSubject(ctx, name)
	if err == nil {
		return subject, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := validateSubject(name, nPointsPerDay); err != nil {
		return nil, err
	}

	now := nowString()
	if _, err := s.execWithRetry(ctx,
		"INSERT INTO subjects (name, n_points_per_day, is_finished, created_at, updated_at) VALUES (?, ?, 0, ?, ?)",
		name, nPointsPerDay, now, now,
	); err != nil {
		return nil, fmt.Errorf("insert subject %s: %w", name, err)
	}
	return s.ReadSubject(ctx, name)
}

// CreateSubject writes a freshly ingested subject with all of its days, sleep
// intervals of both provenances, and data points in a single transaction.
// The subject must not exist yet.
func (s *Store) CreateSubject(ctx context.Context, payload *NewSubject) (*Subject, error) {
	if payload == nil {
		return nil, errors.New("create subject: nil payload")
	}
	if err := validateSubject(payload.Name, payload.NPointsPerDay); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(payload.Days))
	for _, day := range payload.Days {
		key := formatDate(day.Date)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("subject %s date %s: %w", payload.Name, key, ErrDuplicateDay)
		}
		seen[key] = struct{}{}
	}

	ctx = ensureContext(ctx)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		now := nowString()
		subjectID, err := s.insertReturningID(ctx, tx,
			"INSERT INTO subjects (name, n_points_per_day, is_finished, created_at, updated_at) VALUES (?, ?, 0, ?, ?)",
			payload.Name, payload.NPointsPerDay, now, now,
		)
		if err != nil {
			return fmt.Errorf("insert subject: %w", err)
		}

		for _, day := range payload.Days {
			dayID, err := s.insertReturningID(ctx, tx,
				"INSERT INTO days (subject_id, date, is_missing_sleep, is_multiple_sleep, is_reviewed) VALUES (?, ?, 0, 0, 0)",
				subjectID, formatDate(day.Date),
			)
			if err != nil {
				if isDayConflict(err) {
					return fmt.Errorf("day %s: %w", formatDate(day.Date), ErrDuplicateDay)
				}
				return fmt.Errorf("insert day %s: %w", formatDate(day.Date), err)
			}
			if err := s.insertSleepTimes(ctx, tx, dayID, ProvenanceManual, day.SleepTimes); err != nil {
				return err
			}
			if err := s.insertSleepTimes(ctx, tx, dayID, ProvenanceGGIR, day.GGIRSleepTimes); err != nil {
				return err
			}
		}

		return s.insertDataPoints(ctx, tx, subjectID, payload.DataPoints)
	})
	if err != nil {
		return nil, fmt.Errorf("create subject %s: %w", payload.Name, err)
	}
	return s.ReadSubject(ctx, payload.Name)
}

// SetFinished records the operator's completion flag.
func (s *Store) SetFinished(ctx context.Context, subjectID int64, finished bool) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE subjects SET is_finished = ?, updated_at = ? WHERE id = ?",
		boolToInt(finished), nowString(), subjectID,
	)
	if err != nil {
		return fmt.Errorf("set finished: %w", err)
	}
	return expectAffected(res, "subject", subjectID)
}

// LoadSubjectDays returns the subject's days in date order with their
// intervals attached, the snapshot the exporters serialize.
func (s *Store) LoadSubjectDays(ctx context.Context, name string) ([]sleep.Day, error) {
	subject, err := s.ReadSubject(ctx, name)
	if err != nil {
		return nil, err
	}
	days, err := s.ListDays(ctx, subject.ID)
	if err != nil {
		return nil, err
	}
	intervals, err := s.sleepTimesBySubject(ctx, subject.ID)
	if err != nil {
		return nil, err
	}

	out := make([]sleep.Day, 0, len(days))
	for _, day := range days {
		entry := sleep.Day{
			Date:            day.Date,
			IsMissingSleep:  day.IsMissingSleep,
			IsMultipleSleep: day.IsMultipleSleep,
			IsReviewed:      day.IsReviewed,
		}
		for _, st := range intervals[day.ID] {
			switch st.Provenance {
			case ProvenanceGGIR:
				entry.GGIRSleepTimes = append(entry.GGIRSleepTimes, st.Interval)
			default:
				entry.SleepTimes = append(entry.SleepTimes, st.Interval)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func validateSubject(name string, nPointsPerDay int) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("subject name is required")
	}
	if nPointsPerDay <= 0 {
		return fmt.Errorf("subject %s: n_points_per_day must be positive, got %d", name, nPointsPerDay)
	}
	return nil
}

func expectAffected(res sql.Result, entity string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound(entity, id)
	}
	return nil
}
