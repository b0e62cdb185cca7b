package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"actigraphy/internal/sleep"
)

// ListSleepTimes returns the operator-curated intervals of a day in insertion order.
func (s *Store) ListSleepTimes(ctx context.Context, dayID int64) ([]*SleepTime, error) {
	return s.listSleepTimes(ctx, dayID, ProvenanceManual)
}

// ListGGIRSleepTimes returns the toolchain's original estimates for a day.
func (s *Store) ListGGIRSleepTimes(ctx context.Context, dayID int64) ([]*SleepTime, error) {
	return s.listSleepTimes(ctx, dayID, ProvenanceGGIR)
}

func (s *Store) listSleepTimes(ctx context.Context, dayID int64, provenance Provenance) ([]*SleepTime, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind("SELECT "+sleepTimeColumns+" FROM sleep_times WHERE day_id = ? AND provenance = ? ORDER BY id"),
		dayID, string(provenance),
	)
	if err != nil {
		return nil, fmt.Errorf("list %s sleep times: %w", provenance, err)
	}
	defer rows.Close()
	return collectSleepTimes(rows)
}

// GetSleepTime returns one interval by id.
func (s *Store) GetSleepTime(ctx context.Context, id int64) (*SleepTime, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, s.dialect.rebind("SELECT "+sleepTimeColumns+" FROM sleep_times WHERE id = ?"), id)
	st, err := scanSleepTime(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("sleep time", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get sleep time %d: %w", id, err)
	}
	return st, nil
}

// AddSleepTime appends a manual interval to a day.
func (s *Store) AddSleepTime(ctx context.Context, dayID int64, interval sleep.Interval) (*SleepTime, error) {
	if _, err := s.GetDay(ctx, dayID); err != nil {
		return nil, err
	}
	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.insertSleepTime(ctx, tx, dayID, ProvenanceManual, interval)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetSleepTime(ctx, id)
}

// UpdateSleepTime replaces the onset and wakeup of an existing interval.
func (s *Store) UpdateSleepTime(ctx context.Context, id int64, interval sleep.Interval) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE sleep_times SET onset = ?, onset_utc_offset = ?, wakeup = ?, wakeup_utc_offset = ? WHERE id = ?",
		formatNaive(interval.Onset), interval.OnsetUTCOffset,
		formatNaive(interval.Wakeup), interval.WakeupUTCOffset,
		id,
	)
	if err != nil {
		return fmt.Errorf("update sleep time: %w", err)
	}
	return expectAffected(res, "sleep time", id)
}

// DeleteSleepTime removes a manual interval. Toolchain estimates cannot be
// deleted.
func (s *Store) DeleteSleepTime(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx,
		"DELETE FROM sleep_times WHERE id = ? AND provenance = ?",
		id, string(ProvenanceManual),
	)
	if err != nil {
		return fmt.Errorf("delete sleep time: %w", err)
	}
	return expectAffected(res, "manual sleep time", id)
}

func (s *Store) sleepTimesBySubject(ctx context.Context, subjectID int64) (map[int64][]*SleepTime, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind(`SELECT st.id, st.day_id, st.provenance, st.onset, st.onset_utc_offset, st.wakeup, st.wakeup_utc_offset
            FROM sleep_times st JOIN days d ON d.id = st.day_id
            WHERE d.subject_id = ? ORDER BY st.id`),
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subject sleep times: %w", err)
	}
	defer rows.Close()

	all, err := collectSleepTimes(rows)
	if err != nil {
		return nil, err
	}
	byDay := make(map[int64][]*SleepTime)
	for _, st := range all {
		byDay[st.DayID] = append(byDay[st.DayID], st)
	}
	return byDay, nil
}

func collectSleepTimes(rows *sql.Rows) ([]*SleepTime, error) {
	var out []*SleepTime
	for rows.Next() {
		st, err := scanSleepTime(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sleep time: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) insertSleepTimes(ctx context.Context, tx *sql.Tx, dayID int64, provenance Provenance, intervals []sleep.Interval) error {
	for _, interval := range intervals {
		if _, err := s.insertSleepTime(ctx, tx, dayID, provenance, interval); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertSleepTime(ctx context.Context, tx *sql.Tx, dayID int64, provenance Provenance, interval sleep.Interval) (int64, error) {
	id, err := s.insertReturningID(ctx, tx,
		`INSERT INTO sleep_times (day_id, provenance, onset, onset_utc_offset, wakeup, wakeup_utc_offset)
        VALUES (?, ?, ?, ?, ?, ?)`,
		dayID, string(provenance),
		formatNaive(interval.Onset), interval.OnsetUTCOffset,
		formatNaive(interval.Wakeup), interval.WakeupUTCOffset,
	)
	if err != nil {
		return 0, fmt.Errorf("insert %s sleep time: %w", provenance, err)
	}
	return id, nil
}
