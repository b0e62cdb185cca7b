package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CountDataPoints returns how many samples a subject has.
func (s *Store) CountDataPoints(ctx context.Context, subjectID int64) (int, error) {
	ctx = ensureContext(ctx)
	var n int
	if err := s.db.QueryRowContext(ctx,
		s.dialect.rebind("SELECT COUNT(1) FROM data_points WHERE subject_id = ?"), subjectID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count data points: %w", err)
	}
	return n, nil
}

// ClosestDataPoint returns the sample nearest to the naive UTC timestamp at,
// searching window/2 on either side. Around an offset change two samples can
// share a timestamp; the one with the smaller offset wins.
func (s *Store) ClosestDataPoint(ctx context.Context, subjectID int64, at time.Time, window time.Duration) (*DataPoint, error) {
	ctx = ensureContext(ctx)
	if window <= 0 {
		window = 24 * time.Hour
	}
	half := window / 2
	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind("SELECT "+dataPointColumns+` FROM data_points
            WHERE subject_id = ? AND timestamp >= ? AND timestamp <= ?
            ORDER BY timestamp, timestamp_utc_offset`),
		subjectID, formatNaive(at.Add(-half)), formatNaive(at.Add(half)),
	)
	if err != nil {
		return nil, fmt.Errorf("query data points: %w", err)
	}
	defer rows.Close()

	var (
		best     *DataPoint
		bestDist time.Duration
	)
	for rows.Next() {
		dp, err := scanDataPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan data point: %w", err)
		}
		dist := dp.Timestamp.Sub(at)
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best, bestDist = dp, dist
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if best == nil {
		return nil, notFound("data point near", at.Format(naiveLayout))
	}
	return best, nil
}

func (s *Store) insertDataPoints(ctx context.Context, tx *sql.Tx, subjectID int64, points []DataPoint) error {
	if len(points) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, s.dialect.rebind(
		`INSERT INTO data_points (subject_id, timestamp, timestamp_utc_offset, sensor_angle, sensor_acceleration, non_wear)
        VALUES (?, ?, ?, ?, ?, ?)`,
	))
	if err != nil {
		return fmt.Errorf("prepare data point insert: %w", err)
	}
	defer stmt.Close()

	for i, dp := range points {
		if _, err := stmt.ExecContext(ctx,
			subjectID, formatNaive(dp.Timestamp), dp.TimestampUTCOffset,
			dp.SensorAngle, dp.SensorAcceleration, boolToInt(dp.NonWear),
		); err != nil {
			return fmt.Errorf("insert data point %d: %w", i, err)
		}
	}
	return nil
}
