package store

import (
	"errors"
	"time"
)

// Naive timestamps are stored as fixed-width text so lexical order matches
// chronological order in both dialects.
const (
	naiveLayout = "2006-01-02 15:04:05.000000"
	dateLayout  = "2006-01-02"
)

const subjectColumns = "id, name, n_points_per_day, is_finished, created_at, updated_at"
const dayColumns = "id, subject_id, date, is_missing_sleep, is_multiple_sleep, is_reviewed"
const sleepTimeColumns = "id, day_id, provenance, onset, onset_utc_offset, wakeup, wakeup_utc_offset"
const dataPointColumns = "id, subject_id, timestamp, timestamp_utc_offset, sensor_angle, sensor_acceleration, non_wear"

type scanner interface{ Scan(dest ...any) error }

func scanSubject(row scanner) (*Subject, error) {
	var (
		subject    Subject
		isFinished int
		createdRaw string
		updatedRaw string
	)
	if err := row.Scan(&subject.ID, &subject.Name, &subject.NPointsPerDay, &isFinished, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	subject.IsFinished = isFinished != 0
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		subject.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		subject.UpdatedAt = updated
	}
	return &subject, nil
}

func scanDay(row scanner) (*Day, error) {
	var (
		day     Day
		dateRaw string
	)
	var missing, multiple, reviewed int
	if err := row.Scan(&day.ID, &day.SubjectID, &dateRaw, &missing, &multiple, &reviewed); err != nil {
		return nil, err
	}
	date, err := time.Parse(dateLayout, dateRaw)
	if err != nil {
		return nil, err
	}
	day.Date = date
	day.IsMissingSleep = missing != 0
	day.IsMultipleSleep = multiple != 0
	day.IsReviewed = reviewed != 0
	return &day, nil
}

func scanSleepTime(row scanner) (*SleepTime, error) {
	var (
		st                  SleepTime
		provenance          string
		onsetRaw, wakeupRaw string
	)
	if err := row.Scan(&st.ID, &st.DayID, &provenance, &onsetRaw, &st.OnsetUTCOffset, &wakeupRaw, &st.WakeupUTCOffset); err != nil {
		return nil, err
	}
	st.Provenance = Provenance(provenance)
	onset, err := parseNaive(onsetRaw)
	if err != nil {
		return nil, err
	}
	wakeup, err := parseNaive(wakeupRaw)
	if err != nil {
		return nil, err
	}
	st.Onset, st.Wakeup = onset, wakeup
	return &st, nil
}

func scanDataPoint(row scanner) (*DataPoint, error) {
	var (
		dp      DataPoint
		tsRaw   string
		nonWear int
	)
	if err := row.Scan(&dp.ID, &dp.SubjectID, &tsRaw, &dp.TimestampUTCOffset, &dp.SensorAngle, &dp.SensorAcceleration, &nonWear); err != nil {
		return nil, err
	}
	ts, err := parseNaive(tsRaw)
	if err != nil {
		return nil, err
	}
	dp.Timestamp = ts
	dp.NonWear = nonWear != 0
	return &dp, nil
}

// formatNaive stores the wall clock of a naive timestamp; its location is
// ignored.
func formatNaive(t time.Time) string {
	return t.Format(naiveLayout)
}

func parseNaive(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if t, err := time.Parse(naiveLayout, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
