package ggir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"actigraphy/internal/record"
	"actigraphy/internal/sleep"
	"actigraphy/internal/store"
)

// DefaultSleepTime is the clock time used for days without a night summary.
const DefaultSleepTime = 12 * time.Hour

// Settings tunes ingestion.
type Settings struct {
	// DefaultSleepTime is an offset from local midnight. Zero means
	// DefaultSleepTime.
	DefaultSleepTime time.Duration
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z07:00",
}

// ParseTimestamp parses a metashort timestamp such as 2024-05-01T12:00:00+0200.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// BuildSubject turns toolchain exports into the ingestion payload of one
// subject.
func BuildSubject(identifier string, meta *MetaData, ms4 *MS4, settings Settings) (*store.NewSubject, error) {
	if meta == nil || ms4 == nil {
		return nil, fmt.Errorf("subject %s: metadata and ms4 are required", identifier)
	}
	if settings.DefaultSleepTime == 0 {
		settings.DefaultSleepTime = DefaultSleepTime
	}

	timestamps, err := metashortTimestamps(meta.MetaShort)
	if err != nil {
		return nil, err
	}

	days, err := buildDays(lastPerDate(timestamps), ms4.NightSummary, settings)
	if err != nil {
		return nil, err
	}
	points, err := buildDataPoints(meta, timestamps)
	if err != nil {
		return nil, err
	}

	return &store.NewSubject{
		Name:          identifier,
		NPointsPerDay: meta.PointsPerDay(),
		Days:          days,
		DataPoints:    points,
	}, nil
}

func metashortTimestamps(table *record.Table) ([]time.Time, error) {
	raw, err := table.Strings(ColumnTimestamp)
	if err != nil {
		return nil, record.Malformed("m.metashort."+ColumnTimestamp, "%v", err)
	}
	out := make([]time.Time, len(raw))
	for i, value := range raw {
		t, err := ParseTimestamp(value)
		if err != nil {
			return nil, record.Malformed("m.metashort."+ColumnTimestamp, "row %d: %v", i, err)
		}
		out[i] = t
	}
	return out, nil
}

// lastPerDate keeps, for every local calendar date, the latest timestamp on
// that date. The result is sorted ascending.
func lastPerDate(timestamps []time.Time) []time.Time {
	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	seen := make(map[string]struct{})
	var kept []time.Time
	for i := len(sorted) - 1; i >= 0; i-- {
		key := sorted[i].Format(time.DateOnly)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, sorted[i])
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Before(kept[j]) })
	return kept
}

func buildDays(dates []time.Time, nights *record.Table, settings Settings) ([]store.NewDay, error) {
	index, err := nightIndex(nights)
	if err != nil {
		return nil, err
	}

	days := make([]store.NewDay, 0, len(dates))
	for _, local := range dates {
		offset := sleep.Offset(local)
		date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		day := store.NewDay{Date: date}

		row, ok := index[ms4Date(date)]
		if !ok {
			at := date.Add(settings.DefaultSleepTime).Add(-time.Duration(offset) * time.Second)
			day.SleepTimes = []sleep.Interval{{
				Onset:           at,
				OnsetUTCOffset:  offset,
				Wakeup:          at,
				WakeupUTCOffset: offset,
			}}
			days = append(days, day)
			continue
		}

		interval, err := nightInterval(nights, row, date, offset)
		if err != nil {
			return nil, err
		}
		day.SleepTimes = []sleep.Interval{interval}
		day.GGIRSleepTimes = []sleep.Interval{interval}
		days = append(days, day)
	}
	return days, nil
}

// nightIndex maps each calendar date to its first night summary row.
func nightIndex(nights *record.Table) (map[string]int, error) {
	dates, ok := nights.Column(ColumnCalendarDate)
	if !ok {
		return nil, record.Malformed("nightsummary."+ColumnCalendarDate, "missing column")
	}
	index := make(map[string]int, len(dates))
	for i, v := range dates {
		text, ok := v.Text()
		if !ok {
			continue
		}
		text = strings.TrimSpace(text)
		if _, dup := index[text]; !dup {
			index[text] = i
		}
	}
	return index, nil
}

// ms4Date renders date the way the night summary does: D/M/YYYY without
// zero padding.
func ms4Date(date time.Time) string {
	return fmt.Sprintf("%d/%d/%d", date.Day(), int(date.Month()), date.Year())
}

func nightInterval(nights *record.Table, row int, date time.Time, offset int) (sleep.Interval, error) {
	onsetClock, err := clockCell(nights, ColumnSleepOnset, row)
	if err != nil {
		return sleep.Interval{}, err
	}
	wakeupClock, err := clockCell(nights, ColumnWakeup, row)
	if err != nil {
		return sleep.Interval{}, err
	}

	shift := time.Duration(offset) * time.Second
	onset := date.Add(onsetClock).Add(-shift)
	wakeup := date.Add(wakeupClock).Add(-shift)
	// Onsets before noon belong to the early hours of the next day.
	if onsetClock < 12*time.Hour {
		onset = onset.AddDate(0, 0, 1)
	}
	if onset.After(wakeup) {
		wakeup = wakeup.AddDate(0, 0, 1)
	}
	return sleep.Interval{
		Onset:           onset,
		OnsetUTCOffset:  offset,
		Wakeup:          wakeup,
		WakeupUTCOffset: offset,
	}, nil
}

func clockCell(table *record.Table, column string, row int) (time.Duration, error) {
	path := "nightsummary." + column
	cells, ok := table.Column(column)
	if !ok {
		return 0, record.Malformed(path, "missing column")
	}
	text, ok := cells[row].Text()
	if !ok {
		return 0, record.Malformed(path, "row %d: expected clock time text", row)
	}
	clock, err := ParseClock(text)
	if err != nil {
		return 0, record.Malformed(path, "row %d: %v", row, err)
	}
	return clock, nil
}

// ParseClock parses HH:MM or HH:MM:SS into an offset from midnight.
func ParseClock(value string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	limits := []int{23, 59, 59}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > limits[i] || len(part) != 2 {
			return 0, fmt.Errorf("invalid clock time %q", value)
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}

func buildDataPoints(meta *MetaData, timestamps []time.Time) ([]store.DataPoint, error) {
	angles, err := meta.MetaShort.Floats(ColumnAngleZ)
	if err != nil {
		return nil, record.Malformed("m.metashort."+ColumnAngleZ, "%v", err)
	}
	acceleration, err := meta.MetaShort.Floats(ColumnENMO)
	if err != nil {
		return nil, record.Malformed("m.metashort."+ColumnENMO, "%v", err)
	}
	nonWear, err := nonWearMask(meta, len(timestamps))
	if err != nil {
		return nil, err
	}

	points := make([]store.DataPoint, len(timestamps))
	for i, t := range timestamps {
		points[i] = store.DataPoint{
			Timestamp:          sleep.Delocalize(t),
			TimestampUTCOffset: sleep.Offset(t),
			SensorAngle:        angles[i],
			SensorAcceleration: acceleration[i],
			NonWear:            nonWear[i],
		}
	}
	return points, nil
}

// nonWearMask expands long-epoch non-wear scores above 1 onto the short
// epochs they cover.
func nonWearMask(meta *MetaData, n int) ([]bool, error) {
	scores, err := meta.MetaLong.Floats(ColumnNonWearScore)
	if err != nil {
		return nil, record.Malformed("m.metalong."+ColumnNonWearScore, "%v", err)
	}
	ratio := meta.EpochRatio()
	mask := make([]bool, n)
	for long, score := range scores {
		if score <= 1 {
			continue
		}
		for i := long * ratio; i < long*ratio+ratio && i < n; i++ {
			mask[i] = true
		}
	}
	return mask, nil
}
