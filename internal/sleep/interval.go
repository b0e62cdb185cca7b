package sleep

import (
	"fmt"
	"strings"
	"time"
)

// Interval is one onset/wakeup pair. Onset and Wakeup are naive UTC
// wall-clock values; the offsets record the local zone's deviation from UTC
// at each instant.
type Interval struct {
	Onset           time.Time
	OnsetUTCOffset  int
	Wakeup          time.Time
	WakeupUTCOffset int
}

// Localize treats naive as a UTC wall-clock value and returns the same instant
// expressed in a fixed zone offsetSeconds east of UTC.
func Localize(naive time.Time, offsetSeconds int) time.Time {
	return wallClockUTC(naive).In(fixedZone(offsetSeconds))
}

// Delocalize returns the naive UTC wall-clock value of t. It is the inverse
// of Localize for any offset.
func Delocalize(t time.Time) time.Time {
	return t.UTC()
}

// Offset returns the UTC offset of t in seconds.
func Offset(t time.Time) int {
	_, offset := t.Zone()
	return offset
}

// Duration returns wakeup minus onset using the naive values.
func Duration(onset, wakeup time.Time) time.Duration {
	return wallClockUTC(wakeup).Sub(wallClockUTC(onset))
}

// wallClockUTC reads the wall-clock fields of t as a UTC value, dropping
// whatever location t carries.
func wallClockUTC(t time.Time) time.Time {
	return time.Date(
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.UTC,
	)
}

// NewInterval converts two zone-aware instants into the stored representation.
func NewInterval(onset, wakeup time.Time) Interval {
	return Interval{
		Onset:           Delocalize(onset),
		OnsetUTCOffset:  Offset(onset),
		Wakeup:          Delocalize(wakeup),
		WakeupUTCOffset: Offset(wakeup),
	}
}

// OnsetWithTZ returns the localized onset instant.
func (i Interval) OnsetWithTZ() time.Time {
	return Localize(i.Onset, i.OnsetUTCOffset)
}

// WakeupWithTZ returns the localized wakeup instant.
func (i Interval) WakeupWithTZ() time.Time {
	return Localize(i.Wakeup, i.WakeupUTCOffset)
}

// Duration returns the naive wakeup-onset difference.
func (i Interval) Duration() time.Duration {
	return Duration(i.Onset, i.Wakeup)
}

// Inverted reports whether wakeup precedes onset. Such intervals are kept as
// recorded; callers decide whether to reject them.
func (i Interval) Inverted() bool {
	return i.Duration() < 0
}

// FormatTimestamp renders t as "YYYY-MM-DD HH:MM:SS[.ffffff]+HH:MM", the
// datetime form consumed by the downstream analysis tooling. Microseconds are
// only written when non-zero and offset seconds only when present.
func FormatTimestamp(t time.Time) string {
	var b strings.Builder
	b.Grow(32)
	b.WriteString(t.Format("2006-01-02 15:04:05"))
	if micros := t.Nanosecond() / 1000; micros != 0 {
		fmt.Fprintf(&b, ".%06d", micros)
	}
	b.WriteString(formatOffset(Offset(t)))
	return b.String()
}

func formatOffset(offset int) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	seconds := offset % 60
	if seconds != 0 {
		return fmt.Sprintf("%c%02d:%02d:%02d", sign, hours, minutes, seconds)
	}
	return fmt.Sprintf("%c%02d:%02d", sign, hours, minutes)
}

func fixedZone(offsetSeconds int) *time.Location {
	if offsetSeconds == 0 {
		return time.UTC
	}
	return time.FixedZone(formatOffset(offsetSeconds), offsetSeconds)
}
