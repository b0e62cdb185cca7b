package sleep

import "time"

// Day is the reviewer's working unit: one calendar date of one subject with
// the intervals recorded for it.
type Day struct {
	Date            time.Time
	IsMissingSleep  bool
	IsMultipleSleep bool
	IsReviewed      bool
	SleepTimes      []Interval
	GGIRSleepTimes  []Interval
}

// PlaceholderInstant is substituted for both onset and wakeup of a day that
// has no recorded interval.
var PlaceholderInstant = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// Placeholder returns the zero-length interval at PlaceholderInstant.
func Placeholder() Interval {
	return Interval{
		Onset:  PlaceholderInstant,
		Wakeup: PlaceholderInstant,
	}
}

// Primary returns the longest interval. Ties go to the earliest entry.
func Primary(intervals []Interval) (Interval, bool) {
	if len(intervals) == 0 {
		return Interval{}, false
	}
	best := 0
	for i := 1; i < len(intervals); i++ {
		if intervals[i].Duration() > intervals[best].Duration() {
			best = i
		}
	}
	return intervals[best], true
}

// PrimaryOrPlaceholder returns the day's primary interval, or the placeholder
// when the day has none.
func PrimaryOrPlaceholder(day Day) Interval {
	if primary, ok := Primary(day.SleepTimes); ok {
		return primary
	}
	return Placeholder()
}

// Excluded reports whether the day must be left out of analysis.
func (d Day) Excluded() bool {
	return d.IsMissingSleep || len(d.SleepTimes) == 0
}

// ExcludedDayIndices returns the 1-based positions of excluded days.
func ExcludedDayIndices(days []Day) []int {
	var indices []int
	for i, day := range days {
		if day.Excluded() {
			indices = append(indices, i+1)
		}
	}
	return indices
}
