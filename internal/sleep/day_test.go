package sleep_test

import (
	"reflect"
	"testing"
	"time"

	"actigraphy/internal/sleep"
)

func intervalOf(onset time.Time, length time.Duration) sleep.Interval {
	return sleep.Interval{Onset: onset, Wakeup: onset.Add(length)}
}

func TestPrimaryPicksLongest(t *testing.T) {
	short := intervalOf(naive(2023, time.January, 1, 14, 0), time.Hour)
	long := intervalOf(naive(2023, time.January, 1, 22, 0), 2*time.Hour)

	got, ok := sleep.Primary([]sleep.Interval{short, long})
	if !ok {
		t.Fatal("expected a primary interval")
	}
	if got != long {
		t.Fatalf("expected 2h interval, got %v", got.Duration())
	}
}

func TestPrimaryTieGoesToFirst(t *testing.T) {
	first := intervalOf(naive(2023, time.January, 1, 13, 0), time.Hour)
	second := intervalOf(naive(2023, time.January, 1, 22, 0), time.Hour)

	got, _ := sleep.Primary([]sleep.Interval{first, second})
	if got != first {
		t.Fatalf("expected first of equal intervals, got onset %v", got.Onset)
	}
}

func TestPrimaryOrPlaceholder(t *testing.T) {
	if _, ok := sleep.Primary(nil); ok {
		t.Fatal("expected no primary for empty day")
	}
	got := sleep.PrimaryOrPlaceholder(sleep.Day{Date: naive(2023, time.January, 1, 0, 0)})
	if !got.OnsetWithTZ().Equal(sleep.PlaceholderInstant) || !got.WakeupWithTZ().Equal(sleep.PlaceholderInstant) {
		t.Fatalf("unexpected placeholder %+v", got)
	}
	if got.Duration() != 0 {
		t.Fatalf("placeholder should have zero duration, got %v", got.Duration())
	}
}

func TestExcludedDayIndices(t *testing.T) {
	withSleep := []sleep.Interval{intervalOf(naive(2023, time.January, 1, 22, 0), 8*time.Hour)}
	days := []sleep.Day{
		{SleepTimes: withSleep},
		{},
		{IsMissingSleep: true, SleepTimes: withSleep},
		{SleepTimes: withSleep},
	}
	if days[1].IsMissingSleep || !days[1].Excluded() {
		t.Fatal("day without intervals must be excluded even when not flagged")
	}
	got := sleep.ExcludedDayIndices(days)
	if want := []int{2, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ExcludedDayIndices = %v, want %v", got, want)
	}
}
