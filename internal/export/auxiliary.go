package export

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"actigraphy/internal/sleep"
)

// AllSleepTimesRecords lists every manual interval of every day, sorted by
// onset instant. Equal onsets keep day order.
func AllSleepTimesRecords(days []sleep.Day) [][]string {
	var intervals []sleep.Interval
	for _, day := range days {
		intervals = append(intervals, day.SleepTimes...)
	}
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].OnsetWithTZ().Before(intervals[j].OnsetWithTZ())
	})

	records := make([][]string, 0, len(intervals)+1)
	records = append(records, []string{"onset", "wakeup"})
	for _, iv := range intervals {
		records = append(records, []string{
			sleep.FormatTimestamp(iv.OnsetWithTZ()),
			sleep.FormatTimestamp(iv.WakeupWithTZ()),
		})
	}
	return records
}

// WriteAllSleepTimes writes the long-format interval table with LF line
// endings.
func WriteAllSleepTimes(w io.Writer, days []sleep.Day) error {
	return writeCSV(w, AllSleepTimesRecords(days), false)
}

// DataCleaningRecords lists the 1-based indices of excluded days.
func DataCleaningRecords(id string, days []sleep.Day) [][]string {
	indices := sleep.ExcludedDayIndices(days)
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return [][]string{
		{"ID", "day_part5", "relyonguider_part4", "night_part4"},
		{id, "", "", strings.Join(parts, " ")},
	}
}

// WriteDataCleaning writes the data-cleaning file with CRLF line endings.
func WriteDataCleaning(w io.Writer, id string, days []sleep.Day) error {
	return writeCSV(w, DataCleaningRecords(id, days), true)
}
