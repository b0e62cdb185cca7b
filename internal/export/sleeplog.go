package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"actigraphy/internal/sleep"
)

// SleepLogRecords builds the wide-format sleep log: a header and one row for
// the subject. The last day is dropped because every reviewed day spans two
// calendar days; each remaining day contributes its primary interval, or the
// placeholder when it has none.
func SleepLogRecords(id string, days []sleep.Day) [][]string {
	retained := len(days) - 1
	if retained < 0 {
		retained = 0
	}

	pairs := make([][]string, 0, retained)
	header := []string{"ID"}
	for i, day := range days[:retained] {
		primary := sleep.PrimaryOrPlaceholder(day)
		pairs = append(pairs, []string{
			sleep.FormatTimestamp(primary.OnsetWithTZ()),
			sleep.FormatTimestamp(primary.WakeupWithTZ()),
		})
		n := strconv.Itoa(i + 1)
		header = append(header, "onset_"+n, "wakeup_"+n)
	}

	row := []string{id}
	for _, value := range Flatten(pairs) {
		row = append(row, fmt.Sprint(value))
	}
	return [][]string{header, row}
}

// WriteSleepLog writes the sleep log as CSV with CRLF line endings.
func WriteSleepLog(w io.Writer, id string, days []sleep.Day) error {
	return writeCSV(w, SleepLogRecords(id, days), true)
}

// Flatten returns the leaves of arbitrarily nested slices and arrays in
// encounter order. Strings and byte slices are leaves.
func Flatten(v any) []any {
	var out []any
	flattenInto(&out, reflect.ValueOf(v))
	return out
}

func flattenInto(out *[]any, v reflect.Value) {
	if !v.IsValid() {
		*out = append(*out, nil)
		return
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			*out = append(*out, nil)
			return
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			*out = append(*out, v.Interface())
			return
		}
		for i := 0; i < v.Len(); i++ {
			flattenInto(out, v.Index(i))
		}
	default:
		*out = append(*out, v.Interface())
	}
}

func writeCSV(w io.Writer, records [][]string, crlf bool) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = crlf
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
