package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"actigraphy/internal/sleep"
)

const (
	daysSheet       = "Days"
	sleepTimesSheet = "Sleep Times"
)

var daysHeader = []string{
	"Day", "Date", "Missing Sleep", "Multiple Sleep", "Reviewed",
	"Primary Onset", "Primary Wakeup", "Primary Hours", "Intervals", "Excluded",
}

var sleepTimesHeader = []string{"Day", "Date", "Source", "Onset", "Wakeup", "Hours"}

// WriteReviewWorkbook writes an XLSX summary of the subject for reviewers:
// one row per day on the Days sheet and every interval of both provenances
// on the Sleep Times sheet.
func WriteReviewWorkbook(w io.Writer, id string, days []sleep.Day) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(daysSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if _, err := f.NewSheet(sleepTimesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, daysSheet, 1, toAny(daysHeader), headerStyle); err != nil {
		return err
	}
	if err := writeRow(f, sleepTimesSheet, 1, toAny(sleepTimesHeader), headerStyle); err != nil {
		return err
	}

	intervalRow := 2
	for i, day := range days {
		primary := sleep.PrimaryOrPlaceholder(day)
		date := day.Date.Format("2006-01-02")
		values := []any{
			i + 1, date, day.IsMissingSleep, day.IsMultipleSleep, day.IsReviewed,
			sleep.FormatTimestamp(primary.OnsetWithTZ()),
			sleep.FormatTimestamp(primary.WakeupWithTZ()),
			hours(primary),
			len(day.SleepTimes),
			day.Excluded(),
		}
		if err := writeRow(f, daysSheet, i+2, values, 0); err != nil {
			return err
		}

		for _, group := range []struct {
			source    string
			intervals []sleep.Interval
		}{{"manual", day.SleepTimes}, {"ggir", day.GGIRSleepTimes}} {
			for _, iv := range group.intervals {
				row := []any{
					i + 1, date, group.source,
					sleep.FormatTimestamp(iv.OnsetWithTZ()),
					sleep.FormatTimestamp(iv.WakeupWithTZ()),
					hours(iv),
				}
				if err := writeRow(f, sleepTimesSheet, intervalRow, row, 0); err != nil {
					return err
				}
				intervalRow++
			}
		}
	}

	for sheet, widths := range map[string][]float64{
		daysSheet:       {6, 12, 14, 15, 10, 28, 28, 14, 10, 10},
		sleepTimesSheet: {6, 12, 10, 28, 28, 10},
	} {
		for i, width := range widths {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return fmt.Errorf("column name: %w", err)
			}
			if err := f.SetColWidth(sheet, col, col, width); err != nil {
				return fmt.Errorf("set column width: %w", err)
			}
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: "Sleep review " + id, Creator: "actigraphy"}); err != nil {
		return fmt.Errorf("set document properties: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("set %s row %d: %w", sheet, row, err)
	}
	if style == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellStyle(sheet, cell, last, style); err != nil {
		return fmt.Errorf("set %s header style: %w", sheet, err)
	}
	return nil
}

func hours(iv sleep.Interval) float64 {
	return iv.Duration().Hours()
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
