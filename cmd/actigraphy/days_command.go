package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"actigraphy/internal/sleep"
	"actigraphy/internal/store"
)

func newDaysCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "days <subject-dir>",
		Short: "List a subject's days with their sleep intervals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.reviewService()
			if err != nil {
				return err
			}
			views, err := svc.Days(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{
					strconv.Itoa(v.Index + 1),
					v.Day.Date.Format("2006-01-02"),
					yesNo(v.Day.IsMissingSleep),
					yesNo(v.Day.IsMultipleSleep),
					yesNo(v.Day.IsReviewed),
					describeSleepTimes(v.SleepTimes, true),
					describeSleepTimes(v.Estimates, false),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Day", "Date", "Missing", "Multiple", "Reviewed", "Sleep Times", "Estimate"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
}

func describeSleepTimes(sleepTimes []*store.SleepTime, withID bool) string {
	parts := make([]string, 0, len(sleepTimes))
	for _, st := range sleepTimes {
		span := fmt.Sprintf("%s → %s",
			sleep.FormatTimestamp(st.OnsetWithTZ()),
			sleep.FormatTimestamp(st.WakeupWithTZ()),
		)
		if withID {
			span = fmt.Sprintf("#%d %s", st.ID, span)
		}
		parts = append(parts, span)
	}
	return strings.Join(parts, "\n")
}

func newDayCommand(ctx *commandContext) *cobra.Command {
	dayCmd := &cobra.Command{
		Use:   "day",
		Short: "Edit a single day",
	}
	dayCmd.AddCommand(newDaySetCommand(ctx))
	return dayCmd
}

func newDaySetCommand(ctx *commandContext) *cobra.Command {
	var missing, multiple, reviewed bool

	cmd := &cobra.Command{
		Use:   "set <subject-dir> <day>",
		Short: "Set the flags of a day (days are numbered from 1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseDayNumber(args[1])
			if err != nil {
				return err
			}
			var flags store.DayFlags
			if cmd.Flags().Changed("missing-sleep") {
				flags.IsMissingSleep = &missing
			}
			if cmd.Flags().Changed("multiple-sleep") {
				flags.IsMultipleSleep = &multiple
			}
			if cmd.Flags().Changed("reviewed") {
				flags.IsReviewed = &reviewed
			}

			svc, err := ctx.reviewService()
			if err != nil {
				return err
			}
			day, err := svc.SetDayFlags(cmd.Context(), args[0], index, flags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Day %d (%s): missing=%s multiple=%s reviewed=%s\n",
				index+1, day.Date.Format("2006-01-02"),
				yesNo(day.IsMissingSleep), yesNo(day.IsMultipleSleep), yesNo(day.IsReviewed))
			return nil
		},
	}

	cmd.Flags().BoolVar(&missing, "missing-sleep", false, "Mark the day as having missing sleep")
	cmd.Flags().BoolVar(&multiple, "multiple-sleep", false, "Mark the day as having multiple sleep windows")
	cmd.Flags().BoolVar(&reviewed, "reviewed", false, "Mark the day as reviewed")
	return cmd
}

// parseDayNumber converts a 1-based day number to a 0-based index.
func parseDayNumber(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("day must be a positive number, got %q", value)
	}
	return n - 1, nil
}
