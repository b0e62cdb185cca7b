package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"actigraphy/internal/sleep"
	"actigraphy/internal/store"
)

var instantLayouts = []string{
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

func newSleepCommand(ctx *commandContext) *cobra.Command {
	sleepCmd := &cobra.Command{
		Use:   "sleep",
		Short: "Add, edit or remove manual sleep intervals",
	}
	sleepCmd.AddCommand(newSleepAddCommand(ctx))
	sleepCmd.AddCommand(newSleepEditCommand(ctx))
	sleepCmd.AddCommand(newSleepRemoveCommand(ctx))
	return sleepCmd
}

func newSleepAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <subject-dir> <day>",
		Short: "Add an empty interval at the default sleep time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseDayNumber(args[1])
			if err != nil {
				return err
			}
			svc, err := ctx.reviewService()
			if err != nil {
				return err
			}
			added, err := svc.AddSleepTime(cmd.Context(), args[0], index)
			if err != nil {
				return err
			}
			printSleepTime(cmd, "Added", added)
			return nil
		},
	}
}

func newSleepEditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <subject-dir> <sleep-time-id> <onset> <wakeup>",
		Short: "Replace the onset and wakeup of an interval",
		Long: `Replace the onset and wakeup of a manual interval. Instants carry their
UTC offset, for example "2024-05-01 23:15:00+02:00" or 2024-05-01T23:15:00+02:00.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSleepTimeID(args[1])
			if err != nil {
				return err
			}
			onset, err := parseInstant(args[2])
			if err != nil {
				return fmt.Errorf("onset: %w", err)
			}
			wakeup, err := parseInstant(args[3])
			if err != nil {
				return fmt.Errorf("wakeup: %w", err)
			}
			svc, err := ctx.reviewService()
			if err != nil {
				return err
			}
			updated, err := svc.EditSleepTime(cmd.Context(), args[0], id, onset, wakeup)
			if err != nil {
				return err
			}
			printSleepTime(cmd, "Updated", updated)
			return nil
		},
	}
}

func newSleepRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <subject-dir> <sleep-time-id>",
		Short: "Delete a manual interval",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSleepTimeID(args[1])
			if err != nil {
				return err
			}
			svc, err := ctx.reviewService()
			if err != nil {
				return err
			}
			if err := svc.RemoveSleepTime(cmd.Context(), args[0], id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed sleep time #%d\n", id)
			return nil
		},
	}
}

func printSleepTime(cmd *cobra.Command, verb string, st *store.SleepTime) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s sleep time #%d: %s → %s (%s)\n",
		verb, st.ID,
		sleep.FormatTimestamp(st.OnsetWithTZ()),
		sleep.FormatTimestamp(st.WakeupWithTZ()),
		st.Duration(),
	)
}

func parseSleepTimeID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(value), "#"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid sleep time id %q", value)
	}
	return id, nil
}

// parseInstant parses a timestamp that must carry a UTC offset.
func parseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q; expected YYYY-MM-DD HH:MM[:SS]±HH:MM", value)
}
