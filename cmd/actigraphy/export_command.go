package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"actigraphy/internal/files"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <subject-dir>",
		Short: "Rewrite the sleep log and data-cleaning files of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.reviewService()
			if err != nil {
				return err
			}
			if err := svc.Export(cmd.Context(), args[0]); err != nil {
				return err
			}
			fm, err := files.New(args[0], files.Options{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("sleep log", statusOK, fm.SleepLogFile, colorize))
			fmt.Fprintln(out, renderStatusLine("all sleep times", statusOK, fm.AllSleepTimes, colorize))
			fmt.Fprintln(out, renderStatusLine("data cleaning", statusOK, fm.DataCleaningFile, colorize))
			if cfg, _ := ctx.ensureConfig(); cfg != nil && cfg.Export.ReviewWorkbook {
				fmt.Fprintln(out, renderStatusLine("review workbook", statusOK, fm.ReviewWorkbook, colorize))
			}
			return nil
		},
	}
}
