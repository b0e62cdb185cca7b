package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"actigraphy/internal/preprocess"
	"actigraphy/internal/review"
)

func newSubjectsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "subjects [data-dir]",
		Short: "List subject directories and their review progress",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dataDir := cfg.Paths.DataDir
			if len(args) == 1 {
				dataDir = args[0]
			}
			svc, err := ctx.reviewService()
			if err != nil {
				return err
			}

			dirs, err := preprocess.SubjectDirs(dataDir, "")
			if err != nil {
				return err
			}
			views := make([]*review.SubjectView, 0, len(dirs))
			for _, dir := range dirs {
				if info, err := os.Stat(dir); err != nil || !info.IsDir() {
					continue
				}
				view, err := svc.Subject(cmd.Context(), dir)
				if err != nil {
					return err
				}
				views = append(views, view)
			}

			if jsonOut {
				return writeJSON(cmd, views)
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintf(out, "No subjects found in %s\n", dataDir)
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				if !v.Ingested {
					rows = append(rows, []string{v.Name, "no", "", "", "", "", ""})
					continue
				}
				rows = append(rows, []string{
					v.Name,
					"yes",
					strconv.Itoa(v.Days),
					strconv.Itoa(v.Reviewed),
					strconv.Itoa(v.Excluded),
					yesNo(v.Finished),
					v.UpdatedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Subject", "Ingested", "Days", "Reviewed", "Excluded", "Finished", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON instead of a table")
	return cmd
}
