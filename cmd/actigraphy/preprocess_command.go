package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"actigraphy/internal/preprocess"
)

func newPreprocessCommand(ctx *commandContext) *cobra.Command {
	var opts preprocess.Options

	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Ingest toolchain output for new subjects",
		Long: `Scan the data directory for output_* subject directories and store the
days, sleep estimates and data points of every subject not ingested yet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.preprocessRunner()
			if err != nil {
				return err
			}
			summary, err := runner.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, result := range summary.Subjects {
				kind, message := statusOK, "ingested"
				switch result.Outcome {
				case preprocess.OutcomeSkipped:
					kind, message = statusWarn, "already processed"
				case preprocess.OutcomeFailed:
					kind, message = statusError, result.Err.Error()
				}
				fmt.Fprintln(out, renderStatusLine(result.Subject, kind, message, colorize))
			}
			fmt.Fprintf(out, "Processed %d, skipped %d, failed %d (run %s)\n",
				summary.Processed, summary.Skipped, summary.Failed, summary.RunID)
			if summary.Failed > 0 {
				return fmt.Errorf("%d subject(s) failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "Directory holding output_* folders (default paths.data_dir)")
	cmd.Flags().StringVar(&opts.Identifier, "identifier", "", "Process only this subject")
	return cmd
}
