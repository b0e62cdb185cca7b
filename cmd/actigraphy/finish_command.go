package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFinishCommand(ctx *commandContext) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "finish <subject-dir>",
		Short: "Mark a subject as fully reviewed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.reviewService()
			if err != nil {
				return err
			}
			if err := svc.SetFinished(cmd.Context(), args[0], !undo); err != nil {
				return err
			}
			state := "finished"
			if undo {
				state = "not finished"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subject marked %s\n", state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Clear the finished mark instead")
	return cmd
}
