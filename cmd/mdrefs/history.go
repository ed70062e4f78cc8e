package main

import (
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdrefs/internal/msg"
)

func newHistoryCmd(app *cliApp) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the actions that can be undone, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			s, err := app.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			batches, err := s.History()
			if err != nil {
				return err
			}
			if format == "json" {
				return printHistoryJSON(app.stdout, batches)
			}
			if len(batches) == 0 {
				app.printf(msg.NoHistory)
				return nil
			}
			return printHistoryText(app.stdout, batches)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (json or text)")
	return cmd
}
