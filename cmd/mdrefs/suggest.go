package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSuggestCmd(app *cliApp) *cobra.Command {
	var group, format string
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest replacement names for a group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if group == "" {
				return fmt.Errorf("--group is required")
			}
			if err := validateFormat(format); err != nil {
				return err
			}
			s, err := app.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			sugs, err := s.Suggest(group)
			if err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(app.stdout, sugs)
			}
			return printSuggestionsText(app.stdout, sugs)
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group key")
	cmd.Flags().StringVar(&format, "format", "text", "output format (json or text)")
	return cmd
}
