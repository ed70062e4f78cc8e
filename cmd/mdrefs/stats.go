package main

import (
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdrefs/internal/core"
)

func newStatsCmd(app *cliApp) *cobra.Command {
	var format, fields string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reference statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			fieldList := parseFields(fields)
			if err := validateFields(fieldList, validStatsFieldsCLI, "stats"); err != nil {
				return err
			}
			s, err := app.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.Stats(core.StatsOptions{Fields: fieldList})
			if err != nil {
				return err
			}
			if format == "json" {
				return printStatsJSON(app.stdout, result, fieldList)
			}
			return printStatsText(app.stdout, result, fieldList)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (json or text)")
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields to output")
	return cmd
}
