package main

import (
	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdrefs/internal/core"
	"github.com/ryotapoi/mdrefs/internal/msg"
)

func newScanCmd(app *cliApp) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List groups of duplicate or related references",
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

			r, err := s.Scan()
			if err != nil {
				return err
			}
			if format == "json" {
				return printReportJSON(app.stdout, r)
			}
			app.printReport(r)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (json or text)")
	return cmd
}

// printReport prints r as text, or the localized reason it is empty.
func (app *cliApp) printReport(r *core.Report) {
	switch r.Status {
	case core.StatusNoMarkdownFiles:
		app.printf(msg.NoMarkdownFiles, r.Dir)
	case core.StatusNoGroups:
		app.printf(msg.NoGroups)
	default:
		printReportText(app.stdout, r)
		app.printf(msg.GroupsFound, len(r.Groups), len(r.Occurrences), len(r.Files), r.Policy)
	}
}
