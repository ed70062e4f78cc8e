package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdrefs/internal/core"
	"github.com/ryotapoi/mdrefs/internal/msg"
)

func newDeleteCmd(app *cliApp) *cobra.Command {
	var groups, at []string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete references by group or by location",
		Long: "Delete every reference of the given groups, or only the references at the\n" +
			"given locations (FILE:LINE[:N]). With both, the locations must belong to the group.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(groups) == 0 && len(at) == 0 {
				return fmt.Errorf("--group or --at is required")
			}
			if len(at) > 0 && len(groups) > 1 {
				return fmt.Errorf("--at can be combined with a single --group only")
			}
			s, err := app.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			var res *core.BatchResult
			if len(at) == 0 {
				res, err = s.DeleteGroups(groups)
			} else {
				var key string
				if len(groups) == 1 {
					key = groups[0]
				}
				var targets []core.Target
				targets, err = app.targetsAt(s, key, at)
				if err != nil {
					return err
				}
				res, err = s.Delete(targets)
			}
			if err != nil {
				return err
			}
			app.printf(msg.Deleted, res.Edits, len(res.Files))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&groups, "group", nil, "group key to delete (repeatable)")
	cmd.Flags().StringArrayVar(&at, "at", nil, "reference location FILE:LINE[:N] (repeatable)")
	return cmd
}

// targetsAt resolves --at locations against a fresh scan.
func (app *cliApp) targetsAt(s *core.Session, key string, at []string) ([]core.Target, error) {
	r, err := s.Scan()
	if err != nil {
		return nil, err
	}
	targets := make([]core.Target, 0, len(at))
	for _, a := range at {
		loc, err := parseAt(a)
		if err != nil {
			return nil, err
		}
		o, err := findOccurrence(r, loc)
		if err != nil {
			return nil, err
		}
		targets = append(targets, core.Target{Key: key, Occurrence: o})
	}
	return targets, nil
}
