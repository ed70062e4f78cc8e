package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdrefs/internal/core"
	"github.com/ryotapoi/mdrefs/internal/msg"
)

func newRewriteCmd(app *cliApp) *cobra.Command {
	var groups, at []string
	var to string
	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Rename the references of a group",
		Long: "Rewrite every reference of a group to [[NAME]], or only the references at the\n" +
			"given locations (FILE:LINE[:N]), which must belong to the group.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(groups) == 0 {
				return fmt.Errorf("--group is required")
			}
			s, err := app.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			var res *core.BatchResult
			switch {
			case len(groups) == 1 && len(at) == 0:
				res, err = s.RewriteGroup(groups[0], to)
			case len(at) == 0:
				// Several groups: let the core reject the cross-group selection.
				var targets []core.Target
				if targets, err = groupTargets(s, groups); err != nil {
					return err
				}
				res, err = s.Rewrite(targets, to)
			default:
				if len(groups) > 1 {
					return fmt.Errorf("%w: %v", core.ErrCrossGroup, groups)
				}
				var targets []core.Target
				if targets, err = app.targetsAt(s, groups[0], at); err != nil {
					return err
				}
				res, err = s.Rewrite(targets, to)
			}
			if err != nil {
				return err
			}
			app.printf(msg.Rewritten, res.Edits, res.Batch.Replacement, len(res.Files))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&groups, "group", nil, "group key to rewrite")
	cmd.Flags().StringArrayVar(&at, "at", nil, "reference location FILE:LINE[:N] (repeatable)")
	cmd.Flags().StringVar(&to, "to", "", "new reference name")
	return cmd
}

// groupTargets selects every occurrence of the named groups.
func groupTargets(s *core.Session, keys []string) ([]core.Target, error) {
	r, err := s.Scan()
	if err != nil {
		return nil, err
	}
	var targets []core.Target
	for _, k := range keys {
		g, ok := r.Group(k)
		if !ok {
			return nil, fmt.Errorf("%q: %w", k, core.ErrUnknownGroup)
		}
		for _, o := range g.Occurrences {
			targets = append(targets, core.Target{Key: k, Occurrence: o})
		}
	}
	return targets, nil
}
