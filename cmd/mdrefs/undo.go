package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdrefs/internal/core"
	"github.com/ryotapoi/mdrefs/internal/msg"
)

func newUndoCmd(app *cliApp) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Restore the files changed by the last delete or rewrite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.Undo(core.UndoOptions{Force: force})
			if errors.Is(err, core.ErrNothingToUndo) {
				app.printf(msg.NothingToUndo)
				return nil
			}
			if err != nil {
				return err
			}
			app.printf(msg.Undone, actionName(app.locale, res.Batch.Action), len(res.Restored))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "undo even if files changed since the action")
	return cmd
}
