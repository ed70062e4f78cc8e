package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdrefs/internal/core"
	"github.com/ryotapoi/mdrefs/internal/msg"
	"github.com/ryotapoi/mdrefs/internal/watch"
)

func newWatchCmd(app *cliApp) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rescan and print the groups whenever a Markdown file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			w, err := watch.New(s.Dir(), watch.Options{
				Recursive: s.Config().Scan.Recursive,
				Debounce:  debounce,
				Skip:      []string{core.DataDirName},
				Exclude:   s.Config().Scan.Exclude,
				Logger:    app.logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return app.watchLoop(ctx, s, w)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "wait for changes to settle")
	return cmd
}

// watchLoop prints a report now and after every change until ctx is done.
func (app *cliApp) watchLoop(ctx context.Context, s *core.Session, w *watch.Watcher) error {
	rescan := func() {
		r, err := s.Scan()
		if err != nil {
			app.logger.Error("rescan failed", slog.String("error", err.Error()))
			return
		}
		app.printReport(r)
	}
	app.printf(msg.Watching, s.Dir())
	rescan()
	return w.Run(ctx, rescan)
}
