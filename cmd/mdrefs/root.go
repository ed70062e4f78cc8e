package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ryotapoi/mdrefs/internal/core"
	"github.com/ryotapoi/mdrefs/internal/msg"
)

// cliApp carries the global flags and output streams shared by all commands.
type cliApp struct {
	stdout io.Writer
	stderr io.Writer

	dir       string
	lang      string
	verbose   bool
	policy    string
	recursive bool
	exclude   []string
	noConfig  bool

	locale msg.Locale
	logger *slog.Logger
}

// run executes the CLI with args and reports errors on stderr.
func run(args []string, stdout, stderr io.Writer) error {
	app := &cliApp{stdout: stdout, stderr: stderr, locale: msg.DefaultLocale}
	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", app.describe(err))
		return err
	}
	return nil
}

func newRootCmd(app *cliApp) *cobra.Command {
	root := &cobra.Command{
		Use:           "mdrefs",
		Short:         "Find and merge duplicate [[references]] in Markdown files",
		Long:          "Scans a directory of Markdown files for [[wiki references]], groups duplicates\nand related spellings, and rewrites or deletes them in bulk with undo.",
		Version:       resolveVersion(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
	}
	root.SetVersionTemplate("mdrefs version {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&app.dir, "dir", ".", "directory of Markdown files")
	pf.StringVar(&app.lang, "lang", "en", "message language (en or pt-BR)")
	pf.BoolVarP(&app.verbose, "verbose", "v", false, "log debug details to stderr")
	pf.StringVar(&app.policy, "policy", "", "grouping policy (exact or token); default from mdrefs.yaml, else exact")
	pf.BoolVar(&app.recursive, "recursive", false, "scan subdirectories")
	pf.StringArrayVar(&app.exclude, "exclude", nil, "exclude files matching glob (repeatable)")
	pf.BoolVar(&app.noConfig, "no-config", false, "ignore mdrefs.yaml")

	root.AddCommand(
		newScanCmd(app),
		newDeleteCmd(app),
		newRewriteCmd(app),
		newUndoCmd(app),
		newHistoryCmd(app),
		newSuggestCmd(app),
		newStatsCmd(app),
		newWatchCmd(app),
	)
	return root
}

func (app *cliApp) setup() error {
	loc, err := msg.ParseLocale(app.lang)
	if err != nil {
		return err
	}
	app.locale = loc

	level := slog.LevelWarn
	if app.verbose {
		level = slog.LevelDebug
	}
	app.logger = slog.New(slog.NewTextHandler(app.stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

func (app *cliApp) openSession() (*core.Session, error) {
	return core.Open(app.dir, core.Options{
		Policy:    app.policy,
		Recursive: app.recursive,
		Exclude:   app.exclude,
		NoConfig:  app.noConfig,
		Logger:    app.logger,
	})
}

func (app *cliApp) printf(key msg.Key, args ...any) {
	fmt.Fprintln(app.stdout, app.locale.Text(key, args...))
}

// errorMessages maps core errors to their localized explanation.
var errorMessages = []struct {
	err error
	key msg.Key
}{
	{core.ErrNoDirectory, msg.NoDirectory},
	{core.ErrNoTargets, msg.NoTargets},
	{core.ErrEmptyReplacement, msg.EmptyReplacement},
	{core.ErrBadReplacement, msg.BadReplacement},
	{core.ErrCrossGroup, msg.CrossGroup},
	{core.ErrUnknownGroup, msg.UnknownGroup},
	{core.ErrNotInGroup, msg.NotInGroup},
	{core.ErrStaleOccurrence, msg.StaleOccurrence},
	{core.ErrNothingToUndo, msg.NothingToUndo},
	{core.ErrUndoConflict, msg.UndoConflict},
	{core.ErrInvalidUTF8, msg.InvalidUTF8},
}

// describe renders err for the user, prefixing known errors with their
// localized explanation.
func (app *cliApp) describe(err error) string {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return fmt.Sprintf("%s (%v)", app.locale.Text(m.key), err)
		}
	}
	return err.Error()
}

func actionName(loc msg.Locale, a core.Action) string {
	switch a {
	case core.ActionDelete:
		return loc.Text(msg.ActionDelete)
	case core.ActionRewrite:
		return loc.Text(msg.ActionRewrite)
	}
	return string(a)
}
