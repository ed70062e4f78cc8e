package core

import (
	"io"
	"log/slog"
	"time"
)

// Options configures a Session. Non-zero fields override mdrefs.yaml.
type Options struct {
	Policy    string       // "exact" or "token"
	Recursive bool         // scan subdirectories
	Exclude   []string     // extra exclude globs, appended to the config's
	NoConfig  bool         // ignore mdrefs.yaml
	Logger    *slog.Logger // nil discards logs
}

// Session owns everything one caller needs to scan a directory and mutate
// its references: configuration, the grouping policy, the undo journal and
// the latest report. It is not safe for concurrent use.
type Session struct {
	dir      string
	cfg      Config
	scanOpts ScanOptions
	policy   Policy
	logger   *slog.Logger
	journal  *journal
	report   *Report
}

// Open prepares a session for dir. Nothing is scanned and nothing is
// written until a method asks for it.
func Open(dir string, opts Options) (*Session, error) {
	if err := checkDir(dir); err != nil {
		return nil, err
	}

	var cfg Config
	if !opts.NoConfig {
		var err error
		if cfg, err = LoadConfig(dir); err != nil {
			return nil, err
		}
	}
	if opts.Policy != "" {
		cfg.Grouping.Policy = opts.Policy
	}
	if opts.Recursive {
		cfg.Scan.Recursive = true
	}
	cfg.Scan.Exclude = append(cfg.Scan.Exclude, opts.Exclude...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		dir:      dir,
		cfg:      cfg,
		scanOpts: ScanOptions{Recursive: cfg.Scan.Recursive, Exclude: cfg.Scan.Exclude},
		policy:   policy,
		logger:   logger,
	}, nil
}

// Dir returns the scanned directory.
func (s *Session) Dir() string { return s.dir }

// Config returns the effective configuration.
func (s *Session) Config() Config { return s.cfg }

// Policy returns the grouping policy in use.
func (s *Session) Policy() Policy { return s.policy }

// Report returns the latest scan report, or nil before the first scan.
func (s *Session) Report() *Report { return s.report }

// Scan rescans the directory from scratch and replaces the session report.
func (s *Session) Scan() (*Report, error) {
	start := time.Now()
	r, err := Scan(s.dir, s.scanOpts, s.policy)
	if err != nil {
		return nil, err
	}
	s.report = r
	s.logger.Debug("scanned directory",
		slog.String("dir", s.dir),
		slog.String("policy", r.Policy),
		slog.Int("files", len(r.Files)),
		slog.Int("references", len(r.Occurrences)),
		slog.Int("groups", len(r.Groups)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return r, nil
}

// current returns the session report, scanning first if there is none.
func (s *Session) current() (*Report, error) {
	if s.report != nil {
		return s.report, nil
	}
	return s.Scan()
}

// openJournal opens the undo journal on first use.
func (s *Session) openJournal() (*journal, error) {
	if s.journal != nil {
		return s.journal, nil
	}
	j, err := openJournal(s.dir)
	if err != nil {
		return nil, err
	}
	s.journal = j
	return j, nil
}

// History lists the undoable batches, newest first.
func (s *Session) History() ([]Batch, error) {
	ok, err := hasJournal(s.dir)
	if err != nil || !ok {
		return nil, err
	}
	j, err := s.openJournal()
	if err != nil {
		return nil, err
	}
	return j.list(0)
}

// Close releases the journal.
func (s *Session) Close() error {
	if s.journal == nil {
		return nil
	}
	err := s.journal.Close()
	s.journal = nil
	return err
}
