package core

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// BatchResult reports what a delete or rewrite changed.
type BatchResult struct {
	Batch  *Batch
	Files  []string // files written, in write order
	Edits  int      // spans removed or replaced
	Report *Report  // rescan after the batch
}

// fileEdits holds the targets of one file, by line number.
type fileEdits struct {
	path  string
	lines map[int][]Occurrence
}

// planEdits groups targets by file and line. Files keep the order in which
// they first appear in targets. Duplicate targets are dropped.
func planEdits(targets []Occurrence) []*fileEdits {
	byFile := make(map[string]*fileEdits)
	seen := make(map[string]bool)
	var order []*fileEdits
	for _, t := range targets {
		if seen[t.ID()] {
			continue
		}
		seen[t.ID()] = true
		fe, ok := byFile[t.File]
		if !ok {
			fe = &fileEdits{path: t.File, lines: make(map[int][]Occurrence)}
			byFile[t.File] = fe
			order = append(order, fe)
		}
		fe.lines[t.Line] = append(fe.lines[t.Line], t)
	}
	return order
}

// editLine removes (ActionDelete) or replaces (ActionRewrite) the span of
// every target on line. A target is matched by ordinal first, then by the
// first unclaimed span whose text equals it ignoring case. Spans are
// replaced right to left so earlier offsets stay valid.
func editLine(line string, targets []Occurrence, action Action, replacement string) (string, error) {
	refs := ExtractReferences(line)
	claimed := make([]bool, len(refs))
	type span struct{ start, end int }
	spans := make([]span, 0, len(targets))
	for _, t := range targets {
		idx := -1
		if i := t.Ordinal - 1; i >= 0 && i < len(refs) && !claimed[i] && strings.EqualFold(refs[i].Exact, t.Exact) {
			idx = i
		} else {
			for i, r := range refs {
				if !claimed[i] && strings.EqualFold(r.Exact, t.Exact) {
					idx = i
					break
				}
			}
		}
		if idx == -1 {
			return "", fmt.Errorf("%s:%d: [[%s]]: %w", t.File, t.Line, t.Exact, ErrStaleOccurrence)
		}
		claimed[idx] = true
		spans = append(spans, span{refs[idx].Start, refs[idx].End})
	}

	var sub string
	if action == ActionRewrite {
		sub = "[[" + replacement + "]]"
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start > spans[j].start })
	for _, sp := range spans {
		line = line[:sp.start] + sub + line[sp.end:]
	}
	return line, nil
}

// rewriteContent applies fe to content and returns the new content.
func rewriteContent(fe *fileEdits, content []byte, action Action, replacement string) ([]byte, int, error) {
	if !utf8.Valid(content) {
		return nil, 0, fmt.Errorf("%s: %w", fe.path, ErrInvalidUTF8)
	}
	lines := strings.Split(string(content), "\n")
	edits := 0
	for lineNum, targets := range fe.lines {
		if lineNum < 1 || lineNum > len(lines) {
			return nil, 0, fmt.Errorf("%s:%d: %w", fe.path, lineNum, ErrStaleOccurrence)
		}
		idx := lineNum - 1 // convert 1-based to 0-based
		updated, err := editLine(lines[idx], targets, action, replacement)
		if err != nil {
			return nil, 0, err
		}
		lines[idx] = updated
		edits += len(targets)
	}
	return []byte(strings.Join(lines, "\n")), edits, nil
}

// applyBatch applies one delete or rewrite command as a single undo unit.
//
// Phase 1 reads every file and computes its new content; any failure there
// aborts before anything is written. Phase 2 backs up and writes file by
// file. A failure in phase 2 stops the batch, keeps the journal entry for
// the files already backed up, and returns the error; undo restores them.
func (s *Session) applyBatch(action Action, targets []Occurrence, replacement string, keys []string) (*BatchResult, error) {
	plan := planEdits(targets)
	if len(plan) == 0 {
		return nil, ErrNoTargets
	}

	// Phase 1: compute new contents.
	originals := make([][]byte, len(plan))
	contents := make([][]byte, len(plan))
	edits := 0
	for i, fe := range plan {
		original, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(fe.path)))
		if err != nil {
			return nil, err
		}
		updated, n, err := rewriteContent(fe, original, action, replacement)
		if err != nil {
			return nil, err
		}
		originals[i] = original
		contents[i] = updated
		edits += n
	}

	// Phase 2: back up and write.
	j, err := s.openJournal()
	if err != nil {
		return nil, err
	}
	b, err := j.begin(action, replacement, keys)
	if err != nil {
		return nil, err
	}
	bs := newBackupSet(s.dir, b, j, s.logger)
	result := &BatchResult{Batch: b, Edits: edits}
	for i, fe := range plan {
		if err := s.writeOne(bs, fe.path, originals[i], contents[i]); err != nil {
			s.report = nil
			return nil, s.abandonBatch(bs, err)
		}
		result.Files = append(result.Files, fe.path)
	}

	s.logger.Info("applied batch",
		slog.Int64("batch", b.ID),
		slog.String("action", string(action)),
		slog.Int("files", len(result.Files)),
		slog.Int("edits", edits),
	)

	r, err := s.Scan()
	if err != nil {
		return nil, err
	}
	result.Report = r
	return result, nil
}

// writeOne backs up original as rel's pre-batch copy and writes content over
// rel, recording the hash of what was written for undo conflict detection.
func (s *Session) writeOne(bs *backupSet, rel string, original, content []byte) error {
	perm, err := bs.ensure(rel, original)
	if err != nil {
		return err
	}
	if err := writeFilePreservePerm(filepath.Join(s.dir, filepath.FromSlash(rel)), content, perm); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	hash := xxhash.Sum64(content)
	if err := bs.journal.setWritten(bs.batch.ID, rel, hash); err != nil {
		return err
	}
	for i := range bs.batch.Files {
		if bs.batch.Files[i].Path == rel {
			bs.batch.Files[i].Written = hash
		}
	}
	return nil
}

// abandonBatch handles a failure in the middle of a batch. A batch that
// backed up nothing is discarded; otherwise it stays on the undo stack.
func (s *Session) abandonBatch(bs *backupSet, cause error) error {
	b := bs.batch
	if len(b.Files) == 0 {
		if err := bs.journal.remove(b.ID); err != nil {
			s.logger.Warn("discard empty batch", slog.Int64("batch", b.ID), slog.String("error", err.Error()))
		}
		_ = os.RemoveAll(bs.root())
		return cause
	}
	s.logger.Warn("batch partially applied",
		slog.Int64("batch", b.ID),
		slog.Int("backed_up", len(b.Files)),
		slog.String("error", cause.Error()),
	)
	return fmt.Errorf("batch %d partially applied, run undo to restore: %w", b.ID, cause)
}

// Target selects one occurrence, optionally as a member of a group.
type Target struct {
	Key        string
	Occurrence Occurrence
}

// Rewrite replaces the selected occurrences with [[newText]]. All targets
// must name the same group and be members of it in the current report.
func (s *Session) Rewrite(targets []Target, newText string) (*BatchResult, error) {
	replacement, err := checkReplacement(newText)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	key := targets[0].Key
	for _, t := range targets[1:] {
		if t.Key != key {
			return nil, fmt.Errorf("%w: %q and %q", ErrCrossGroup, key, t.Key)
		}
	}
	occs, err := s.resolveTargets(targets, true)
	if err != nil {
		return nil, err
	}
	return s.applyBatch(ActionRewrite, occs, replacement, []string{key})
}

// RewriteGroup replaces every occurrence of the group with [[newText]].
func (s *Session) RewriteGroup(key, newText string) (*BatchResult, error) {
	replacement, err := checkReplacement(newText)
	if err != nil {
		return nil, err
	}
	occs, err := s.groupOccurrences([]string{key})
	if err != nil {
		return nil, err
	}
	return s.applyBatch(ActionRewrite, occs, replacement, []string{key})
}

func checkReplacement(newText string) (string, error) {
	r := strings.TrimSpace(newText)
	if r == "" {
		return "", ErrEmptyReplacement
	}
	if strings.Contains(r, "]]") || strings.ContainsAny(r, "\r\n") {
		return "", fmt.Errorf("%q: %w", r, ErrBadReplacement)
	}
	return r, nil
}

// resolveTargets checks group membership against the current report and
// returns the occurrences. With requireKey, every target must name a group.
func (s *Session) resolveTargets(targets []Target, requireKey bool) ([]Occurrence, error) {
	var r *Report
	occs := make([]Occurrence, 0, len(targets))
	for _, t := range targets {
		if t.Key == "" {
			if requireKey {
				return nil, fmt.Errorf("%s: %w", t.Occurrence.ID(), ErrUnknownGroup)
			}
			occs = append(occs, t.Occurrence)
			continue
		}
		if r == nil {
			var err error
			if r, err = s.current(); err != nil {
				return nil, err
			}
		}
		g, ok := r.Group(t.Key)
		if !ok {
			return nil, fmt.Errorf("%q: %w", t.Key, ErrUnknownGroup)
		}
		if !g.Contains(t.Occurrence) {
			return nil, fmt.Errorf("%s in %q: %w", t.Occurrence.ID(), t.Key, ErrNotInGroup)
		}
		occs = append(occs, t.Occurrence)
	}
	return occs, nil
}

// groupOccurrences returns every occurrence of the named groups.
func (s *Session) groupOccurrences(keys []string) ([]Occurrence, error) {
	if len(keys) == 0 {
		return nil, ErrNoTargets
	}
	r, err := s.current()
	if err != nil {
		return nil, err
	}
	var occs []Occurrence
	for _, k := range keys {
		g, ok := r.Group(k)
		if !ok {
			return nil, fmt.Errorf("%q: %w", k, ErrUnknownGroup)
		}
		occs = append(occs, g.Occurrences...)
	}
	return occs, nil
}
