package core

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// UndoOptions controls Undo.
type UndoOptions struct {
	// Force restores even when a file changed after the batch wrote it,
	// discarding those later changes.
	Force bool
}

// UndoResult reports what an undo restored.
type UndoResult struct {
	Batch    Batch
	Restored []string
	Report   *Report // rescan after the restore
}

// Undo pops the newest batch and copies each of its backups over the live
// file. Consumed backups are removed, and so is the batch's backup
// directory once empty. The directory is then rescanned from scratch.
//
// Unless opts.Force is set, Undo first checks that every file still holds
// the content the batch wrote; if not, it returns ErrUndoConflict and leaves
// both the stack and the files untouched.
//
// A restore failure aborts the remaining restores. The batch stays popped.
func (s *Session) Undo(opts UndoOptions) (*UndoResult, error) {
	ok, err := hasJournal(s.dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNothingToUndo
	}
	j, err := s.openJournal()
	if err != nil {
		return nil, err
	}
	b, err := j.latest()
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		if err := s.checkUnchanged(b); err != nil {
			return nil, err
		}
	}

	if err := j.remove(b.ID); err != nil {
		return nil, err
	}
	s.report = nil

	result := &UndoResult{Batch: *b}
	root := filepath.Join(s.dir, filepath.FromSlash(b.BackupDir))
	for _, f := range b.Files {
		if err := restoreFile(s.dir, b, f); err != nil {
			s.logger.Warn("undo aborted",
				slog.Int64("batch", b.ID),
				slog.String("file", f.Path),
				slog.Int("restored", len(result.Restored)),
				slog.String("error", err.Error()),
			)
			cleanupEmptyDirs(root, result.Restored)
			return result, fmt.Errorf("restore %s: %w", f.Path, err)
		}
		result.Restored = append(result.Restored, f.Path)
	}
	cleanupEmptyDirs(root, result.Restored)

	s.logger.Info("undid batch",
		slog.Int64("batch", b.ID),
		slog.String("action", string(b.Action)),
		slog.Int("files", len(result.Restored)),
	)

	r, err := s.Scan()
	if err != nil {
		return result, err
	}
	result.Report = r
	return result, nil
}

// checkUnchanged returns ErrUndoConflict if a file of b no longer holds
// the content b wrote. Files the batch never finished writing are skipped.
func (s *Session) checkUnchanged(b *Batch) error {
	for _, f := range b.Files {
		if f.Written == 0 {
			continue
		}
		content, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(f.Path)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%s: %w", f.Path, ErrUndoConflict)
			}
			return err
		}
		if xxhash.Sum64(content) != f.Written {
			return fmt.Errorf("%s: %w", f.Path, ErrUndoConflict)
		}
	}
	return nil
}

// restoreFile copies f's backup over the live file and removes the backup.
func restoreFile(dir string, b *Batch, f BatchFile) error {
	src := backupPath(dir, b, f.Path)
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := writeFilePreservePerm(filepath.Join(dir, filepath.FromSlash(f.Path)), content, f.Perm); err != nil {
		return err
	}
	return os.Remove(src)
}
