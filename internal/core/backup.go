package core

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// backupSet copies files into a batch's backup directory before their first
// write. Copying is idempotent: the first copy already holds the pre-batch
// content.
type backupSet struct {
	dir     string // scanned directory
	batch   *Batch
	journal *journal
	logger  *slog.Logger
	perms   map[string]os.FileMode
}

func newBackupSet(dir string, b *Batch, j *journal, logger *slog.Logger) *backupSet {
	return &backupSet{
		dir:     dir,
		batch:   b,
		journal: j,
		logger:  logger,
		perms:   make(map[string]os.FileMode),
	}
}

func (bs *backupSet) root() string {
	return filepath.Join(bs.dir, filepath.FromSlash(bs.batch.BackupDir))
}

// ensure backs up rel with content, the bytes the batch's edits were
// computed from, unless rel was already backed up in this batch. It returns
// the live file's permission bits.
func (bs *backupSet) ensure(rel string, content []byte) (os.FileMode, error) {
	if perm, ok := bs.perms[rel]; ok {
		return perm, nil
	}
	src := filepath.Join(bs.dir, filepath.FromSlash(rel))
	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}
	perm := info.Mode().Perm()

	dst := filepath.Join(bs.root(), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	if err := writeFilePreservePerm(dst, content, perm); err != nil {
		return 0, fmt.Errorf("backup %s: %w", rel, err)
	}
	f := BatchFile{Path: rel, Perm: perm}
	if err := bs.journal.recordFile(bs.batch.ID, f); err != nil {
		return 0, err
	}
	bs.batch.Files = append(bs.batch.Files, f)
	bs.perms[rel] = perm
	bs.logger.Debug("backed up file",
		slog.Int64("batch", bs.batch.ID),
		slog.String("file", rel),
		slog.String("backup", dst),
	)
	return perm, nil
}

// backupPath returns where rel's copy for batch b lives.
func backupPath(dir string, b *Batch, rel string) string {
	return filepath.Join(dir, filepath.FromSlash(b.BackupDir), filepath.FromSlash(rel))
}
