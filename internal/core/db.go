package core

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// DataDirName is the directory, under the scanned one, that holds the
// journal and backups. Scans never descend into it.
const (
	DataDirName     = ".mdrefs"
	journalFileName = "journal.sqlite"
	backupsDirName  = "backups"
)

// Action is the kind of mutation a batch applied.
type Action string

const (
	ActionDelete  Action = "delete"
	ActionRewrite Action = "rewrite"
)

// Batch is one undo unit: the files touched by a single delete or rewrite
// command and where their pre-batch copies live.
type Batch struct {
	ID          int64       `json:"id"`
	Action      Action      `json:"action"`
	CreatedAt   time.Time   `json:"created_at"`
	BackupDir   string      `json:"backup_dir"` // relative to the scanned directory
	Replacement string      `json:"replacement,omitempty"`
	Keys        []string    `json:"keys"`
	Files       []BatchFile `json:"files"`
}

// BatchFile is one file backed up by a batch.
type BatchFile struct {
	Path    string      `json:"path"` // directory-relative
	Perm    os.FileMode `json:"perm"`
	Written uint64      `json:"-"` // xxhash of the content the batch wrote; 0 if never written
}

// journal is the undo stack, stored in <dir>/.mdrefs/journal.sqlite.
type journal struct {
	db *sql.DB
}

func dataDir(dir string) string {
	return filepath.Join(dir, DataDirName)
}

func journalPath(dir string) string {
	return filepath.Join(dataDir(dir), journalFileName)
}

func ensureDataDir(dir string) (string, error) {
	d := dataDir(dir)
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", err
	}
	return d, nil
}

func openDBAt(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// openJournal opens the journal of dir, creating the data directory and
// schema on first use.
func openJournal(dir string) (*journal, error) {
	if _, err := ensureDataDir(dir); err != nil {
		return nil, err
	}
	db, err := openDBAt(journalPath(dir))
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &journal{db: db}, nil
}

func (j *journal) Close() error {
	return j.db.Close()
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS batches (
			id          INTEGER PRIMARY KEY,
			action      TEXT NOT NULL,
			created_at  INTEGER NOT NULL,
			backup_dir  TEXT NOT NULL,
			replacement TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS batch_keys (
			batch_id INTEGER NOT NULL,
			seq      INTEGER NOT NULL,
			key      TEXT NOT NULL,
			FOREIGN KEY(batch_id) REFERENCES batches(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS batch_files (
			id           INTEGER PRIMARY KEY,
			batch_id     INTEGER NOT NULL,
			path         TEXT NOT NULL,
			perm         INTEGER NOT NULL,
			written_hash TEXT,
			UNIQUE(batch_id, path),
			FOREIGN KEY(batch_id) REFERENCES batches(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_batch_keys_batch ON batch_keys(batch_id);`,
		`CREATE INDEX IF NOT EXISTS idx_batch_files_batch ON batch_files(batch_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// begin inserts a new batch and returns it with its backup directory assigned.
func (j *journal) begin(action Action, replacement string, keys []string) (*Batch, error) {
	tx, err := j.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.Exec(
		`INSERT INTO batches (action, created_at, backup_dir, replacement) VALUES (?, ?, '', ?)`,
		string(action), now.UnixNano(), replacement,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	backupDir := filepath.ToSlash(filepath.Join(DataDirName, backupsDirName, strconv.FormatInt(id, 10)))
	if _, err := tx.Exec(`UPDATE batches SET backup_dir = ? WHERE id = ?`, backupDir, id); err != nil {
		return nil, err
	}
	for i, k := range keys {
		if _, err := tx.Exec(`INSERT INTO batch_keys (batch_id, seq, key) VALUES (?, ?, ?)`, id, i, k); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &Batch{
		ID:          id,
		Action:      action,
		CreatedAt:   time.Unix(0, now.UnixNano()),
		BackupDir:   backupDir,
		Replacement: replacement,
		Keys:        keys,
	}, nil
}

func (j *journal) recordFile(batchID int64, f BatchFile) error {
	_, err := j.db.Exec(
		`INSERT INTO batch_files (batch_id, path, perm) VALUES (?, ?, ?)`,
		batchID, f.Path, int64(f.Perm),
	)
	return err
}

func (j *journal) setWritten(batchID int64, path string, hash uint64) error {
	_, err := j.db.Exec(
		`UPDATE batch_files SET written_hash = ? WHERE batch_id = ? AND path = ?`,
		strconv.FormatUint(hash, 16), batchID, path,
	)
	return err
}

// remove deletes a batch and its rows. Used both to pop an undone batch and
// to discard a batch that never touched a file.
func (j *journal) remove(batchID int64) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range []string{
		`DELETE FROM batch_files WHERE batch_id = ?`,
		`DELETE FROM batch_keys WHERE batch_id = ?`,
		`DELETE FROM batches WHERE id = ?`,
	} {
		if _, err := tx.Exec(stmt, batchID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// latest returns the newest batch, or ErrNothingToUndo.
func (j *journal) latest() (*Batch, error) {
	batches, err := j.list(1)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, ErrNothingToUndo
	}
	return &batches[0], nil
}

// list returns batches newest first. limit <= 0 means all.
func (j *journal) list(limit int) ([]Batch, error) {
	q := `SELECT id, action, created_at, backup_dir, COALESCE(replacement, '') FROM batches ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	var out []Batch
	for rows.Next() {
		var b Batch
		var action string
		var created int64
		if err := rows.Scan(&b.ID, &action, &created, &b.BackupDir, &b.Replacement); err != nil {
			rows.Close()
			return nil, err
		}
		b.Action = Action(action)
		b.CreatedAt = time.Unix(0, created)
		out = append(out, b)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Keys, err = j.keys(out[i].ID); err != nil {
			return nil, err
		}
		if out[i].Files, err = j.files(out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (j *journal) keys(batchID int64) ([]string, error) {
	rows, err := j.db.Query(`SELECT key FROM batch_keys WHERE batch_id = ? ORDER BY seq`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (j *journal) files(batchID int64) ([]BatchFile, error) {
	rows, err := j.db.Query(
		`SELECT path, perm, COALESCE(written_hash, '') FROM batch_files WHERE batch_id = ? ORDER BY id`,
		batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BatchFile
	for rows.Next() {
		var f BatchFile
		var perm int64
		var hash string
		if err := rows.Scan(&f.Path, &perm, &hash); err != nil {
			return nil, err
		}
		f.Perm = os.FileMode(perm)
		if hash != "" {
			if f.Written, err = strconv.ParseUint(hash, 16, 64); err != nil {
				return nil, fmt.Errorf("batch %d: %s: bad written hash: %w", batchID, f.Path, err)
			}
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// hasJournal reports whether dir already has a journal, without creating one.
func hasJournal(dir string) (bool, error) {
	_, err := os.Stat(journalPath(dir))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
