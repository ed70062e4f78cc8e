package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndo_RestoresBytes(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	before := snapshot(t, dir)
	s := openSession(t, dir, Options{})

	res, err := s.RewriteGroup("project plan", "Master Plan")
	require.NoError(t, err)
	backupRoot := filepath.Join(dir, filepath.FromSlash(res.Batch.BackupDir))
	assert.FileExists(t, filepath.Join(backupRoot, "a.md"))

	u, err := s.Undo(UndoOptions{})
	require.NoError(t, err)
	assert.Equal(t, ActionRewrite, u.Batch.Action)
	assert.Equal(t, []string{"a.md", "b.md"}, u.Restored)
	assert.Equal(t, before, snapshot(t, dir))
	assert.NoDirExists(t, backupRoot)

	// The rescan sees the original group again.
	require.NotNil(t, u.Report)
	g, ok := u.Report.Group("project plan")
	require.True(t, ok)
	assert.Equal(t, 3, g.Count())
}

func TestUndo_NothingToUndo(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{})

	_, err := s.Undo(UndoOptions{})
	assert.ErrorIs(t, err, ErrNothingToUndo)
	assert.NoDirExists(t, filepath.Join(dir, DataDirName))
}

func TestUndo_LastInFirstOut(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{})

	_, err := s.RewriteGroup("project plan", "Master Plan")
	require.NoError(t, err)
	afterRewrite := snapshot(t, dir)

	r, err := s.Scan()
	require.NoError(t, err)
	var target Occurrence
	for _, o := range r.Occurrences {
		if o.File == "b.md" {
			target = o
		}
	}
	_, err = s.Delete([]Target{{Occurrence: target}})
	require.NoError(t, err)
	assert.Equal(t, " again.\n", readFile(t, dir, "b.md"))

	u, err := s.Undo(UndoOptions{})
	require.NoError(t, err)
	assert.Equal(t, ActionDelete, u.Batch.Action)
	assert.Equal(t, afterRewrite, snapshot(t, dir))

	u, err = s.Undo(UndoOptions{})
	require.NoError(t, err)
	assert.Equal(t, ActionRewrite, u.Batch.Action)
	assert.Equal(t, scenarioA, readFile(t, dir, "a.md"))
	assert.Equal(t, scenarioB, readFile(t, dir, "b.md"))

	_, err = s.Undo(UndoOptions{})
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndo_Conflict(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{})

	_, err := s.RewriteGroup("project plan", "Master Plan")
	require.NoError(t, err)
	writeFile(t, dir, "a.md", "edited by hand\n")

	_, err = s.Undo(UndoOptions{})
	assert.ErrorIs(t, err, ErrUndoConflict)
	assert.Equal(t, "edited by hand\n", readFile(t, dir, "a.md"))
	history, err := s.History()
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = s.Undo(UndoOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, scenarioA, readFile(t, dir, "a.md"))
	assert.Equal(t, scenarioB, readFile(t, dir, "b.md"))
}

func TestUndo_ConflictOnRemovedFile(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{})

	_, err := s.RewriteGroup("project plan", "Master Plan")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "b.md")))

	_, err = s.Undo(UndoOptions{})
	assert.ErrorIs(t, err, ErrUndoConflict)

	_, err = s.Undo(UndoOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, scenarioB, readFile(t, dir, "b.md"))
}

func TestUndo_AcrossSessions(t *testing.T) {
	dir := copyVault(t, "vault_scenario")

	s1, err := Open(dir, Options{})
	require.NoError(t, err)
	_, err = s1.RewriteGroup("project plan", "Master Plan")
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2 := openSession(t, dir, Options{})
	u, err := s2.Undo(UndoOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Master Plan", u.Batch.Replacement)
	assert.Equal(t, scenarioA, readFile(t, dir, "a.md"))
}

func TestHistory(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{})

	history, err := s.History()
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = s.RewriteGroup("project plan", "Master Plan")
	require.NoError(t, err)
	_, err = s.DeleteGroups(nil)
	require.ErrorIs(t, err, ErrNoTargets)

	history, err = s.History()
	require.NoError(t, err)
	require.Len(t, history, 1)

	b := history[0]
	assert.Equal(t, ActionRewrite, b.Action)
	assert.Equal(t, "Master Plan", b.Replacement)
	assert.Equal(t, []string{"project plan"}, b.Keys)
	require.Len(t, b.Files, 2)
	assert.Equal(t, "a.md", b.Files[0].Path)
	assert.NotZero(t, b.Files[0].Written)
	assert.False(t, b.CreatedAt.IsZero())
}

func TestHistory_NewestFirst(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{})
	r, err := s.Scan()
	require.NoError(t, err)

	_, err = s.Delete([]Target{{Occurrence: r.Occurrences[2]}})
	require.NoError(t, err)
	_, err = s.Delete([]Target{{Occurrence: r.Occurrences[0]}})
	require.NoError(t, err)

	history, err := s.History()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Greater(t, history[0].ID, history[1].ID)
	assert.Equal(t, "a.md", history[0].Files[0].Path)
	assert.Equal(t, "b.md", history[1].Files[0].Path)
}

func TestUndo_RestoreFailure(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{})

	_, err := s.RewriteGroup("project plan", "Master Plan")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "a.md")))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a.md"), 0o755))

	u, err := s.Undo(UndoOptions{Force: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restore a.md")
	require.NotNil(t, u)
	assert.Empty(t, u.Restored)

	// The batch stays popped and the remaining files are left as they were.
	history, err := s.History()
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, "[[Master Plan]] again.\n", readFile(t, dir, "b.md"))
}
