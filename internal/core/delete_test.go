package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteGroups_Scenario(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{})

	res, err := s.DeleteGroups([]string{"project plan"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Edits)
	assert.Equal(t, ActionDelete, res.Batch.Action)
	assert.Equal(t, []string{"project plan"}, res.Batch.Keys)
	assert.Equal(t, "# Notes\n\nSee  and .\n", readFile(t, dir, "a.md"))
	assert.Equal(t, " again.\n", readFile(t, dir, "b.md"))
	assert.Empty(t, res.Report.Occurrences)
}

func TestDelete_LineScoped(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{})
	r, err := s.Scan()
	require.NoError(t, err)

	// Only the first span of a.md line 3 goes; its twin on the same line stays.
	res, err := s.Delete([]Target{{Occurrence: r.Occurrences[0]}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Edits)
	assert.Empty(t, res.Batch.Keys)
	assert.Equal(t, "# Notes\n\nSee  and [[project plan]].\n", readFile(t, dir, "a.md"))
	assert.Equal(t, scenarioB, readFile(t, dir, "b.md"))
}

func TestDelete_OverlappingGroups(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{Policy: PolicyToken})

	// Every occurrence is in both "project" and "plan"; each is deleted once.
	res, err := s.DeleteGroups([]string{"plan", "project"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Edits)
	assert.Equal(t, "# Notes\n\nSee  and .\n", readFile(t, dir, "a.md"))
}

func TestDelete_DuplicateTargets(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{})
	r, err := s.Scan()
	require.NoError(t, err)

	o := r.Occurrences[2]
	res, err := s.Delete([]Target{{Key: "project plan", Occurrence: o}, {Key: "project plan", Occurrence: o}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Edits)
	assert.Equal(t, []string{"project plan"}, res.Batch.Keys)
	assert.Equal(t, " again.\n", readFile(t, dir, "b.md"))
}

func TestDelete_Errors(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	s := openSession(t, dir, Options{})

	_, err := s.Delete(nil)
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = s.DeleteGroups(nil)
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = s.DeleteGroups([]string{"missing"})
	assert.ErrorIs(t, err, ErrUnknownGroup)

	_, err = s.Delete([]Target{{Key: "project plan", Occurrence: occ("a.md", 1, 1, "Notes")}})
	assert.ErrorIs(t, err, ErrNotInGroup)

	assert.Equal(t, scenarioA, readFile(t, dir, "a.md"))
}

func TestTargetKeys(t *testing.T) {
	targets := []Target{{Key: "b"}, {}, {Key: "a"}, {Key: "b"}}
	assert.Equal(t, []string{"b", "a"}, targetKeys(targets))
}

func TestDelete_OtherLinesUntouched(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "[[Foo]] one\n[[Foo]] two\n")
	s := openSession(t, dir, Options{})

	_, err := s.Delete([]Target{{Occurrence: occ("a.md", 1, 1, "foo")}})
	require.NoError(t, err)
	assert.Equal(t, " one\n[[Foo]] two\n", readFile(t, dir, "a.md"))

	_, err = s.Undo(UndoOptions{})
	require.NoError(t, err)
	assert.Equal(t, "[[Foo]] one\n[[Foo]] two\n", readFile(t, dir, "a.md"))
}
