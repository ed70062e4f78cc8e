package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_Scenario(t *testing.T) {
	dir := copyVault(t, "vault_scenario")
	r, err := Scan(dir, ScanOptions{}, ExactPolicy{Stopwords: DefaultStopwords()})
	require.NoError(t, err)

	assert.Equal(t, StatusOK, r.Status)
	assert.Equal(t, []string{"a.md", "b.md"}, r.Files)
	assert.Len(t, r.Occurrences, 3)
	require.Len(t, r.Groups, 1)

	g := r.Groups[0]
	assert.Equal(t, "project plan", g.Key)
	assert.Equal(t, []string{"a.md:3:1", "a.md:3:2", "b.md:1:1"},
		[]string{g.Occurrences[0].ID(), g.Occurrences[1].ID(), g.Occurrences[2].ID()})
}

func TestScan_NoMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.txt", "[[Alpha]] [[alpha]]")
	r, err := Scan(dir, ScanOptions{}, ExactPolicy{})
	require.NoError(t, err)
	assert.Equal(t, StatusNoMarkdownFiles, r.Status)
	assert.Empty(t, r.Groups)
}

func TestScan_NoGroups(t *testing.T) {
	dir := copyVault(t, "vault_plain")
	r, err := Scan(dir, ScanOptions{}, ExactPolicy{})
	require.NoError(t, err)
	assert.Equal(t, StatusNoGroups, r.Status)
	assert.Equal(t, []string{"one.md"}, r.Files)
	assert.Len(t, r.Occurrences, 2)
}

func TestScan_NoDirectory(t *testing.T) {
	_, err := Scan("", ScanOptions{}, ExactPolicy{})
	assert.ErrorIs(t, err, ErrNoDirectory)

	_, err = Scan(filepath.Join(t.TempDir(), "missing"), ScanOptions{}, ExactPolicy{})
	assert.ErrorIs(t, err, ErrNoDirectory)

	dir := t.TempDir()
	writeFile(t, dir, "a.md", "x")
	_, err = Scan(filepath.Join(dir, "a.md"), ScanOptions{}, ExactPolicy{})
	assert.ErrorIs(t, err, ErrNoDirectory)
}

func TestScan_Recursive(t *testing.T) {
	dir := copyVault(t, "vault_nested")

	r, err := Scan(dir, ScanOptions{}, ExactPolicy{})
	require.NoError(t, err)
	assert.Equal(t, []string{"top.md"}, r.Files)
	assert.Equal(t, StatusNoGroups, r.Status)

	r, err = Scan(dir, ScanOptions{Recursive: true}, ExactPolicy{})
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/deep/deep.md", "notes/mid.md", "top.md"}, r.Files)
	g, ok := r.Group("alpha")
	require.True(t, ok)
	assert.Equal(t, 3, g.Count())
}

func TestScan_Exclude(t *testing.T) {
	dir := copyVault(t, "vault_nested")
	r, err := Scan(dir, ScanOptions{Recursive: true, Exclude: []string{"notes/deep/**"}}, ExactPolicy{})
	require.NoError(t, err)
	assert.Equal(t, []string{"notes/mid.md", "top.md"}, r.Files)
}

func TestScan_SkipsDataDir(t *testing.T) {
	dir := copyVault(t, "vault_nested")
	writeFile(t, dir, DataDirName+"/backups/1/top.md", "Top [[alpha]].")
	r, err := Scan(dir, ScanOptions{Recursive: true}, ExactPolicy{})
	require.NoError(t, err)
	assert.NotContains(t, r.Files, DataDirName+"/backups/1/top.md")
	assert.Len(t, r.Files, 3)
}

func TestScan_InvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.md"), []byte{'[', '[', 0xfe, ']', ']'}, 0o644))
	_, err := Scan(dir, ScanOptions{}, ExactPolicy{})
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestScan_TokenPolicy(t *testing.T) {
	dir := copyVault(t, "vault_tokens")

	r, err := Scan(dir, ScanOptions{}, ExactPolicy{Stopwords: DefaultStopwords()})
	require.NoError(t, err)
	assert.Equal(t, []string{"cafe"}, groupKeys(r.Groups))

	r, err = Scan(dir, ScanOptions{}, TokenPolicy{})
	require.NoError(t, err)
	assert.Equal(t, PolicyToken, r.Policy)
	assert.Equal(t, []string{"cafe", "the"}, groupKeys(r.Groups))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "no_markdown_files", StatusNoMarkdownFiles.String())
	assert.Equal(t, "no_groups", StatusNoGroups.String())
}
