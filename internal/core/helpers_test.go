package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryotapoi/mdrefs/internal/testutil"
)

func copyVault(t *testing.T, name string) string {
	t.Helper()
	root := filepath.Join("..", "..", "testdata", name)
	dst := filepath.Join(t.TempDir(), "vault")
	require.NoError(t, testutil.CopyDir(root, dst), "copy vault")
	return dst
}

func openSession(t *testing.T, dir string, opts Options) *Session {
	t.Helper()
	s, err := Open(dir, opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func readFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	require.NoError(t, testutil.WriteFiles(dir, map[string]string{rel: content}))
}

// snapshot returns the content of every file under dir except the data directory.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == DataDirName {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func occ(file string, line, ordinal int, exact string) Occurrence {
	return Occurrence{File: file, Line: line, Ordinal: ordinal, Exact: exact, Normalized: Normalize(exact)}
}
