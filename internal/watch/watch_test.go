package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// runWatcher starts w and returns a channel that receives one value per
// notification, plus a stop function that waits for Run to return.
func runWatcher(t *testing.T, w *Watcher) (<-chan struct{}, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { changes <- struct{}{} })
	}()
	return changes, func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return")
		}
	}
}

func waitChange(t *testing.T, changes <-chan struct{}) {
	t.Helper()
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestRun_ReportsMarkdownChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, Options{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	changes, stop := runWatcher(t, w)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("[[Alpha]]"), 0o644))
	waitChange(t, changes)
}

func TestRun_CollapsesBursts(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, Options{Debounce: 200 * time.Millisecond})
	require.NoError(t, err)
	changes, stop := runWatcher(t, w)
	defer stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte{byte('a' + i)}, 0o644))
	}
	waitChange(t, changes)
	select {
	case <-changes:
		t.Fatal("burst reported more than once")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestRun_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, Options{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	changes, stop := runWatcher(t, w)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	select {
	case <-changes:
		t.Fatal("non-Markdown change reported")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNew_RecursiveSkipsDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notes"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".mdrefs", "backups"), 0o755))

	w, err := New(dir, Options{Recursive: true, Skip: []string{".mdrefs"}})
	require.NoError(t, err)
	defer w.Close()

	assert.ElementsMatch(t, []string{dir, filepath.Join(dir, "notes")}, w.fsw.WatchList())
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)
}

func TestRun_IgnoresExcludedFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, Options{Debounce: 20 * time.Millisecond, Exclude: []string{"drafts-*.md"}})
	require.NoError(t, err)
	changes, stop := runWatcher(t, w)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "drafts-1.md"), []byte("[[Alpha]]"), 0o644))
	select {
	case <-changes:
		t.Fatal("excluded change reported")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("[[Alpha]]"), 0o644))
	waitChange(t, changes)
}

func TestRelevant(t *testing.T) {
	dir := "vault"
	w := &Watcher{dir: dir, exclude: []string{"drafts/**", "*.tmp.md"}}
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: filepath.Join(dir, "a.md"), Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "A.MD"), Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "a.md"), Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "notes", "b.md"), Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "a.md"), Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "a.txt"), Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "drafts", "x", "c.md"), Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "c.tmp.md"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.relevant(tt.ev), "relevant(%v)", tt.ev)
	}
}
