package core

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath cleans a directory-relative path: forward slashes, no leading "./".
func NormalizePath(path string) string {
	clean := filepath.ToSlash(filepath.Clean(path))
	return strings.TrimPrefix(clean, "./")
}

// isMarkdownName reports whether name ends in ".md", ignoring case.
func isMarkdownName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".md")
}

// writeFilePreservePerm writes data to path with the given permission bits.
// os.WriteFile applies umask on file creation, so os.Chmod is called to
// ensure the exact permission bits are set.
func writeFilePreservePerm(path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return err
	}
	return os.Chmod(path, perm)
}

// cleanupEmptyDirs removes empty directories left after backup copies are
// consumed. It walks from each path's parent directory upward, removing empty
// directories until it reaches root or encounters a non-empty directory.
// root itself is removed last if it ends up empty.
func cleanupEmptyDirs(root string, paths []string) {
	cleaned := make(map[string]bool)
	for _, p := range paths {
		dir := filepath.Dir(filepath.Join(root, p))
		for {
			rel, err := filepath.Rel(root, dir)
			if err != nil {
				break
			}
			rel = filepath.ToSlash(rel)
			if rel == "." || rel == "" || strings.HasPrefix(rel, "..") {
				break
			}
			if cleaned[dir] {
				break
			}
			if err := os.Remove(dir); err != nil {
				break // non-empty or permission error
			}
			cleaned[dir] = true
			dir = filepath.Dir(dir)
		}
	}
	_ = os.Remove(root)
}

// isFieldActive returns true if the field is requested (or if fields is empty, meaning all).
func isFieldActive(field string, fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
