package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ScanOptions controls which files are scanned.
type ScanOptions struct {
	Recursive bool
	Exclude   []string // doublestar globs on the relative path
}

// Status tells a caller whether a report has anything actionable.
type Status int

const (
	StatusOK Status = iota
	StatusNoMarkdownFiles
	StatusNoGroups
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoMarkdownFiles:
		return "no_markdown_files"
	case StatusNoGroups:
		return "no_groups"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Report is the result of a scan: the groups found and what they were built from.
type Report struct {
	Dir         string
	Policy      string
	Files       []string // scanned files, directory-relative
	Occurrences []Occurrence
	Groups      []Group
	Status      Status
}

// Group returns the group with the given key.
func (r *Report) Group(key string) (Group, bool) {
	for _, g := range r.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

// Scan reads every Markdown file in dir and groups the references under
// policy. An empty directory or a directory without groups is reported
// through Report.Status, not as an error. Read and decoding failures abort
// the whole scan.
func Scan(dir string, opts ScanOptions, policy Policy) (*Report, error) {
	if err := checkDir(dir); err != nil {
		return nil, err
	}
	files, err := collectMarkdownFiles(dir, opts)
	if err != nil {
		return nil, err
	}

	r := &Report{Dir: dir, Policy: policy.Name(), Files: files}
	if len(files) == 0 {
		r.Status = StatusNoMarkdownFiles
		return r, nil
	}

	for _, rel := range files {
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		occs, err := parseOccurrences(rel, content)
		if err != nil {
			return nil, err
		}
		r.Occurrences = append(r.Occurrences, occs...)
	}

	r.Groups = BuildGroups(r.Occurrences, policy)
	if len(r.Groups) == 0 {
		r.Status = StatusNoGroups
	}
	return r, nil
}

func checkDir(dir string) error {
	if dir == "" {
		return ErrNoDirectory
	}
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", dir, ErrNoDirectory)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrNoDirectory)
	}
	return nil
}

// collectMarkdownFiles lists the .md files of dir in lexical order. Without
// Recursive only the top level is listed. The data directory is never scanned.
func collectMarkdownFiles(dir string, opts ScanOptions) ([]string, error) {
	var files []string
	if !opts.Recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Type().IsRegular() && isMarkdownName(e.Name()) {
				files = append(files, e.Name())
			}
		}
		return filterExcludes(files, opts.Exclude), nil
	}

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
		if d.Type().IsRegular() && isMarkdownName(d.Name()) {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, NormalizePath(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return filterExcludes(files, opts.Exclude), nil
}
