package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Reference is one [[...]] span found on a line.
type Reference struct {
	Exact      string // captured span, trimmed
	Normalized string
	Ordinal    int // 1-based position among the line's non-empty spans
	Start      int // byte offset of "[["
	End        int // byte offset just past "]]"
}

// Occurrence is a reference at a specific file and line.
type Occurrence struct {
	File       string `json:"file"` // directory-relative, slash separated
	Line       int    `json:"line"` // 1-based
	Ordinal    int    `json:"ordinal"`
	Exact      string `json:"exact"`
	Normalized string `json:"normalized"`
}

// ID identifies the occurrence within a scan as "file:line:ordinal".
func (o Occurrence) ID() string {
	return fmt.Sprintf("%s:%d:%d", o.File, o.Line, o.Ordinal)
}

// ExtractReferences returns every [[...]] span on line, left to right.
// A span ends at the first "]]" after its "[["; spans whose trimmed content
// is empty are dropped.
func ExtractReferences(line string) []Reference {
	var out []Reference
	offset := 0
	for {
		start := strings.Index(line[offset:], "[[")
		if start == -1 {
			break
		}
		start += offset
		end := strings.Index(line[start+2:], "]]")
		if end == -1 {
			break
		}
		end = start + 2 + end
		exact := strings.TrimSpace(line[start+2 : end])
		offset = end + 2
		if exact == "" {
			continue
		}
		out = append(out, Reference{
			Exact:      exact,
			Normalized: Normalize(exact),
			Ordinal:    len(out) + 1,
			Start:      start,
			End:        offset,
		})
	}
	return out
}

// parseOccurrences extracts the occurrences of every line of content.
// rel is recorded as the occurrence file.
func parseOccurrences(rel string, content []byte) ([]Occurrence, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%s: %w", rel, ErrInvalidUTF8)
	}
	var out []Occurrence
	for i, line := range strings.Split(string(content), "\n") {
		for _, ref := range ExtractReferences(line) {
			out = append(out, Occurrence{
				File:       rel,
				Line:       i + 1,
				Ordinal:    ref.Ordinal,
				Exact:      ref.Exact,
				Normalized: ref.Normalized,
			})
		}
	}
	return out, nil
}
