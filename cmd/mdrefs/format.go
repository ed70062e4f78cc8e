package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ryotapoi/mdrefs/internal/core"
)

// parseFields splits a comma-separated field string into a slice.
// Returns nil for empty input.
func parseFields(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateFormat checks that format is "json" or "text".
func validateFormat(format string) error {
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format: %q (must be json or text)", format)
	}
	return nil
}

// validateFields checks that all fields are in the valid set.
// name is used in the error message (e.g. "stats").
func validateFields(fields []string, valid map[string]bool, name string) error {
	for _, f := range fields {
		if !valid[f] {
			return fmt.Errorf("unknown %s field: %s", name, f)
		}
	}
	return nil
}

// fieldSet returns a set of fields to show. If fields is nil/empty, all valid fields are shown.
func fieldSet(fields []string, valid map[string]bool) map[string]bool {
	if len(fields) == 0 {
		all := make(map[string]bool)
		for k := range valid {
			all[k] = true
		}
		return all
	}
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[f] = true
	}
	return m
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// location is a parsed --at value.
type location struct {
	file    string
	line    int
	ordinal int
}

// parseAt parses "FILE:LINE" or "FILE:LINE:N". N is the 1-based position
// of the reference on the line and defaults to 1.
func parseAt(s string) (location, error) {
	parts := strings.Split(s, ":")
	bad := fmt.Errorf("invalid --at %q (want FILE:LINE or FILE:LINE:N)", s)
	if len(parts) < 2 {
		return location{}, bad
	}
	nums := 0
	for i := len(parts) - 1; i >= 1 && nums < 2; i-- {
		if _, err := strconv.Atoi(parts[i]); err != nil {
			break
		}
		nums++
	}
	if nums == 0 {
		return location{}, bad
	}
	loc := location{file: core.NormalizePath(strings.Join(parts[:len(parts)-nums], ":")), ordinal: 1}
	loc.line, _ = strconv.Atoi(parts[len(parts)-nums])
	if nums == 2 {
		loc.ordinal, _ = strconv.Atoi(parts[len(parts)-1])
	}
	if loc.file == "" || loc.file == "." || loc.line < 1 || loc.ordinal < 1 {
		return location{}, bad
	}
	return loc, nil
}

// findOccurrence returns the occurrence of r at loc.
func findOccurrence(r *core.Report, loc location) (core.Occurrence, error) {
	for _, o := range r.Occurrences {
		if o.File == loc.file && o.Line == loc.line && o.Ordinal == loc.ordinal {
			return o, nil
		}
	}
	return core.Occurrence{}, fmt.Errorf("%s:%d:%d: %w", loc.file, loc.line, loc.ordinal, core.ErrStaleOccurrence)
}

// --- Scan output ---

func printReportText(w io.Writer, r *core.Report) error {
	for _, g := range r.Groups {
		fmt.Fprintf(w, "%d\t%s\n", g.Count(), g.Key)
		for _, o := range g.Occurrences {
			fmt.Fprintf(w, "\t%s\t%s\n", o.ID(), o.Exact)
		}
	}
	return nil
}

type reportJSON struct {
	Dir        string      `json:"dir"`
	Policy     string      `json:"policy"`
	Status     string      `json:"status"`
	Files      int         `json:"files"`
	References int         `json:"references"`
	Groups     []groupJSON `json:"groups"`
}

type groupJSON struct {
	Key         string            `json:"key"`
	Count       int               `json:"count"`
	Occurrences []core.Occurrence `json:"occurrences"`
}

func printReportJSON(w io.Writer, r *core.Report) error {
	out := reportJSON{
		Dir:        r.Dir,
		Policy:     r.Policy,
		Status:     r.Status.String(),
		Files:      len(r.Files),
		References: len(r.Occurrences),
		Groups:     make([]groupJSON, 0, len(r.Groups)),
	}
	for _, g := range r.Groups {
		out.Groups = append(out.Groups, groupJSON{Key: g.Key, Count: g.Count(), Occurrences: g.Occurrences})
	}
	return writeJSON(w, out)
}

// --- History output ---

func printHistoryText(w io.Writer, batches []core.Batch) error {
	for _, b := range batches {
		fmt.Fprintf(w, "#%d\t%s\t%s\t%d files", b.ID, b.Action, b.CreatedAt.Format(time.RFC3339), len(b.Files))
		if len(b.Keys) > 0 {
			fmt.Fprintf(w, "\t%s", strings.Join(b.Keys, ", "))
		}
		if b.Replacement != "" {
			fmt.Fprintf(w, "\t-> [[%s]]", b.Replacement)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func printHistoryJSON(w io.Writer, batches []core.Batch) error {
	if batches == nil {
		batches = []core.Batch{}
	}
	return writeJSON(w, batches)
}

// --- Suggest output ---

func printSuggestionsText(w io.Writer, sugs []core.Suggestion) error {
	for _, s := range sugs {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", s.Name, s.Count, s.Similarity)
	}
	return nil
}

// --- Stats output ---

var validStatsFieldsCLI = map[string]bool{
	"files_total":      true,
	"references_total": true,
	"distinct_total":   true,
	"groups_total":     true,
	"batches_total":    true,
}

func buildStatsMap(r *core.StatsResult, fields []string) map[string]int {
	show := fieldSet(fields, validStatsFieldsCLI)
	m := make(map[string]int)
	if show["files_total"] {
		m["files_total"] = r.FilesTotal
	}
	if show["references_total"] {
		m["references_total"] = r.ReferencesTotal
	}
	if show["distinct_total"] {
		m["distinct_total"] = r.DistinctTotal
	}
	if show["groups_total"] {
		m["groups_total"] = r.GroupsTotal
	}
	if show["batches_total"] {
		m["batches_total"] = r.BatchesTotal
	}
	return m
}

func printStatsJSON(w io.Writer, r *core.StatsResult, fields []string) error {
	return writeJSON(w, buildStatsMap(r, fields))
}

func printStatsText(w io.Writer, r *core.StatsResult, fields []string) error {
	m := buildStatsMap(r, fields)
	for _, k := range []string{"files_total", "references_total", "distinct_total", "groups_total", "batches_total"} {
		if v, ok := m[k]; ok {
			fmt.Fprintf(w, "%s: %d\n", k, v)
		}
	}
	return nil
}
