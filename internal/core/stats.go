package core

import "fmt"

// StatsOptions controls which fields to return.
type StatsOptions struct {
	Fields []string // nil/empty = all
}

// StatsResult contains directory statistics.
type StatsResult struct {
	FilesTotal      int
	ReferencesTotal int
	DistinctTotal   int // distinct normalized references
	GroupsTotal     int
	BatchesTotal    int // undoable batches in the journal
}

var validStatsFields = map[string]bool{
	"files_total":      true,
	"references_total": true,
	"distinct_total":   true,
	"groups_total":     true,
	"batches_total":    true,
}

func validateStatsFields(fields []string) error {
	for _, f := range fields {
		if !validStatsFields[f] {
			return fmt.Errorf("unknown stats field: %s", f)
		}
	}
	return nil
}

// Stats returns aggregate statistics for the directory, from a fresh scan.
func (s *Session) Stats(opts StatsOptions) (*StatsResult, error) {
	if err := validateStatsFields(opts.Fields); err != nil {
		return nil, err
	}

	r, err := s.Scan()
	if err != nil {
		return nil, err
	}

	result := &StatsResult{}
	if isFieldActive("files_total", opts.Fields) {
		result.FilesTotal = len(r.Files)
	}
	if isFieldActive("references_total", opts.Fields) {
		result.ReferencesTotal = len(r.Occurrences)
	}
	if isFieldActive("distinct_total", opts.Fields) {
		distinct := make(map[string]bool)
		for _, o := range r.Occurrences {
			distinct[o.Normalized] = true
		}
		result.DistinctTotal = len(distinct)
	}
	if isFieldActive("groups_total", opts.Fields) {
		result.GroupsTotal = len(r.Groups)
	}
	if isFieldActive("batches_total", opts.Fields) {
		batches, err := s.History()
		if err != nil {
			return nil, err
		}
		result.BatchesTotal = len(batches)
	}
	return result, nil
}
