package core

// Delete removes the selected occurrences' [[...]] spans from their lines.
// Targets naming a group must be members of it in the current report;
// targets without a key are deleted as given.
func (s *Session) Delete(targets []Target) (*BatchResult, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	occs, err := s.resolveTargets(targets, false)
	if err != nil {
		return nil, err
	}
	return s.applyBatch(ActionDelete, occs, "", targetKeys(targets))
}

// DeleteGroups removes every occurrence of the named groups. An occurrence
// present in several selected groups is deleted once.
func (s *Session) DeleteGroups(keys []string) (*BatchResult, error) {
	occs, err := s.groupOccurrences(keys)
	if err != nil {
		return nil, err
	}
	return s.applyBatch(ActionDelete, occs, "", keys)
}

// targetKeys returns the distinct non-empty group keys of targets, in order.
func targetKeys(targets []Target) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, t := range targets {
		if t.Key != "" && !seen[t.Key] {
			seen[t.Key] = true
			keys = append(keys, t.Key)
		}
	}
	return keys
}
