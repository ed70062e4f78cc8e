package core

import (
	"fmt"
	"sort"

	"github.com/hbollon/go-edlib"
)

// Suggestion is a candidate replacement name for a group.
type Suggestion struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Similarity float64 `json:"similarity"` // Jaro-Winkler against the group key, 0..1
}

// Suggest ranks the distinct spellings of a group as replacement names:
// most used first, then closest to the group key, then first seen.
func (s *Session) Suggest(key string) ([]Suggestion, error) {
	r, err := s.current()
	if err != nil {
		return nil, err
	}
	g, ok := r.Group(key)
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, ErrUnknownGroup)
	}
	return SuggestNames(g), nil
}

// SuggestNames ranks the distinct exact texts of g.
func SuggestNames(g Group) []Suggestion {
	counts := make(map[string]int)
	for _, o := range g.Occurrences {
		counts[o.Exact]++
	}
	names := g.DistinctTexts()
	out := make([]Suggestion, len(names))
	for i, name := range names {
		sim, err := edlib.StringsSimilarity(Normalize(name), g.Key, edlib.JaroWinkler)
		if err != nil {
			sim = 0
		}
		out[i] = Suggestion{Name: name, Count: counts[name], Similarity: float64(sim)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Similarity > out[j].Similarity
	})
	return out
}
