package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/surgebase/porter2"
)

// Grouping policy names.
const (
	PolicyExact = "exact"
	PolicyToken = "token"
)

// Policy decides which buckets an occurrence belongs to and which buckets
// are worth reporting.
type Policy interface {
	Name() string
	// Keys returns the bucket keys for o. No keys means o is not grouped.
	Keys(o Occurrence) []string
	// Retain reports whether a bucket becomes a Group.
	Retain(occs []Occurrence) bool
}

// Group is a cluster of related occurrences under one key.
type Group struct {
	Key         string       `json:"key"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Count returns the number of occurrences.
func (g Group) Count() int { return len(g.Occurrences) }

// DistinctTexts returns the distinct exact texts in first-seen order.
func (g Group) DistinctTexts() []string {
	return distinctExact(g.Occurrences)
}

// Contains reports whether the group holds an occurrence with the same ID as o.
func (g Group) Contains(o Occurrence) bool {
	id := o.ID()
	for _, m := range g.Occurrences {
		if m.ID() == id {
			return true
		}
	}
	return false
}

// ExactPolicy buckets occurrences by normalized text. Stopword references
// are noise and never grouped.
type ExactPolicy struct {
	Stopwords Stopwords
}

func (ExactPolicy) Name() string { return PolicyExact }

func (p ExactPolicy) Keys(o Occurrence) []string {
	if o.Normalized == "" || p.Stopwords.Contains(o.Normalized) {
		return nil
	}
	return []string{o.Normalized}
}

func (ExactPolicy) Retain(occs []Occurrence) bool { return retainVaried(occs) }

// TokenPolicy buckets occurrences under every distinct word of their
// normalized text. Stopwords are kept. With Stem set, words are reduced to
// their porter2 stem so that "plan" and "plans" share a bucket.
type TokenPolicy struct {
	Stem bool
}

func (TokenPolicy) Name() string { return PolicyToken }

func (p TokenPolicy) Keys(o Occurrence) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, tok := range strings.Fields(o.Normalized) {
		if p.Stem {
			tok = porter2.Stem(tok)
		}
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		keys = append(keys, tok)
	}
	return keys
}

func (TokenPolicy) Retain(occs []Occurrence) bool { return retainVaried(occs) }

// retainVaried keeps buckets with at least two occurrences whose exact texts
// are not all the same.
func retainVaried(occs []Occurrence) bool {
	return len(occs) > 1 && len(distinctExact(occs)) > 1
}

func distinctExact(occs []Occurrence) []string {
	seen := make(map[string]bool, len(occs))
	var out []string
	for _, o := range occs {
		if !seen[o.Exact] {
			seen[o.Exact] = true
			out = append(out, o.Exact)
		}
	}
	return out
}

// NewPolicy returns the policy registered under name. An empty name selects
// the exact policy.
func NewPolicy(name string, stop Stopwords, stem bool) (Policy, error) {
	switch name {
	case "", PolicyExact:
		return ExactPolicy{Stopwords: stop}, nil
	case PolicyToken:
		return TokenPolicy{Stem: stem}, nil
	}
	return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidPolicyName, name, PolicyExact, PolicyToken)
}

// BuildGroups buckets occs under policy and returns the retained groups,
// largest first. Equal sizes keep the order in which keys were discovered.
// Occurrences inside a group keep the order of occs.
func BuildGroups(occs []Occurrence, policy Policy) []Group {
	buckets := make(map[string][]Occurrence)
	var order []string
	for _, o := range occs {
		for _, k := range policy.Keys(o) {
			if _, ok := buckets[k]; !ok {
				order = append(order, k)
			}
			buckets[k] = append(buckets[k], o)
		}
	}

	var groups []Group
	for _, k := range order {
		if policy.Retain(buckets[k]) {
			groups = append(groups, Group{Key: k, Occurrences: buckets[k]})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count() > groups[j].Count()
	})
	return groups
}
