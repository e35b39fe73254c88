package matcher

import (
	"strings"

	"transcriptsync/internal/catalog"
	"transcriptsync/internal/textutil"
)

// DefaultThreshold is the fuzzy score a candidate must exceed.
const DefaultThreshold = 0.6

// Candidate pairs an external name with the best catalog episode found.
type Candidate struct {
	Name       string
	Normalized string
	Episode    catalog.Episode
	Confidence float64
	// Contained is set when the names matched by substring containment.
	Contained bool
}

type entry struct {
	episode catalog.Episode
	guest   string
}

// Matcher holds the normalized guest names of one catalog snapshot.
type Matcher struct {
	threshold float64
	entries   []entry
}

// New prepares a matcher over episodes in the given order. A threshold
// outside (0,1) falls back to DefaultThreshold.
func New(episodes []catalog.Episode, threshold float64) *Matcher {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	m := &Matcher{threshold: threshold, entries: make([]entry, 0, len(episodes))}
	for _, ep := range episodes {
		guest := Normalize(ep.Guest)
		if guest == "" {
			continue
		}
		m.entries = append(m.entries, entry{episode: ep, guest: guest})
	}
	return m
}

// Threshold returns the acceptance threshold in use.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Best scans the catalog and returns the highest-scoring candidate whether or
// not it clears the threshold. ok is false only when there was nothing to
// compare against.
func (m *Matcher) Best(name string) (Candidate, bool) {
	cand := Candidate{Name: name, Normalized: Normalize(name)}
	if cand.Normalized == "" || len(m.entries) == 0 {
		return cand, false
	}
	found := false
	for _, e := range m.entries {
		if strings.Contains(cand.Normalized, e.guest) || strings.Contains(e.guest, cand.Normalized) {
			cand.Episode = e.episode
			cand.Confidence = 1
			cand.Contained = true
			return cand, true
		}
		score := textutil.Ratio(cand.Normalized, e.guest)
		if !found || score > cand.Confidence {
			cand.Episode = e.episode
			cand.Confidence = score
			found = true
		}
	}
	return cand, found
}

// Match returns the accepted candidate for name. A fuzzy score must be
// strictly greater than the threshold; containment always passes.
func (m *Matcher) Match(name string) (Candidate, bool) {
	cand, ok := m.Best(name)
	if !ok {
		return cand, false
	}
	if cand.Contained || cand.Confidence > m.threshold {
		return cand, true
	}
	return cand, false
}
