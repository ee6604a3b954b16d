// Package snapshot carries the read-only per-turn state handed to the
// director pipeline. Every stage consumes the same struct; none of
// them mutate session state.
package snapshot

import (
	"sort"

	"sovereign.ai/internal/sim/stats"
)

type State struct {
	Turn           int
	Stats          stats.Vector
	StateTags      []string
	ReputationTags []string
	ThemeHistory   []string
	DecisionMemory []string
	Momentum       map[string]stats.Trend
	GameOver       bool
}

// AllTags returns the union of state and reputation tags, deduplicated
// and sorted.
func (s State) AllTags() []string {
	seen := make(map[string]struct{}, len(s.StateTags)+len(s.ReputationTags))
	for _, t := range s.StateTags {
		seen[t] = struct{}{}
	}
	for _, t := range s.ReputationTags {
		seen[t] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// HasTag reports whether tag is present in either tag set.
func (s State) HasTag(tag string) bool {
	for _, t := range s.StateTags {
		if t == tag {
			return true
		}
	}
	for _, t := range s.ReputationTags {
		if t == tag {
			return true
		}
	}
	return false
}

// RecentThemes returns the last n themes, most recent last.
func (s State) RecentThemes(n int) []string {
	if n <= 0 || len(s.ThemeHistory) == 0 {
		return nil
	}
	if len(s.ThemeHistory) <= n {
		return s.ThemeHistory
	}
	return s.ThemeHistory[len(s.ThemeHistory)-n:]
}
