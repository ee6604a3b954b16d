// Package rank orders viable events by narrative relevance and cuts
// the shortlist handed to the arbiter. Scoring is pure integer math
// over the snapshot; ties keep filter order (stable sort), so the
// whole stage is deterministic.
package rank

import (
	"sort"

	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/snapshot"
	"sovereign.ai/internal/sim/stats"
	"sovereign.ai/internal/sim/tuning"
)

// Scored pairs an event with its relevance score, exported for the
// arbiter prompt and for tests.
type Scored struct {
	Event catalogs.EventDef
	Score int
}

// Shortlist scores, sorts (descending, stable) and truncates to topN.
func Shortlist(events []catalogs.EventDef, snap snapshot.State, topN int, w tuning.Ranker) []catalogs.EventDef {
	scored := ScoreAll(events, snap, w)
	out := make([]catalogs.EventDef, 0, topN)
	for i, s := range scored {
		if topN > 0 && i >= topN {
			break
		}
		out = append(out, s.Event)
	}
	return out
}

// ScoreAll returns every event scored, sorted best first.
func ScoreAll(events []catalogs.EventDef, snap snapshot.State, w tuning.Ranker) []Scored {
	scored := make([]Scored, 0, len(events))
	for _, ev := range events {
		scored = append(scored, Scored{Event: ev, Score: Score(ev, snap, w)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// Score computes one event's relevance. Weight ordering guarantees a
// reputation-tag match beats a state-tag match beats the full drama
// budget.
func Score(ev catalogs.EventDef, snap snapshot.State, w tuning.Ranker) int {
	score := 0

	for _, trigger := range ev.SemanticTrigger {
		if hasTag(snap.ReputationTags, trigger) {
			score += w.ReputationTagWeight
		} else if hasTag(snap.StateTags, trigger) {
			score += w.StateTagWeight
		}
	}

	score += ev.DramaWeight * w.DramaBudget / 100

	if ev.DramaWeight > w.ExtremityDramaMin {
		score += countExtremeStats(snap.Stats) * w.ExtremityPerStat
	}

	score += momentumBonus(ev.Theme, snap.Momentum, w)
	return score
}

// countExtremeStats counts stats below 20 or above 80: the states
// where high-drama events land hardest.
func countExtremeStats(v stats.Vector) int {
	n := 0
	for _, val := range v {
		if val < 20 || val > 80 {
			n++
		}
	}
	return n
}

func momentumBonus(theme string, m map[string]stats.Trend, w tuning.Ranker) int {
	switch theme {
	case "hubris":
		// Wealth rising while the people sour: pride before the fall.
		if m["treasury"] == stats.Rising && m["popularity"] == stats.Falling {
			return w.HubrisMomentumBonus
		}
	case "despair":
		n := 0
		for _, trend := range m {
			if trend == stats.Falling {
				n++
			}
		}
		return n * w.DespairPerFallingStat
	case "war":
		// Military moving in either direction makes war topical.
		if t := m["military"]; t == stats.Rising || t == stats.Falling {
			return w.WarMomentumBonus
		}
	}
	return 0
}

func hasTag(set []string, tag string) bool {
	for _, t := range set {
		if t == tag {
			return true
		}
	}
	return false
}
