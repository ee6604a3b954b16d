// Package rules is the deterministic viability gate in front of the
// ranker. It deals only in hard vetoes; scoring happens downstream.
package rules

import (
	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/snapshot"
)

const (
	// Crisis floor: below this treasury or stability the realm has no
	// appetite for triumphal storylines.
	crisisFloor = 15

	// Theme/resource coherence bounds.
	hubrisMinTreasury = 60
	despairMaxTreasury = 50

	// Semantic triggers only hard-block at or above this drama weight;
	// below it they are a ranking signal, not a veto.
	triggerHardBlockDrama = 80

	// Anti-repetition looks at the last N selected themes.
	repetitionWindow = 2
)

// Themes exempt from anti-repetition: bookkeeping events may repeat
// freely, and the terminal theme must never be suppressed.
var repetitionExempt = map[string]bool{
	"management": true,
	"game_over":  true,
}

// FilterViable returns the subset of events that may be offered this
// turn. It never invents order; output preserves input order.
func FilterViable(events []catalogs.EventDef, snap snapshot.State) []catalogs.EventDef {
	out := make([]catalogs.EventDef, 0, len(events))
	recent := snap.RecentThemes(repetitionWindow)
	crisis := snap.Stats["treasury"] < crisisFloor || snap.Stats["stability"] < crisisFloor

	for _, ev := range events {
		if !themeViable(ev.Theme, snap, crisis) {
			continue
		}
		if !repetitionExempt[ev.Theme] && containsTheme(recent, ev.Theme) {
			continue
		}
		if ev.DramaWeight >= triggerHardBlockDrama && len(ev.SemanticTrigger) > 0 && !anyTag(snap, ev.SemanticTrigger) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func themeViable(theme string, snap snapshot.State, crisis bool) bool {
	switch theme {
	case "hubris":
		if crisis {
			return false
		}
		return snap.Stats["treasury"] >= hubrisMinTreasury
	case "despair":
		return snap.Stats["treasury"] <= despairMaxTreasury
	}
	return true
}

func containsTheme(themes []string, theme string) bool {
	for _, t := range themes {
		if t == theme {
			return true
		}
	}
	return false
}

func anyTag(snap snapshot.State, tags []string) bool {
	for _, t := range tags {
		if snap.HasTag(t) {
			return true
		}
	}
	return false
}
