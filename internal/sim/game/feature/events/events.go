// Package events computes per-view option state for a pending event:
// which options the current stats can afford, and the collapse escape
// injected when none can. Catalog definitions are never mutated.
package events

import (
	"fmt"
	"sort"

	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/stats"
)

// CollapseOptionID is the always-affordable escape injected when every
// authored option is blocked.
const CollapseOptionID = "COLLAPSE"

// FinalEventID is the synthetic game-over event.
const FinalEventID = "FINAL"

// ResetOptionID is the single option on the final event.
const ResetOptionID = "RESET"

// OptionState is an option annotated for one view.
type OptionState struct {
	Option      catalogs.OptionDef
	Blocked     bool
	BlockReason string
}

// BlockReason returns why the option cannot be afforded, or "" when it
// can. An option is blocked when any negative effect would spend more
// of a stat than the realm holds.
func BlockReason(opt catalogs.OptionDef, v stats.Vector) string {
	names := make([]string, 0, len(opt.Effect))
	for stat := range opt.Effect {
		names = append(names, stat)
	}
	sort.Strings(names)
	for _, stat := range names {
		d := opt.Effect[stat]
		if d >= 0 {
			continue
		}
		if cur, ok := v[stat]; ok && cur+d < stats.Min {
			return fmt.Sprintf("Requires %d %s", -d, stat)
		}
	}
	return ""
}

// Annotate returns the event's options with affordability computed
// against v. When every authored option is blocked the collapse
// escape is appended so the session can never soft-lock.
func Annotate(ev catalogs.EventDef, v stats.Vector) []OptionState {
	out := make([]OptionState, 0, len(ev.Options)+1)
	allBlocked := len(ev.Options) > 0
	for _, opt := range ev.Options {
		reason := BlockReason(opt, v)
		out = append(out, OptionState{
			Option:      opt,
			Blocked:     reason != "",
			BlockReason: reason,
		})
		if reason == "" {
			allBlocked = false
		}
	}
	if allBlocked {
		out = append(out, OptionState{Option: CollapseOption()})
	}
	return out
}

// CollapseOption is the unconditional escape: the realm takes the hit
// and moves on.
func CollapseOption() catalogs.OptionDef {
	return catalogs.OptionDef{
		ID:   CollapseOptionID,
		Text: "Let it collapse. Some problems solve themselves, expensively.",
		Effect: map[string]int{
			"stability":  -15,
			"popularity": -10,
		},
		Response: "The matter resolves itself in the worst available way.",
	}
}

// FinalEvent is the synthetic terminal event shown once a reign ends.
func FinalEvent(cause string) catalogs.EventDef {
	return catalogs.EventDef{
		ID:          FinalEventID,
		Title:       "The End of the Reign",
		Text:        fmt.Sprintf("Your reign has ended: %s.", cause),
		Theme:       "game_over",
		DramaWeight: 100,
		Options: []catalogs.OptionDef{
			{
				ID:   ResetOptionID,
				Text: "Begin a new reign.",
			},
		},
	}
}

// QuietYearEvent is the built-in filler used when the event deck is
// empty. The director must always have something to return.
func QuietYearEvent() catalogs.EventDef {
	return catalogs.EventDef{
		ID:          "quiet_year",
		Title:       "A Quiet Year",
		Text:        "No envoys, no omens, no fires. The realm simply carries on.",
		Theme:       "management",
		DramaWeight: 5,
		Options: []catalogs.OptionDef{
			{
				ID:       "carry_on",
				Text:     "Let the quiet year pass.",
				Response: "The chroniclers leave the page half empty.",
			},
		},
	}
}

// DecisionSummary renders one line of decision memory.
func DecisionSummary(turn int, ev catalogs.EventDef, opt catalogs.OptionDef) string {
	return fmt.Sprintf("Year %d, %s: %s", turn, ev.Title, opt.Text)
}
