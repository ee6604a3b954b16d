package rules

import (
	"testing"

	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/snapshot"
	"sovereign.ai/internal/sim/stats"
)

func ev(id, theme string, drama int, trigger ...string) catalogs.EventDef {
	return catalogs.EventDef{
		ID: id, Theme: theme, DramaWeight: drama, SemanticTrigger: trigger,
		Options: []catalogs.OptionDef{{ID: "o", Text: "t"}},
	}
}

func snap(v stats.Vector) snapshot.State {
	return snapshot.State{Turn: 5, Stats: v}
}

func ids(events []catalogs.EventDef) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func has(events []catalogs.EventDef, id string) bool {
	for _, e := range events {
		if e.ID == id {
			return true
		}
	}
	return false
}

func TestHubrisNeedsTreasury(t *testing.T) {
	deck := []catalogs.EventDef{ev("h", "hubris", 50), ev("m", "management", 10)}

	got := FilterViable(deck, snap(stats.Vector{"treasury": 70, "stability": 50}))
	if !has(got, "h") {
		t.Fatalf("hubris filtered at treasury 70: %v", ids(got))
	}

	got = FilterViable(deck, snap(stats.Vector{"treasury": 50, "stability": 50}))
	if has(got, "h") {
		t.Fatalf("hubris passed at treasury 50: %v", ids(got))
	}
}

func TestDespairNeedsHardship(t *testing.T) {
	deck := []catalogs.EventDef{ev("d", "despair", 50)}

	got := FilterViable(deck, snap(stats.Vector{"treasury": 40, "stability": 50}))
	if !has(got, "d") {
		t.Fatalf("despair filtered at treasury 40")
	}

	got = FilterViable(deck, snap(stats.Vector{"treasury": 60, "stability": 50}))
	if has(got, "d") {
		t.Fatalf("despair passed at treasury 60")
	}
}

// A crisis (treasury or stability under 15) vetoes hubris regardless
// of everything else.
func TestCrisisOverride(t *testing.T) {
	deck := []catalogs.EventDef{ev("h", "hubris", 50)}

	// Treasury high, stability in crisis.
	got := FilterViable(deck, snap(stats.Vector{"treasury": 90, "stability": 10}))
	if has(got, "h") {
		t.Fatalf("hubris passed during stability crisis")
	}
}

func TestAntiRepetition(t *testing.T) {
	deck := []catalogs.EventDef{
		ev("w", "war", 50),
		ev("m", "management", 10),
	}
	s := snap(stats.Vector{"treasury": 50, "stability": 50})
	s.ThemeHistory = []string{"intrigue", "war", "war"}

	got := FilterViable(deck, s)
	if has(got, "w") {
		t.Fatalf("war passed with war in last-2 history")
	}
	if !has(got, "m") {
		t.Fatalf("management must be exempt from anti-repetition")
	}

	// Theme older than the window is fine again.
	s.ThemeHistory = []string{"war", "intrigue", "management"}
	got = FilterViable(deck, s)
	if !has(got, "w") {
		t.Fatalf("war blocked by history outside the window")
	}
}

func TestSemanticTriggerGate(t *testing.T) {
	deck := []catalogs.EventDef{
		ev("soft", "war", 60, "spartan"),
		ev("hard", "war", 85, "spartan"),
	}
	s := snap(stats.Vector{"treasury": 50, "stability": 50})

	// No matching tag: the soft trigger passes, the hard one does not.
	got := FilterViable(deck, s)
	if !has(got, "soft") {
		t.Fatalf("low-drama trigger event vetoed without tag")
	}
	if has(got, "hard") {
		t.Fatalf("high-drama trigger event passed without tag")
	}

	// With the tag present the hard gate opens.
	s.StateTags = []string{"spartan"}
	got = FilterViable(deck, s)
	if !has(got, "hard") {
		t.Fatalf("high-drama trigger event vetoed despite matching tag")
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	deck := []catalogs.EventDef{
		ev("a", "war", 50), ev("b", "intrigue", 50), ev("c", "management", 10),
	}
	got := FilterViable(deck, snap(stats.Vector{"treasury": 50, "stability": 50}))
	want := []string{"a", "b", "c"}
	for i, id := range ids(got) {
		if id != want[i] {
			t.Fatalf("order=%v want %v", ids(got), want)
		}
	}
}
