package events

import (
	"testing"

	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/stats"
)

func testEvent() catalogs.EventDef {
	return catalogs.EventDef{
		ID:    "e1",
		Title: "The Test",
		Theme: "war",
		Options: []catalogs.OptionDef{
			{ID: "cheap", Text: "cheap", Effect: map[string]int{"treasury": -5}},
			{ID: "dear", Text: "dear", Effect: map[string]int{"treasury": -40}},
			{ID: "free", Text: "free", Effect: map[string]int{"popularity": 5}},
		},
	}
}

func TestBlockReason(t *testing.T) {
	v := stats.Vector{"treasury": 10, "popularity": 50}
	opt := catalogs.OptionDef{Effect: map[string]int{"treasury": -40}}
	if got := BlockReason(opt, v); got == "" {
		t.Fatalf("expected block at treasury 10 cost 40")
	}
	opt = catalogs.OptionDef{Effect: map[string]int{"treasury": -10}}
	if got := BlockReason(opt, v); got != "" {
		t.Fatalf("exact-cost option blocked: %q", got)
	}
	// Positive effects never block.
	opt = catalogs.OptionDef{Effect: map[string]int{"treasury": 40}}
	if got := BlockReason(opt, v); got != "" {
		t.Fatalf("gain option blocked: %q", got)
	}
}

func TestAnnotateMarksUnaffordable(t *testing.T) {
	v := stats.Vector{"treasury": 10, "popularity": 50}
	opts := Annotate(testEvent(), v)
	if len(opts) != 3 {
		t.Fatalf("options=%d want 3 (no collapse needed)", len(opts))
	}
	if opts[0].Blocked {
		t.Fatalf("cheap option blocked")
	}
	if !opts[1].Blocked {
		t.Fatalf("dear option not blocked")
	}
}

// When everything is blocked the collapse escape appears; the session
// can always move forward.
func TestAnnotateInjectsCollapse(t *testing.T) {
	ev := catalogs.EventDef{
		ID: "e2",
		Options: []catalogs.OptionDef{
			{ID: "a", Effect: map[string]int{"treasury": -90}},
			{ID: "b", Effect: map[string]int{"military": -90}},
		},
	}
	v := stats.Vector{"treasury": 10, "military": 10, "popularity": 50, "stability": 50}
	opts := Annotate(ev, v)
	if len(opts) != 3 {
		t.Fatalf("options=%d want 2 blocked + collapse", len(opts))
	}
	last := opts[len(opts)-1]
	if last.Option.ID != CollapseOptionID || last.Blocked {
		t.Fatalf("collapse=%+v want unblocked %s", last, CollapseOptionID)
	}
	if last.Option.Effect["stability"] != -15 || last.Option.Effect["popularity"] != -10 {
		t.Fatalf("collapse effect=%v", last.Option.Effect)
	}
}

// The collapse option ignores affordability by construction: even a
// destitute realm can watch things fall apart.
func TestCollapseAffordableAtZero(t *testing.T) {
	v := stats.Vector{"treasury": 0, "military": 0, "popularity": 0, "stability": 1}
	ev := catalogs.EventDef{
		ID:      "e3",
		Options: []catalogs.OptionDef{{ID: "a", Effect: map[string]int{"treasury": -1}}},
	}
	opts := Annotate(ev, v)
	found := false
	for _, o := range opts {
		if o.Option.ID == CollapseOptionID && !o.Blocked {
			found = true
		}
	}
	if !found {
		t.Fatalf("no usable collapse option at rock bottom: %+v", opts)
	}
}

func TestFinalEvent(t *testing.T) {
	ev := FinalEvent("total anarchy")
	if ev.ID != FinalEventID || ev.Theme != "game_over" {
		t.Fatalf("final event=%+v", ev)
	}
	if len(ev.Options) != 1 || ev.Options[0].ID != ResetOptionID {
		t.Fatalf("final options=%+v want single %s", ev.Options, ResetOptionID)
	}
}

func TestDecisionSummary(t *testing.T) {
	got := DecisionSummary(4, testEvent(), testEvent().Options[0])
	want := "Year 4, The Test: cheap"
	if got != want {
		t.Fatalf("summary=%q want %q", got, want)
	}
}
