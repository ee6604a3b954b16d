package director

import (
	"context"
	"errors"
	"testing"

	"sovereign.ai/internal/model"
	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/snapshot"
	"sovereign.ai/internal/sim/stats"
	"sovereign.ai/internal/sim/tuning"
)

type fakeModel struct {
	text string
	err  error
	hits int
}

func (f *fakeModel) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	f.hits++
	if f.err != nil {
		return model.Response{}, f.err
	}
	return model.Response{Text: f.text}, nil
}

func deck() *catalogs.Catalogs {
	mk := func(id, theme string, drama int) catalogs.EventDef {
		return catalogs.EventDef{
			ID: id, Title: id, Theme: theme, DramaWeight: drama,
			Options: []catalogs.OptionDef{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}},
		}
	}
	return &catalogs.Catalogs{Events: catalogs.EventCatalog{List: []catalogs.EventDef{
		mk("war_1", "war", 80),
		mk("war_2", "war", 40),
		mk("intrigue_1", "intrigue", 60),
		mk("despair_1", "despair", 70),
		mk("mgmt_1", "management", 15),
		mk("mgmt_2", "management", 10),
	}}}
}

func neutralSnap(turn int) snapshot.State {
	return snapshot.State{
		Turn:  turn,
		Stats: stats.Vector{"treasury": 50, "military": 50, "popularity": 50, "stability": 50},
	}
}

func TestChooseEventNeverEmpty(t *testing.T) {
	d := New(deck(), tuning.Defaults(), nil, nil)
	for turn := 1; turn <= 50; turn++ {
		ev := d.ChooseEvent(context.Background(), 42, neutralSnap(turn))
		if ev.ID == "" {
			t.Fatalf("turn %d: empty event", turn)
		}
	}
}

// With every theme vetoed by history except the exempt ones, the
// emergency path must still produce management filler.
func TestEmergencyPathPrefersManagement(t *testing.T) {
	cats := &catalogs.Catalogs{Events: catalogs.EventCatalog{List: []catalogs.EventDef{
		{ID: "w", Theme: "war", DramaWeight: 50,
			Options: []catalogs.OptionDef{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}}},
		{ID: "m", Theme: "management", DramaWeight: 10,
			Options: []catalogs.OptionDef{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}}},
	}}}
	d := New(cats, tuning.Defaults(), nil, nil)

	snap := neutralSnap(3)
	snap.ThemeHistory = []string{"war", "war"}
	// war is vetoed by repetition; management survives the filter, so
	// this is not even the emergency path. Force it: a deck of only
	// war events plus history.
	ev := d.ChooseEvent(context.Background(), 1, snap)
	if ev.Theme == "war" {
		t.Fatalf("war chosen against anti-repetition")
	}

	warOnly := &catalogs.Catalogs{Events: catalogs.EventCatalog{List: []catalogs.EventDef{
		{ID: "w1", Theme: "war", DramaWeight: 50,
			Options: []catalogs.OptionDef{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}}},
		{ID: "w2", Theme: "war", DramaWeight: 60,
			Options: []catalogs.OptionDef{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}}},
	}}}
	d2 := New(warOnly, tuning.Defaults(), nil, nil)
	ev = d2.ChooseEvent(context.Background(), 1, snap)
	if ev.ID == "" {
		t.Fatalf("emergency path returned empty event")
	}
	if m := d2.Snapshot(); m.EmergencyOut != 1 {
		t.Fatalf("emergency counter=%d want 1", m.EmergencyOut)
	}
}

func TestEmptyDeckSynthesizesFiller(t *testing.T) {
	d := New(&catalogs.Catalogs{}, tuning.Defaults(), nil, nil)
	ev := d.ChooseEvent(context.Background(), 9, neutralSnap(1))
	if ev.ID == "" || len(ev.Options) == 0 {
		t.Fatalf("empty deck produced unusable event: %+v", ev)
	}
}

func TestAntiRepetitionOverManyTurns(t *testing.T) {
	d := New(deck(), tuning.Defaults(), nil, nil)
	for seed := int64(0); seed < 30; seed++ {
		snap := neutralSnap(int(seed) + 1)
		snap.ThemeHistory = []string{"intrigue", "war"}
		ev := d.ChooseEvent(context.Background(), seed, snap)
		if ev.Theme == "war" || ev.Theme == "intrigue" {
			t.Fatalf("seed %d: repeated recent theme %q", seed, ev.Theme)
		}
	}
}

func TestNeuralPickUsed(t *testing.T) {
	fm := &fakeModel{text: "Reasoning: quiet year needed.\nChoice: #1"}
	d := New(deck(), tuning.Defaults(), fm, nil)

	ev := d.ChooseEvent(context.Background(), 7, neutralSnap(4))
	if fm.hits != 1 {
		t.Fatalf("model hits=%d want 1", fm.hits)
	}
	if ev.ID == "" {
		t.Fatalf("empty event from neural path")
	}
	if m := d.Snapshot(); m.NeuralPicks != 1 || m.FallbackPicks != 0 {
		t.Fatalf("metrics=%+v want one neural pick", m)
	}
}

func TestArbiterFailureFallsBack(t *testing.T) {
	fm := &fakeModel{err: errors.New("model offline")}
	d := New(deck(), tuning.Defaults(), fm, nil)

	ev := d.ChooseEvent(context.Background(), 7, neutralSnap(4))
	if ev.ID == "" {
		t.Fatalf("empty event after arbiter failure")
	}
	if m := d.Snapshot(); m.FallbackPicks != 1 || m.NeuralPicks != 0 {
		t.Fatalf("metrics=%+v want one fallback pick", m)
	}
}

// The fallback must favor drama: the chosen event always comes from
// the top 3 of the shortlist by drama weight.
func TestFallbackBoundedToTop3Drama(t *testing.T) {
	d := New(deck(), tuning.Defaults(), nil, nil)
	for seed := int64(0); seed < 40; seed++ {
		ev := d.ChooseEvent(context.Background(), seed, neutralSnap(2))
		// In the neutral state the viable set is war_1(80), war_2(40),
		// intrigue_1(60), mgmt_1(15), mgmt_2(10) (despair needs
		// treasury<=50, which holds at exactly 50, so despair_1(70)
		// too). Top 3 by drama: war_1, despair_1, intrigue_1.
		switch ev.ID {
		case "war_1", "despair_1", "intrigue_1":
		default:
			t.Fatalf("seed %d: fallback picked %s outside top-3 drama", seed, ev.ID)
		}
	}
}

func TestChooseEventDeterministicPerSeed(t *testing.T) {
	d := New(deck(), tuning.Defaults(), nil, nil)
	a := d.ChooseEvent(context.Background(), 1234, neutralSnap(6))
	b := d.ChooseEvent(context.Background(), 1234, neutralSnap(6))
	if a.ID != b.ID {
		t.Fatalf("same seed and turn picked %s then %s", a.ID, b.ID)
	}
}
