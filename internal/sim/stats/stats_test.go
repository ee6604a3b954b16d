package stats

import (
	"math/rand"
	"testing"
)

func TestApplyClamps(t *testing.T) {
	v := Vector{"treasury": 50, "military": 50}
	v.Apply(map[string]int{"treasury": 200, "military": -200})
	if v["treasury"] != Max {
		t.Fatalf("treasury=%d want %d", v["treasury"], Max)
	}
	if v["military"] != Min {
		t.Fatalf("military=%d want %d", v["military"], Min)
	}
}

func TestApplyIgnoresUnknownStats(t *testing.T) {
	v := Vector{"treasury": 50}
	v.Apply(map[string]int{"mana": 30})
	if _, ok := v["mana"]; ok {
		t.Fatalf("unknown stat was added: %v", v)
	}
}

// Any sequence of deltas must keep every stat inside [Min,Max].
func TestApplyBoundsUnderRandomDeltas(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := Vector{"treasury": 50, "military": 50, "popularity": 50, "stability": 50}
	for i := 0; i < 2000; i++ {
		d := map[string]int{}
		for name := range v {
			d[name] = rng.Intn(61) - 30
		}
		v.Apply(d)
		for name, val := range v {
			if val < Min || val > Max {
				t.Fatalf("step %d: %s=%d out of bounds", i, name, val)
			}
		}
	}
}

func TestMomentum(t *testing.T) {
	hist := []Vector{
		{"treasury": 40, "popularity": 60, "military": 50},
		{"treasury": 44, "popularity": 55, "military": 50},
		{"treasury": 48, "popularity": 52, "military": 51},
	}
	cur := Vector{"treasury": 52, "popularity": 48, "military": 50}

	m := Momentum(hist, cur, 3)
	if m["treasury"] != Rising {
		t.Fatalf("treasury trend=%s want %s", m["treasury"], Rising)
	}
	if m["popularity"] != Falling {
		t.Fatalf("popularity trend=%s want %s", m["popularity"], Falling)
	}
	if m["military"] != Stable {
		t.Fatalf("military trend=%s want %s", m["military"], Stable)
	}
}

func TestMomentumInsufficientHistory(t *testing.T) {
	cur := Vector{"treasury": 90}
	m := Momentum(nil, cur, 3)
	if m["treasury"] != Stable {
		t.Fatalf("trend=%s want %s with no history", m["treasury"], Stable)
	}
}

func TestAppendHistoryCap(t *testing.T) {
	var hist []Vector
	for i := 0; i < 10; i++ {
		hist = AppendHistory(hist, Vector{"treasury": i}, 5)
	}
	if len(hist) != 5 {
		t.Fatalf("len=%d want 5", len(hist))
	}
	if hist[0]["treasury"] != 5 || hist[4]["treasury"] != 9 {
		t.Fatalf("window=%v want oldest 5 newest 9", hist)
	}
}

func TestAppendHistoryClones(t *testing.T) {
	v := Vector{"treasury": 10}
	hist := AppendHistory(nil, v, 5)
	v["treasury"] = 99
	if hist[0]["treasury"] != 10 {
		t.Fatalf("history entry mutated through source vector")
	}
}
