// Package director orchestrates event selection: RuleFilter, then the
// relevance shortlist, then one shot at the neural arbiter, then the
// deterministic drama-weighted fallback. ChooseEvent always returns a
// usable event; liveness is this package's contract.
package director

import (
	"context"
	"log"
	"sort"
	"sync/atomic"

	"sovereign.ai/internal/model"
	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/director/arbiter"
	"sovereign.ai/internal/sim/director/rank"
	"sovereign.ai/internal/sim/director/rules"
	"sovereign.ai/internal/sim/game/feature/events"
	"sovereign.ai/internal/sim/snapshot"
	"sovereign.ai/internal/sim/tuning"
)

// Director is shared across sessions and holds no per-session state;
// everything per-session arrives in the snapshot.
type Director struct {
	deck []catalogs.EventDef
	tune tuning.Tuning
	arb  *arbiter.Arbiter
	log  *log.Logger

	turnsTotal    atomic.Uint64
	neuralPicks   atomic.Uint64
	fallbackPicks atomic.Uint64
	emergencyOut  atomic.Uint64
}

// New builds a director over the loaded catalog. client may be nil:
// the neural layer is then permanently absent and every pick takes
// the deterministic path.
func New(cats *catalogs.Catalogs, tune tuning.Tuning, client model.Client, logger *log.Logger) *Director {
	d := &Director{
		deck: cats.Events.List,
		tune: tune,
		log:  logger,
	}
	if client != nil {
		d.arb = arbiter.New(client, tune.Arbiter, logger)
	}
	return d
}

// NeuralEnabled reports whether a model is attached.
func (d *Director) NeuralEnabled() bool { return d.arb != nil }

// ChooseEvent picks the event for this turn. seed is the session's
// fixed seed; together with the turn number it makes the bounded
// randomness in the fallback paths reproducible.
func (d *Director) ChooseEvent(ctx context.Context, seed int64, snap snapshot.State) catalogs.EventDef {
	d.turnsTotal.Add(1)

	viable := rules.FilterViable(d.deck, snap)
	if len(viable) == 0 {
		d.emergencyOut.Add(1)
		return d.emergencyPick(seed, snap)
	}

	shortlist := rank.Shortlist(viable, snap, d.tune.ShortlistN, d.tune.Ranker)

	if d.arb != nil && len(shortlist) > 1 {
		out := d.arb.Select(ctx, shortlist, snap)
		if out.Decided() {
			d.neuralPicks.Add(1)
			return *out.Event
		}
		if d.log != nil {
			d.log.Printf("director: arbiter undecided (%s), using fallback", out.Reason)
		}
	}

	d.fallbackPicks.Add(1)
	return fallbackPick(shortlist, seed, snap.Turn)
}

// fallbackPick sorts by drama descending (stable) and rolls among the
// top 3.
func fallbackPick(shortlist []catalogs.EventDef, seed int64, turn int) catalogs.EventDef {
	sorted := make([]catalogs.EventDef, len(shortlist))
	copy(sorted, shortlist)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DramaWeight > sorted[j].DramaWeight
	})
	top := sorted
	if len(top) > 3 {
		top = top[:3]
	}
	roll := rollHash(seed, turn, 0x5eed)
	return top[roll%uint64(len(top))]
}

// emergencyPick covers the empty-filter case: management filler if
// the deck has any, otherwise anything at all, otherwise a built-in
// quiet year.
func (d *Director) emergencyPick(seed int64, snap snapshot.State) catalogs.EventDef {
	var mgmt []catalogs.EventDef
	for _, ev := range d.deck {
		if ev.Theme == "management" {
			mgmt = append(mgmt, ev)
		}
	}
	pool := mgmt
	if len(pool) == 0 {
		pool = d.deck
	}
	if len(pool) == 0 {
		return events.QuietYearEvent()
	}
	roll := rollHash(seed, snap.Turn, 0xfa11)
	return pool[roll%uint64(len(pool))]
}

// Metrics is a point-in-time counter snapshot for /metrics.
type Metrics struct {
	TurnsTotal    uint64
	NeuralPicks   uint64
	FallbackPicks uint64
	EmergencyOut  uint64
}

func (d *Director) Snapshot() Metrics {
	return Metrics{
		TurnsTotal:    d.turnsTotal.Load(),
		NeuralPicks:   d.neuralPicks.Load(),
		FallbackPicks: d.fallbackPicks.Load(),
		EmergencyOut:  d.emergencyOut.Load(),
	}
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func rollHash(seed int64, turn int, salt uint64) uint64 {
	v := uint64(seed) ^ (uint64(uint32(int32(turn))) * 0x9e3779b97f4a7c15) ^ (salt * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
