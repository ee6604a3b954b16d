// Package game owns one session's reign: the stat vector, the policy
// ledger, tags, histories and the pending event. All exported methods
// take the session mutex, so a view, turn, resolve or toggle runs to
// completion before the next is admitted.
package game

import (
	"sync"

	"sovereign.ai/internal/protocol"
	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/director"
	"sovereign.ai/internal/sim/game/feature/tags"
	"sovereign.ai/internal/sim/snapshot"
	"sovereign.ai/internal/sim/stats"
	"sovereign.ai/internal/sim/tuning"
)

type Config struct {
	SessionID string
	Catalogs  *catalogs.Catalogs
	Tuning    tuning.Tuning
	Director  *director.Director
	Seed      int64

	TurnLog     TurnLogger     // optional
	DecisionLog DecisionLogger // optional
}

type Game struct {
	mu  sync.Mutex
	cfg Config

	turn           int
	stats          stats.Vector
	statsHistory   []stats.Vector
	active         []string
	locked         map[string]int
	decisionTags   []string
	stateTags      []string
	themeHistory   []string
	decisionMemory []string
	chronicle      []string
	pending        *catalogs.EventDef
	gameOver       bool
	cause          string

	subs map[chan protocol.FeedMsg]struct{}
}

func New(cfg Config) *Game {
	g := &Game{
		cfg:  cfg,
		subs: map[chan protocol.FeedMsg]struct{}{},
	}
	g.initLocked()
	return g
}

// initLocked (re)builds the fresh-reign state. Callers hold g.mu or
// own g exclusively.
func (g *Game) initLocked() {
	rules := g.cfg.Catalogs.Rules

	g.turn = 0
	g.stats = stats.Vector{}
	for name, val := range rules.StartStats {
		g.stats[name] = stats.Clamp(val)
	}
	g.statsHistory = nil

	g.active = nil
	for _, id := range rules.StartPolicies {
		if _, ok := g.cfg.Catalogs.Policies.ByID[id]; ok {
			g.active = append(g.active, id)
		}
	}
	g.locked = map[string]int{}

	g.decisionTags = nil
	g.stateTags = tags.StateTags(g.stats)
	g.themeHistory = nil
	g.decisionMemory = nil
	g.chronicle = []string{"A new reign begins. The realm holds its breath."}
	g.pending = nil
	g.gameOver = false
	g.cause = ""
}

// Reset starts a new reign in place, keeping subscribers.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
}

func (g *Game) resetLocked() {
	g.initLocked()
	g.emit(protocol.FeedReset, nil)
}

// reputationTags derives the live reputation set: permanent decision
// tags plus tags from currently active policies. Policy tags vanish
// the moment the policy is revoked.
func (g *Game) reputationTags() []string {
	return tags.Union(g.decisionTags, tags.PolicyTags(g.active, g.cfg.Catalogs.Policies.ByID))
}

func (g *Game) snapshotLocked() snapshot.State {
	return snapshot.State{
		Turn:           g.turn,
		Stats:          g.stats.Clone(),
		StateTags:      append([]string(nil), g.stateTags...),
		ReputationTags: g.reputationTags(),
		ThemeHistory:   append([]string(nil), g.themeHistory...),
		DecisionMemory: append([]string(nil), g.decisionMemory...),
		Momentum:       stats.Momentum(g.statsHistory, g.stats, g.cfg.Tuning.MomentumSpan),
		GameOver:       g.gameOver,
	}
}

func (g *Game) isActive(id string) bool {
	for _, a := range g.active {
		if a == id {
			return true
		}
	}
	return false
}

func appendBounded(list []string, v string, cap int) []string {
	list = append(list, v)
	if cap > 0 && len(list) > cap {
		list = list[len(list)-cap:]
	}
	return list
}

// Subscribe attaches a chronicle feed channel. The returned cancel
// detaches it. Sends never block; a slow consumer just misses
// entries.
func (g *Game) Subscribe(buffer int) (<-chan protocol.FeedMsg, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan protocol.FeedMsg, buffer)
	g.mu.Lock()
	g.subs[ch] = struct{}{}
	g.mu.Unlock()
	return ch, func() {
		g.mu.Lock()
		delete(g.subs, ch)
		g.mu.Unlock()
	}
}

// emit pushes a feed entry to all subscribers, dropping on full
// buffers. Callers hold g.mu.
func (g *Game) emit(kind string, detail map[string]any) {
	msg := protocol.FeedMsg{
		Type:      kind,
		Version:   protocol.Version,
		SessionID: g.cfg.SessionID,
		Turn:      g.turn,
		Detail:    detail,
	}
	for ch := range g.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}
