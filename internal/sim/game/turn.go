package game

import (
	"context"
	"fmt"

	"sovereign.ai/internal/protocol"
	"sovereign.ai/internal/sim/game/feature/events"
	"sovereign.ai/internal/sim/game/feature/gameover"
	"sovereign.ai/internal/sim/game/feature/policies"
	"sovereign.ai/internal/sim/game/feature/tags"
	"sovereign.ai/internal/sim/stats"
)

// ProcessTurn advances the reign one year: snapshot stats history,
// apply policy passives, tick locks, recompute state tags, ask the
// director for the year's event, then check terminal conditions.
func (g *Game) ProcessTurn(ctx context.Context) protocol.TurnResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.gameOver {
		return protocol.TurnResult{Status: "game_over", Turn: g.turn}
	}

	g.statsHistory = stats.AppendHistory(g.statsHistory, g.stats, g.cfg.Catalogs.Rules.StatsHistoryCap)
	g.turn++

	for _, id := range g.active {
		if p, ok := g.cfg.Catalogs.Policies.ByID[id]; ok {
			g.stats.Apply(p.PassiveEffect)
		}
	}
	g.locked = policies.TickLocks(g.locked)
	g.stateTags = tags.StateTags(g.stats)

	snap := g.snapshotLocked()
	ev := g.cfg.Director.ChooseEvent(ctx, g.cfg.Seed, snap)
	g.pending = &ev
	g.themeHistory = appendBounded(g.themeHistory, ev.Theme, g.cfg.Catalogs.Rules.ThemeHistoryCap)

	g.chronicle = append(g.chronicle,
		fmt.Sprintf("--- Year %d ---", g.turn),
		fmt.Sprintf("%s.", ev.Title))

	g.checkTerminalLocked()
	g.recordTurn(ev.ID, ev.Theme)
	g.emit(protocol.FeedTurn, map[string]any{
		"event_id": ev.ID,
		"theme":    ev.Theme,
	})

	if g.gameOver {
		return protocol.TurnResult{Status: "game_over", Turn: g.turn}
	}
	return protocol.TurnResult{Status: "ok", Turn: g.turn}
}

// checkTerminalLocked runs the ordered terminal check and, on the
// first failure, pins the synthetic final event. GameOver is sticky
// until an explicit reset.
func (g *Game) checkTerminalLocked() {
	if g.gameOver {
		return
	}
	cause := gameover.Check(g.stats)
	if cause == "" {
		return
	}
	g.gameOver = true
	g.cause = cause
	final := events.FinalEvent(cause)
	g.pending = &final
	g.themeHistory = appendBounded(g.themeHistory, final.Theme, g.cfg.Catalogs.Rules.ThemeHistoryCap)
	g.chronicle = append(g.chronicle, fmt.Sprintf("The reign ends: %s.", cause))
	g.emit(protocol.FeedGameOver, map[string]any{"cause": cause})
}
