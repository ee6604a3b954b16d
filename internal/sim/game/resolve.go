package game

import (
	"fmt"

	"sovereign.ai/internal/protocol"
	"sovereign.ai/internal/sim/game/feature/events"
	"sovereign.ai/internal/sim/game/feature/tags"
)

// ResolveEvent applies the chosen option of the pending event.
// Affordability is re-validated here against current stats; a stale
// client view never buys anything the realm cannot pay for. Rejected
// resolutions have zero side effects.
func (g *Game) ResolveEvent(eventID, optionID string) protocol.ActionResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return protocol.Fail(protocol.ErrInvalidTarget, "no pending event")
	}
	if g.pending.ID != eventID {
		return protocol.Fail(protocol.ErrInvalidTarget, fmt.Sprintf("event %q is not pending", eventID))
	}

	// The final event's single option starts a new reign.
	if g.pending.ID == events.FinalEventID {
		if optionID != events.ResetOptionID {
			return protocol.Fail(protocol.ErrInvalidTarget, fmt.Sprintf("unknown option %q", optionID))
		}
		g.resetLocked()
		return protocol.OK()
	}
	if g.gameOver {
		return protocol.Fail(protocol.ErrGameOver, "the reign is over")
	}

	annotated := events.Annotate(*g.pending, g.stats)
	var chosen *events.OptionState
	for i := range annotated {
		if annotated[i].Option.ID == optionID {
			chosen = &annotated[i]
			break
		}
	}
	if chosen == nil {
		return protocol.Fail(protocol.ErrInvalidTarget, fmt.Sprintf("unknown option %q", optionID))
	}
	if chosen.Blocked {
		return protocol.Fail(protocol.ErrNoResource, chosen.BlockReason)
	}

	ev := *g.pending
	opt := chosen.Option

	g.stats.Apply(opt.Effect)
	if len(opt.EffectTags) > 0 {
		g.decisionTags = tags.Union(g.decisionTags, opt.EffectTags)
	}
	g.decisionMemory = appendBounded(g.decisionMemory,
		events.DecisionSummary(g.turn, ev, opt), g.cfg.Catalogs.Rules.DecisionMemoryCap)
	g.stateTags = tags.StateTags(g.stats)

	g.chronicle = append(g.chronicle, fmt.Sprintf("Decision: %s", opt.Text))
	if opt.Response != "" {
		g.chronicle = append(g.chronicle, opt.Response)
	}
	g.pending = nil

	g.recordDecision(ev.ID, opt.ID, opt.EffectTags)
	g.emit(protocol.FeedDecision, map[string]any{
		"event_id":  ev.ID,
		"option_id": opt.ID,
	})

	g.checkTerminalLocked()
	return protocol.OK()
}
