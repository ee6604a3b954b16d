package game

import (
	"sovereign.ai/internal/protocol"
	"sovereign.ai/internal/sim/game/feature/events"
	"sovereign.ai/internal/sim/game/feature/policies"
)

// chronicleTail bounds the log slice in the view payload.
const chronicleTail = 60

// View renders the full session state for the presentation layer.
// Option blocking and policy clickability are computed fresh against
// current stats on every call.
func (g *Game) View() protocol.StateView {
	g.mu.Lock()
	defer g.mu.Unlock()

	view := protocol.StateView{
		Version:        protocol.Version,
		SessionID:      g.cfg.SessionID,
		Turn:           g.turn,
		Stats:          g.stats.Clone(),
		StateTags:      append([]string(nil), g.stateTags...),
		ReputationTags: g.reputationTags(),
		GameOver:       g.gameOver,
		GameOverCause:  g.cause,
	}

	log := g.chronicle
	if len(log) > chronicleTail {
		log = log[len(log)-chronicleTail:]
	}
	view.Log = append([]string(nil), log...)

	view.Policies = policies.View(policies.ViewInput{
		Book:           g.cfg.Catalogs.Policies,
		Active:         g.active,
		Locked:         g.locked,
		ReputationTags: view.ReputationTags,
		Stats:          g.stats,
		BaseCost:       g.cfg.Catalogs.Rules.PolicyBaseCost,
		GameOver:       g.gameOver,
	})

	if g.pending != nil {
		ev := protocol.EventView{
			ID:          g.pending.ID,
			Title:       g.pending.Title,
			Text:        g.pending.Text,
			Theme:       g.pending.Theme,
			DramaWeight: g.pending.DramaWeight,
		}
		for _, st := range events.Annotate(*g.pending, g.stats) {
			ev.Options = append(ev.Options, protocol.OptionView{
				ID:          st.Option.ID,
				Text:        st.Option.Text,
				Effect:      st.Option.Effect,
				Blocked:     st.Blocked,
				BlockReason: st.BlockReason,
			})
		}
		view.PendingEvent = &ev
	}
	return view
}
