package game

import (
	"fmt"

	"sovereign.ai/internal/protocol"
	"sovereign.ai/internal/sim/game/feature/policies"
	"sovereign.ai/internal/sim/game/feature/tags"
)

// TogglePolicy enacts or revokes a policy by id. Every toggle costs
// stability (doubled against the realm's nature); enacting also pays
// the activation cost and starts the lock.
func (g *Game) TogglePolicy(policyID string) protocol.ActionResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.gameOver {
		return protocol.Fail(protocol.ErrGameOver, "the reign is over")
	}
	p, ok := g.cfg.Catalogs.Policies.ByID[policyID]
	if !ok {
		return protocol.Fail(protocol.ErrBadRequest, fmt.Sprintf("invalid policy %q", policyID))
	}

	enacting := !g.isActive(policyID)
	rules := g.cfg.Catalogs.Rules

	verdict := policies.Validate(policies.ToggleInput{
		Policy:         p,
		Enacting:       enacting,
		Active:         g.active,
		Locked:         g.locked,
		ReputationTags: g.reputationTags(),
		Stats:          g.stats,
		BaseCost:       rules.PolicyBaseCost,
		DefaultLock:    rules.DefaultLockTurns,
	})
	if !verdict.OK() {
		return protocol.Fail(verdict.Code, verdict.Message)
	}

	g.stats.Apply(map[string]int{"stability": -verdict.StabilityCost})

	if enacting {
		for stat, amount := range p.ActivationCost {
			g.stats.Apply(map[string]int{stat: -amount})
		}
		g.active = append(g.active, policyID)
		g.locked[policyID] = policies.LockTurns(p, rules.DefaultLockTurns)
		g.chronicle = append(g.chronicle, fmt.Sprintf("Policy enacted: %s.", p.Name))
	} else {
		g.active = removeString(g.active, policyID)
		g.chronicle = append(g.chronicle, fmt.Sprintf("Policy revoked: %s.", p.Name))
	}
	g.stateTags = tags.StateTags(g.stats)

	g.emit(protocol.FeedPolicy, map[string]any{
		"policy_id": policyID,
		"active":    enacting,
	})

	g.checkTerminalLocked()
	return protocol.OK()
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
