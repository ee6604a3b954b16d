// Package policies holds the pure rules of the policy ledger: toggle
// validation, the aversion surcharge, lock handling and the per-view
// clickability annotations. State lives in the game engine; this
// package only computes.
package policies

import (
	"fmt"
	"sort"

	"sovereign.ai/internal/protocol"
	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/game/feature/tags"
	"sovereign.ai/internal/sim/stats"
)

// ToggleInput is everything the validator needs to judge a toggle.
type ToggleInput struct {
	Policy         catalogs.PolicyDef
	Enacting       bool // true to enact, false to revoke
	Active         []string
	Locked         map[string]int // policy id -> turns remaining
	ReputationTags []string
	Stats          stats.Vector
	BaseCost       int
	DefaultLock    int
}

// Verdict is the outcome of toggle validation. Code is empty when the
// toggle is allowed.
type Verdict struct {
	Code          string
	Message       string
	StabilityCost int
}

func (v Verdict) OK() bool { return v.Code == "" }

// StabilityCost is the political price of any toggle: the base cost,
// doubled when the realm's reputation intersects the policy's
// aversion list. Going against your nature costs twice as much.
func StabilityCost(p catalogs.PolicyDef, repTags []string, base int) int {
	if tags.Intersects(p.Aversion, repTags) {
		return base * 2
	}
	return base
}

// LockTurns returns the policy's lock duration, falling back to the
// ledger default.
func LockTurns(p catalogs.PolicyDef, def int) int {
	if p.LockTurns > 0 {
		return p.LockTurns
	}
	return def
}

// Validate judges a toggle without applying it.
func Validate(in ToggleInput) Verdict {
	cost := StabilityCost(in.Policy, in.ReputationTags, in.BaseCost)

	if turns := in.Locked[in.Policy.ID]; turns > 0 {
		return Verdict{
			Code:          protocol.ErrBlocked,
			Message:       fmt.Sprintf("%s is locked for %d more turns", in.Policy.Name, turns),
			StabilityCost: cost,
		}
	}
	if in.Stats["stability"] < cost {
		return Verdict{
			Code:          protocol.ErrNoResource,
			Message:       fmt.Sprintf("toggling %s needs %d stability", in.Policy.Name, cost),
			StabilityCost: cost,
		}
	}

	if in.Enacting {
		for _, other := range in.Policy.IncompatibleWith {
			if isActive(in.Active, other) {
				return Verdict{
					Code:          protocol.ErrConflict,
					Message:       fmt.Sprintf("%s is incompatible with active policy %s", in.Policy.Name, other),
					StabilityCost: cost,
				}
			}
		}
		for stat, amount := range in.Policy.ActivationCost {
			if in.Stats[stat]-amount < stats.Min {
				return Verdict{
					Code:          protocol.ErrNoResource,
					Message:       fmt.Sprintf("enacting %s needs %d %s", in.Policy.Name, amount, stat),
					StabilityCost: cost,
				}
			}
		}
	}

	return Verdict{StabilityCost: cost}
}

// ViewInput feeds the per-policy view builder.
type ViewInput struct {
	Book           catalogs.PolicyCatalog
	Active         []string
	Locked         map[string]int
	ReputationTags []string
	Stats          stats.Vector
	BaseCost       int
	GameOver       bool
}

// View builds the grouped policy view with clickability and a human
// block reason for every policy that cannot be toggled right now.
func View(in ViewInput) map[string][]protocol.PolicyView {
	out := map[string][]protocol.PolicyView{}
	for _, p := range in.Book.List {
		active := isActive(in.Active, p.ID)
		cost := StabilityCost(p, in.ReputationTags, in.BaseCost)

		pv := protocol.PolicyView{
			ID:            p.ID,
			Name:          p.Name,
			Category:      p.Category,
			Description:   p.Description,
			Active:        active,
			LockTurns:     in.Locked[p.ID],
			StabilityCost: cost,
			PassiveEffect: p.PassiveEffect,
		}

		switch {
		case in.GameOver:
			pv.BlockReason = "The reign is over"
		case pv.LockTurns > 0:
			pv.BlockReason = fmt.Sprintf("Locked for %d turns", pv.LockTurns)
		case in.Stats["stability"] < cost:
			pv.BlockReason = "Too unstable"
		case !active && incompatibleActive(p, in.Active) != "":
			pv.BlockReason = fmt.Sprintf("Incompatible with %s", incompatibleActive(p, in.Active))
		case !active && lackingStat(p, in.Stats) != "":
			pv.BlockReason = fmt.Sprintf("Lacks %s", lackingStat(p, in.Stats))
		}
		if pv.BlockReason == "" && cost > in.BaseCost {
			// Clickable, but flagged so the UI can warn.
			pv.BlockReason = "Against your nature"
		}
		pv.Clickable = pv.BlockReason == "" || pv.BlockReason == "Against your nature"

		out[p.Category] = append(out[p.Category], pv)
	}
	for cat := range out {
		views := out[cat]
		sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	}
	return out
}

// TickLocks decrements every lock and drops expired ones. The input
// map is not mutated.
func TickLocks(locked map[string]int) map[string]int {
	out := make(map[string]int, len(locked))
	for id, turns := range locked {
		if turns > 1 {
			out[id] = turns - 1
		}
	}
	return out
}

func isActive(active []string, id string) bool {
	for _, a := range active {
		if a == id {
			return true
		}
	}
	return false
}

func incompatibleActive(p catalogs.PolicyDef, active []string) string {
	for _, other := range p.IncompatibleWith {
		if isActive(active, other) {
			return other
		}
	}
	return ""
}

func lackingStat(p catalogs.PolicyDef, v stats.Vector) string {
	names := make([]string, 0, len(p.ActivationCost))
	for stat := range p.ActivationCost {
		names = append(names, stat)
	}
	sort.Strings(names)
	for _, stat := range names {
		if v[stat]-p.ActivationCost[stat] < stats.Min {
			return stat
		}
	}
	return ""
}
