// Package gameover checks terminal conditions. Order matters: the
// first matching cause is the one the chronicle records.
package gameover

import "sovereign.ai/internal/sim/stats"

const (
	CauseAnarchy    = "total anarchy"
	CauseRevolution = "popular revolution"
	CauseConquest   = "external conquest"
	CauseBankruptcy = "bankrupt and defenseless"
)

// Check returns the terminal cause, or "" while the reign survives.
// Bankruptcy alone is survivable; bankruptcy without an army is not.
func Check(v stats.Vector) string {
	switch {
	case v["stability"] <= 0:
		return CauseAnarchy
	case v["popularity"] <= 0:
		return CauseRevolution
	case v["military"] <= 0:
		return CauseConquest
	case v["treasury"] <= 0 && v["military"] < 20:
		return CauseBankruptcy
	}
	return ""
}
