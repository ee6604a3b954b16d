// Package tags derives the two tag families: state tags recomputed
// from stat thresholds every turn, and reputation tags derived live
// from active policies plus permanent decision tags.
package tags

import (
	"sort"

	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/stats"
)

// StateTags maps the current stat vector to descriptive tags. Tags
// are recomputed from scratch; a tag whose threshold no longer holds
// disappears.
func StateTags(v stats.Vector) []string {
	var out []string

	if t := v["treasury"]; t > 75 {
		out = append(out, "midas", "rich")
	} else if t < 10 {
		out = append(out, "bankrupt", "poor")
	} else if t < 25 {
		out = append(out, "poor")
	}

	if m := v["military"]; m > 75 {
		out = append(out, "spartan")
	} else if m < 25 {
		out = append(out, "vulnerable")
	}

	if p := v["popularity"]; p < 25 {
		out = append(out, "unpopular", "hated", "oppressor")
	} else if p > 75 {
		out = append(out, "beloved")
	}

	if v["stability"] < 25 {
		out = append(out, "chaos")
	}

	sort.Strings(out)
	return out
}

// PolicyTags collects the permanent tags of every active policy.
// Revoking a policy drops its tags on the next derivation; no ghost
// tags survive.
func PolicyTags(active []string, book map[string]catalogs.PolicyDef) []string {
	var out []string
	for _, id := range active {
		p, ok := book[id]
		if !ok {
			continue
		}
		out = append(out, p.PermanentTags...)
	}
	return Dedup(out)
}

// Dedup returns a sorted copy of in with duplicates removed.
func Dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Union merges tag sets into a sorted deduplicated slice.
func Union(sets ...[]string) []string {
	var all []string
	for _, s := range sets {
		all = append(all, s...)
	}
	return Dedup(all)
}

// Intersects reports whether a and b share any tag.
func Intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	for _, t := range b {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
