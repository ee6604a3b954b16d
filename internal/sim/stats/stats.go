// Package stats holds the bounded kingdom stat vector and the rolling
// momentum derivation used by the director pipeline.
package stats

import "sort"

const (
	Min = 0
	Max = 100
)

// Vector maps stat names (treasury, military, popularity, stability,
// plus any optional stats from rules.json) to clamped values.
type Vector map[string]int

func Clamp(v int) int {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}

func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Apply adds deltas to the vector, clamping each result to [Min,Max].
// Deltas naming stats the vector does not track are ignored.
func (v Vector) Apply(deltas map[string]int) {
	for name, d := range deltas {
		cur, ok := v[name]
		if !ok {
			continue
		}
		v[name] = Clamp(cur + d)
	}
}

// Names returns the stat names in sorted order.
func (v Vector) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Trend string

const (
	Rising  Trend = "rising"
	Falling Trend = "falling"
	Stable  Trend = "stable"
)

// trendEpsilon is the minimum move over the momentum span that counts
// as a trend rather than noise.
const trendEpsilon = 3

// Momentum compares current values against the vector recorded span
// turns ago. history is ordered oldest first; stats with insufficient
// history read as Stable.
func Momentum(history []Vector, current Vector, span int) map[string]Trend {
	out := make(map[string]Trend, len(current))
	for name := range current {
		out[name] = Stable
	}
	if span <= 0 || len(history) < span {
		return out
	}
	ref := history[len(history)-span]
	for name, cur := range current {
		old, ok := ref[name]
		if !ok {
			continue
		}
		switch d := cur - old; {
		case d >= trendEpsilon:
			out[name] = Rising
		case d <= -trendEpsilon:
			out[name] = Falling
		}
	}
	return out
}

// AppendHistory appends a clone of v and drops the oldest entries past
// cap. The returned slice is ordered oldest first.
func AppendHistory(history []Vector, v Vector, cap int) []Vector {
	history = append(history, v.Clone())
	if cap > 0 && len(history) > cap {
		history = history[len(history)-cap:]
	}
	return history
}
