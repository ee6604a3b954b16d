package tags

import (
	"reflect"
	"testing"

	"sovereign.ai/internal/sim/catalogs"
	"sovereign.ai/internal/sim/stats"
)

func TestStateTagsThresholds(t *testing.T) {
	cases := []struct {
		name string
		v    stats.Vector
		want []string
	}{
		{
			name: "neutral",
			v:    stats.Vector{"treasury": 50, "military": 50, "popularity": 50, "stability": 50},
			want: []string{},
		},
		{
			name: "wealthy and beloved",
			v:    stats.Vector{"treasury": 80, "military": 50, "popularity": 80, "stability": 50},
			want: []string{"beloved", "midas", "rich"},
		},
		{
			name: "broke",
			v:    stats.Vector{"treasury": 5, "military": 50, "popularity": 50, "stability": 50},
			want: []string{"bankrupt", "poor"},
		},
		{
			name: "merely poor",
			v:    stats.Vector{"treasury": 20, "military": 50, "popularity": 50, "stability": 50},
			want: []string{"poor"},
		},
		{
			name: "collapsing",
			v:    stats.Vector{"treasury": 50, "military": 20, "popularity": 20, "stability": 20},
			want: []string{"chaos", "hated", "oppressor", "unpopular", "vulnerable"},
		},
		{
			name: "militarist",
			v:    stats.Vector{"treasury": 50, "military": 80, "popularity": 50, "stability": 50},
			want: []string{"spartan"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StateTags(tc.v)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("tags=%v want %v", got, tc.want)
			}
		})
	}
}

// A state tag must disappear as soon as its threshold no longer holds.
func TestStateTagsAreVolatile(t *testing.T) {
	v := stats.Vector{"treasury": 80, "military": 50, "popularity": 50, "stability": 50}
	before := StateTags(v)
	if !contains(before, "midas") {
		t.Fatalf("expected midas at treasury 80, got %v", before)
	}
	v["treasury"] = 50
	after := StateTags(v)
	if contains(after, "midas") || contains(after, "rich") {
		t.Fatalf("ghost tags after threshold cleared: %v", after)
	}
}

func TestPolicyTagsFollowActiveSet(t *testing.T) {
	book := map[string]catalogs.PolicyDef{
		"serfdom":    {ID: "serfdom", PermanentTags: []string{"oppressor"}},
		"absolutism": {ID: "absolutism", PermanentTags: []string{"tyrant"}},
	}
	got := PolicyTags([]string{"serfdom", "absolutism"}, book)
	if !reflect.DeepEqual(got, []string{"oppressor", "tyrant"}) {
		t.Fatalf("tags=%v", got)
	}

	// Revocation drops the tag on the next derivation.
	got = PolicyTags([]string{"absolutism"}, book)
	if contains(got, "oppressor") {
		t.Fatalf("oppressor survived revocation: %v", got)
	}
}

func TestUnionAndIntersects(t *testing.T) {
	u := Union([]string{"b", "a"}, []string{"a", "c"})
	if !reflect.DeepEqual(u, []string{"a", "b", "c"}) {
		t.Fatalf("union=%v", u)
	}
	if !Intersects([]string{"x", "y"}, []string{"y"}) {
		t.Fatalf("expected intersection")
	}
	if Intersects([]string{"x"}, []string{"y"}) {
		t.Fatalf("unexpected intersection")
	}
	if Intersects(nil, []string{"y"}) {
		t.Fatalf("nil set intersected")
	}
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
