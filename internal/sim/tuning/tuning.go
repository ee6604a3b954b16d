// Package tuning loads tuning.yaml: the ranker weights, arbiter
// sampling parameters and session housekeeping knobs. Values are
// hot-tunable content, not code.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ShortlistN   int `yaml:"shortlist_n"`
	MomentumSpan int `yaml:"momentum_span"`

	SessionTTLMinutes int `yaml:"session_ttl_minutes"`

	Ranker  Ranker  `yaml:"ranker"`
	Arbiter Arbiter `yaml:"arbiter"`
}

// Ranker weights are ordered so that a single reputation-tag match
// outweighs a single state-tag match, which outweighs the full drama
// budget.
type Ranker struct {
	ReputationTagWeight   int `yaml:"reputation_tag_weight"`
	StateTagWeight        int `yaml:"state_tag_weight"`
	DramaBudget           int `yaml:"drama_budget"`
	ExtremityDramaMin     int `yaml:"extremity_drama_min"`
	ExtremityPerStat      int `yaml:"extremity_per_stat"`
	HubrisMomentumBonus   int `yaml:"hubris_momentum_bonus"`
	DespairPerFallingStat int `yaml:"despair_per_falling_stat"`
	WarMomentumBonus      int `yaml:"war_momentum_bonus"`
}

type Arbiter struct {
	MaxTokens      int      `yaml:"max_tokens"`
	Temperature    float64  `yaml:"temperature"`
	Stop           []string `yaml:"stop"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

func Defaults() Tuning {
	return Tuning{
		ShortlistN:        5,
		MomentumSpan:      3,
		SessionTTLMinutes: 60,
		Ranker: Ranker{
			ReputationTagWeight:   15,
			StateTagWeight:        10,
			DramaBudget:           8,
			ExtremityDramaMin:     70,
			ExtremityPerStat:      8,
			HubrisMomentumBonus:   12,
			DespairPerFallingStat: 4,
			WarMomentumBonus:      10,
		},
		Arbiter: Arbiter{
			MaxTokens:      150,
			Temperature:    0.3,
			Stop:           []string{"###", "Human:", "User:"},
			TimeoutSeconds: 20,
		},
	}
}

// Load reads path over Defaults, so absent keys keep their default
// values.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
