// Package catalogs loads the authored game content: the event deck,
// the policy book and the rules file. Each catalog carries a sha256
// digest of its raw bytes so clients and the index db can detect
// content drift.
package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type Catalogs struct {
	Events   EventCatalog
	Policies PolicyCatalog
	Rules    Rules
}

type EventCatalog struct {
	List   []EventDef
	ByID   map[string]EventDef
	Digest string
}

// EventDef is an authored event template. Definitions are immutable
// after load; per-view annotations (option blocking, the collapse
// escape) are computed elsewhere.
type EventDef struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Text            string      `json:"text"`
	Theme           string      `json:"theme"`
	DramaWeight     int         `json:"drama_weight"`
	SemanticTrigger []string    `json:"semantic_trigger,omitempty"`
	Options         []OptionDef `json:"options"`
}

type OptionDef struct {
	ID         string         `json:"id"`
	Text       string         `json:"text"`
	Effect     map[string]int `json:"effect,omitempty"`
	EffectTags []string       `json:"effect_tags,omitempty"`
	Response   string         `json:"response,omitempty"`
}

type PolicyCatalog struct {
	List   []PolicyDef
	ByID   map[string]PolicyDef
	Digest string
}

type PolicyDef struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Category         string         `json:"category"`
	Description      string         `json:"description,omitempty"`
	PassiveEffect    map[string]int `json:"passive_effect,omitempty"`
	ActivationCost   map[string]int `json:"activation_cost,omitempty"`
	IncompatibleWith []string       `json:"incompatible_with,omitempty"`
	PermanentTags    []string       `json:"permanent_tags,omitempty"`
	Aversion         []string       `json:"aversion,omitempty"`
	LockTurns        int            `json:"lock_turns,omitempty"` // 0 uses rules default
}

// Rules holds session bootstrap values and ledger constants.
type Rules struct {
	StartStats        map[string]int `json:"start_stats"`
	StartPolicies     []string       `json:"start_policies"`
	DefaultLockTurns  int            `json:"default_lock_turns"`
	PolicyBaseCost    int            `json:"policy_base_cost"`
	ThemeHistoryCap   int            `json:"theme_history_cap"`
	DecisionMemoryCap int            `json:"decision_memory_cap"`
	StatsHistoryCap   int            `json:"stats_history_cap"`

	Digest string `json:"-"`
}

// DefaultRules mirrors rules.json when the file is absent.
func DefaultRules() Rules {
	return Rules{
		StartStats: map[string]int{
			"treasury": 50, "military": 50, "popularity": 50, "stability": 50,
		},
		StartPolicies:     []string{"serfdom", "absolutism"},
		DefaultLockTurns:  8,
		PolicyBaseCost:    10,
		ThemeHistoryCap:   8,
		DecisionMemoryCap: 12,
		StatsHistoryCap:   5,
	}
}

// Load reads the catalogs from configDir. Missing files degrade to
// empty catalogs (or defaults for rules) with a warning via warnf;
// malformed files are hard errors. When schemaDir is non-empty the
// event and policy files are validated against their JSON Schemas.
func Load(configDir, schemaDir string, warnf func(format string, args ...any)) (*Catalogs, error) {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	var c Catalogs

	if err := loadEvents(filepath.Join(configDir, "events.json"), schemaDir, warnf, &c.Events); err != nil {
		return nil, err
	}
	if err := loadPolicies(filepath.Join(configDir, "policies.json"), schemaDir, warnf, &c.Policies); err != nil {
		return nil, err
	}
	if err := loadRules(filepath.Join(configDir, "rules.json"), warnf, &c.Rules); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadEvents(path, schemaDir string, warnf func(string, ...any), out *EventCatalog) error {
	out.ByID = map[string]EventDef{}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			warnf("catalogs: %s missing, event deck is empty", path)
			out.Digest = sha256Hex(nil)
			return nil
		}
		return err
	}
	out.Digest = sha256Hex(raw)

	if err := validateAgainst(schemaDir, "event.schema.json", raw); err != nil {
		return fmt.Errorf("events.json: %w", err)
	}

	var defs []EventDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("events.json: %w", err)
	}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("events.json: empty id")
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("events.json: duplicate id %q", d.ID)
		}
		if len(d.Options) == 0 {
			return fmt.Errorf("events.json: event %q has no options", d.ID)
		}
		out.ByID[d.ID] = d
	}
	out.List = defs
	return nil
}

func loadPolicies(path, schemaDir string, warnf func(string, ...any), out *PolicyCatalog) error {
	out.ByID = map[string]PolicyDef{}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			warnf("catalogs: %s missing, policy book is empty", path)
			out.Digest = sha256Hex(nil)
			return nil
		}
		return err
	}
	out.Digest = sha256Hex(raw)

	if err := validateAgainst(schemaDir, "policy.schema.json", raw); err != nil {
		return fmt.Errorf("policies.json: %w", err)
	}

	var defs []PolicyDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("policies.json: %w", err)
	}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("policies.json: empty id")
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("policies.json: duplicate id %q", d.ID)
		}
		out.ByID[d.ID] = d
	}
	out.List = defs
	return nil
}

func loadRules(path string, warnf func(string, ...any), out *Rules) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			warnf("catalogs: %s missing, using default rules", path)
			*out = DefaultRules()
			out.Digest = sha256Hex(nil)
			return nil
		}
		return err
	}

	r := DefaultRules()
	if err := json.Unmarshal(raw, &r); err != nil {
		return fmt.Errorf("rules.json: %w", err)
	}
	r.Digest = sha256Hex(raw)
	*out = r
	return nil
}

// validateAgainst compiles schemaDir/name and validates raw against
// it. A missing schema file is tolerated; validation failures are not.
func validateAgainst(schemaDir, name string, raw []byte) error {
	if schemaDir == "" {
		return nil
	}
	path := filepath.Join(schemaDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	schema, err := jsonschema.Compile(path)
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	return nil
}
