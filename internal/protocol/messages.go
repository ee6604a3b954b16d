package protocol

// StateView is the full session view returned by GET /v1/state and
// echoed after every mutating call.
type StateView struct {
	Version        string                  `json:"version"`
	SessionID      string                  `json:"session_id"`
	Turn           int                     `json:"turn"`
	Stats          map[string]int          `json:"stats"`
	StateTags      []string                `json:"state_tags"`
	ReputationTags []string                `json:"reputation_tags"`
	Log            []string                `json:"log"`
	Policies       map[string][]PolicyView `json:"policies"`
	PendingEvent   *EventView              `json:"pending_event,omitempty"`
	GameOver       bool                    `json:"game_over"`
	GameOverCause  string                  `json:"game_over_cause,omitempty"`
}

// EventView is a pending event with per-option blocking computed
// against the current stats. Blocking is view-time only; the catalog
// definition is never mutated.
type EventView struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Text        string       `json:"text"`
	Theme       string       `json:"theme"`
	DramaWeight int          `json:"drama_weight"`
	Options     []OptionView `json:"options"`
}

type OptionView struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	Effect      map[string]int `json:"effect,omitempty"`
	Blocked     bool           `json:"blocked,omitempty"`
	BlockReason string         `json:"block_reason,omitempty"`
}

type PolicyView struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Category      string         `json:"category"`
	Description   string         `json:"description,omitempty"`
	Active        bool           `json:"active"`
	LockTurns     int            `json:"lock_turns,omitempty"`
	StabilityCost int            `json:"stability_cost"`
	Clickable     bool           `json:"clickable"`
	BlockReason   string         `json:"block_reason,omitempty"`
	PassiveEffect map[string]int `json:"passive_effect,omitempty"`
}

// TurnResult is returned by POST /v1/turn.
type TurnResult struct {
	Status string `json:"status"` // "ok" or "game_over"
	Turn   int    `json:"turn"`
}

type ResolveRequest struct {
	EventID  string `json:"event_id"`
	OptionID string `json:"option_id"`
}

type ToggleRequest struct {
	PolicyID string `json:"policy_id"`
}

// ActionResult is the shared shape for resolve/toggle outcomes.
type ActionResult struct {
	Status  string `json:"status"` // "ok" or "error"
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK() ActionResult { return ActionResult{Status: "ok"} }

func Fail(code, message string) ActionResult {
	return ActionResult{Status: "error", Code: code, Message: message}
}
