package game

import "time"

// TurnLogEntry is one line of the turn chronicle: which event the
// director offered and the stat vector after passive effects.
type TurnLogEntry struct {
	SessionID string         `json:"session_id"`
	Turn      int            `json:"turn"`
	EventID   string         `json:"event_id"`
	Theme     string         `json:"theme"`
	Stats     map[string]int `json:"stats"`
	GameOver  bool           `json:"game_over,omitempty"`
	Cause     string         `json:"cause,omitempty"`
	At        string         `json:"at"`
}

// DecisionLogEntry records one resolved choice.
type DecisionLogEntry struct {
	SessionID string   `json:"session_id"`
	Turn      int      `json:"turn"`
	EventID   string   `json:"event_id"`
	OptionID  string   `json:"option_id"`
	Tags      []string `json:"tags,omitempty"`
	At        string   `json:"at"`
}

type TurnLogger interface {
	WriteTurn(TurnLogEntry) error
}

type DecisionLogger interface {
	WriteDecision(DecisionLogEntry) error
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

func (g *Game) recordTurn(eventID, theme string) {
	if g.cfg.TurnLog == nil {
		return
	}
	_ = g.cfg.TurnLog.WriteTurn(TurnLogEntry{
		SessionID: g.cfg.SessionID,
		Turn:      g.turn,
		EventID:   eventID,
		Theme:     theme,
		Stats:     g.stats.Clone(),
		GameOver:  g.gameOver,
		Cause:     g.cause,
		At:        nowRFC3339(),
	})
}

func (g *Game) recordDecision(eventID, optionID string, grantedTags []string) {
	if g.cfg.DecisionLog == nil {
		return
	}
	_ = g.cfg.DecisionLog.WriteDecision(DecisionLogEntry{
		SessionID: g.cfg.SessionID,
		Turn:      g.turn,
		EventID:   eventID,
		OptionID:  optionID,
		Tags:      grantedTags,
		At:        nowRFC3339(),
	})
}
