package protocol

// Version is the public API version reported by /healthz and the
// websocket stream.
const Version = "1.0"

// Feed entry kinds pushed to chronicle observers.
const (
	FeedTurn     = "TURN"
	FeedDecision = "DECISION"
	FeedPolicy   = "POLICY"
	FeedGameOver = "GAME_OVER"
	FeedReset    = "RESET"
)

// FeedMsg is one entry on the websocket chronicle stream.
type FeedMsg struct {
	Type      string         `json:"type"`
	Version   string         `json:"version"`
	SessionID string         `json:"session_id"`
	Turn      int            `json:"turn"`
	Detail    map[string]any `json:"detail,omitempty"`
}
