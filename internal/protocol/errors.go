package protocol

const (
	// Request validation.
	ErrBadRequest = "E_BAD_REQUEST"

	// Rule/action layer.
	ErrNoResource    = "E_NO_RESOURCE"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrConflict      = "E_CONFLICT"
	ErrBlocked       = "E_BLOCKED"
	ErrGameOver      = "E_GAME_OVER"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:    {},
	ErrNoResource:    {},
	ErrInvalidTarget: {},
	ErrConflict:      {},
	ErrBlocked:       {},
	ErrGameOver:      {},
	ErrInternal:      {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
