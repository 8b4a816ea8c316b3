package core

// Error codes
const (
	ErrGameNotFound      = "GAME_NOT_FOUND"
	ErrInvalidMove       = "INVALID_MOVE"
	ErrNotHumanTurn      = "NOT_HUMAN_TURN"
	ErrNotComputerTurn   = "NOT_COMPUTER_TURN"
	ErrGameOver          = "GAME_OVER"
	ErrGamePaused        = "GAME_PAUSED"
	ErrGameBusy          = "GAME_BUSY"
	ErrNothingToUndo     = "NOTHING_TO_UNDO"
	ErrNothingToRedo     = "NOTHING_TO_REDO"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidState      = "INVALID_STATE"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrResourceLimit     = "RESOURCE_LIMIT"
	ErrUnauthorized      = "UNAUTHORIZED"
)
