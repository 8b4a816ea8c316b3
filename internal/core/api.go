package core

import "time"

// ComputerMove requests a move from the engine instead of supplying one
const ComputerMove = "cccc"

// Request types

type CreateGameRequest struct {
	White     PlayerConfig `json:"white" validate:"required"`
	Black     PlayerConfig `json:"black" validate:"required"`
	State     string       `json:"state,omitempty" validate:"omitempty,max=100"`
	Variant   string       `json:"variant,omitempty" validate:"omitempty,oneof=standard italian"`
	DrawPlies *int         `json:"drawPlies,omitempty" validate:"omitempty,min=0,max=1000"`
}

type ConfigurePlayersRequest struct {
	White PlayerConfig `json:"white" validate:"required"`
	Black PlayerConfig `json:"black" validate:"required"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=3,max=5"` // "cccc" for computer move, "9-13" or "9x18" otherwise
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=500"`
}

type LegalMovesRequest struct {
	From *int `query:"from" validate:"omitempty,min=0,max=31"`
}

// Response types

type GameResponse struct {
	GameID    string          `json:"gameId"`
	State     string          `json:"state"`  // serialized game state
	Turn      string          `json:"turn"`   // "w" or "b"
	Status    string          `json:"status"` // "white_to_move", "paused", "over", ...
	Result    string          `json:"result"` // "ongoing", "white wins", ...
	Pending   bool            `json:"pending,omitempty"`
	JumpFrom  *int            `json:"jumpFrom,omitempty"`
	Moves     []string        `json:"moves"`
	CanRedo   bool            `json:"canRedo"`
	Pieces    PieceCount      `json:"pieces"`
	Players   PlayersResponse `json:"players"`
	LastMove  *MoveInfo       `json:"lastMove,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type PieceCount struct {
	WhiteMen   int `json:"whiteMen"`
	WhiteKings int `json:"whiteKings"`
	BlackMen   int `json:"blackMen"`
	BlackKings int `json:"blackKings"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
	Score       int    `json:"score,omitempty"`
	Depth       int    `json:"depth,omitempty"`
	Nodes       int    `json:"nodes,omitempty"`
}

type BoardResponse struct {
	State string `json:"state"`
	Board string `json:"board"` // ASCII representation
}

type LegalMovesResponse struct {
	Moves []string `json:"moves"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
