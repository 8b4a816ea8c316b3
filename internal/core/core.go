package core

import "fmt"

// Color identifies a side. White is player 1 and moves first.
type Color int8

const (
	ColorNone Color = iota
	ColorWhite
	ColorBlack
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

// Name returns the long form used in messages
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "white"
	case ColorBlack:
		return "black"
	default:
		return "none"
	}
}

func (c Color) Opposite() Color {
	switch c {
	case ColorWhite:
		return ColorBlack
	case ColorBlack:
		return ColorWhite
	default:
		return ColorNone
	}
}

func ParseColor(s string) (Color, error) {
	switch s {
	case "w", "white":
		return ColorWhite, nil
	case "b", "black":
		return ColorBlack, nil
	default:
		return ColorNone, fmt.Errorf("invalid color: %q", s)
	}
}

// Result is the terminal classification of a game
type Result int

const (
	ResultUnknown Result = iota
	ResultPlayer1Win
	ResultPlayer2Win
	ResultDraw
)

func (r Result) String() string {
	switch r {
	case ResultPlayer1Win:
		return "white wins"
	case ResultPlayer2Win:
		return "black wins"
	case ResultDraw:
		return "draw"
	default:
		return "ongoing"
	}
}

// Winner returns the winning color, ColorNone for draws and unfinished games
func (r Result) Winner() Color {
	switch r {
	case ResultPlayer1Win:
		return ColorWhite
	case ResultPlayer2Win:
		return ColorBlack
	default:
		return ColorNone
	}
}

func WinFor(c Color) Result {
	if c == ColorWhite {
		return ResultPlayer1Win
	}
	return ResultPlayer2Win
}

// Status is the turn-loop state of a managed game
type Status int

const (
	StatusReady Status = iota
	StatusPlayer1ToMove
	StatusPlayer2ToMove
	StatusPaused
	StatusOver
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusPlayer1ToMove:
		return "white_to_move"
	case StatusPlayer2ToMove:
		return "black_to_move"
	case StatusPaused:
		return "paused"
	case StatusOver:
		return "over"
	default:
		return "unknown"
	}
}

// StatusToMove maps the side to move onto its running status
func StatusToMove(c Color) Status {
	if c == ColorBlack {
		return StatusPlayer2ToMove
	}
	return StatusPlayer1ToMove
}

type PlayerType int

const (
	PlayerHuman PlayerType = iota + 1
	PlayerMinimax
	PlayerRandom
	PlayerGreedy
)

func (t PlayerType) String() string {
	switch t {
	case PlayerHuman:
		return "human"
	case PlayerMinimax:
		return "minimax"
	case PlayerRandom:
		return "random"
	case PlayerGreedy:
		return "greedy"
	default:
		return "unknown"
	}
}

func ParsePlayerType(s string) (PlayerType, error) {
	switch s {
	case "human", "h":
		return PlayerHuman, nil
	case "minimax", "ai", "m":
		return PlayerMinimax, nil
	case "random", "r":
		return PlayerRandom, nil
	case "greedy", "g":
		return PlayerGreedy, nil
	default:
		return 0, fmt.Errorf("invalid player type: %q", s)
	}
}
