package state

import (
	"github.com/pkg/errors"

	"checkers/internal/board"
	"checkers/internal/core"
)

// DefaultDrawPlies is the number of plies without a capture after which the game is drawn
const DefaultDrawPlies = 80

var (
	ErrIllegalMove  = errors.New("illegal move")
	ErrInvalidState = errors.New("invalid state")
)

// Rules are fixed for the lifetime of a game
type Rules struct {
	Variant board.Variant `json:"variant"`
	// DrawPlies of 0 disables the draw rule
	DrawPlies int `json:"drawPlies"`
}

func DefaultRules() Rules {
	return Rules{Variant: board.VariantStandard, DrawPlies: DefaultDrawPlies}
}

// State is an immutable game position. Apply returns a new value and never changes the receiver.
type State struct {
	board    board.Board
	turn     core.Color
	jumpFrom int
	plies    int
	rules    Rules
}

// New returns the starting position with white to move
func New(rules Rules) State {
	return State{
		board:    board.New(),
		turn:     core.ColorWhite,
		jumpFrom: -1,
		rules:    rules,
	}
}

// FromBoard builds a position for arbitrary piece placement
func FromBoard(b board.Board, turn core.Color, rules Rules) (State, error) {
	if turn != core.ColorWhite && turn != core.ColorBlack {
		return State{}, errors.Wrapf(ErrInvalidState, "turn %v", turn)
	}
	if rules.DrawPlies < 0 {
		return State{}, errors.Wrapf(ErrInvalidState, "draw plies %d", rules.DrawPlies)
	}
	return State{board: b, turn: turn, jumpFrom: -1, rules: rules}, nil
}

func (s State) Board() board.Board {
	return s.board
}

// Turn returns the side to move
func (s State) Turn() core.Color {
	return s.turn
}

// JumpFrom returns the square of the piece that must continue capturing, -1 when none
func (s State) JumpFrom() int {
	return s.jumpFrom
}

// PliesSinceCapture returns the number of plies since the last capture
func (s State) PliesSinceCapture() int {
	return s.plies
}

func (s State) Rules() Rules {
	return s.rules
}

// WithRules returns a copy of s played under r
func (s State) WithRules(r Rules) State {
	s.rules = r
	return s
}

// LegalMoves returns every move available to the side to move. Captures are mandatory:
// when any skip exists the result holds skips only. During a multi-jump only the jumping
// piece may move.
func (s State) LegalMoves() []board.Move {
	if s.jumpFrom >= 0 {
		return s.skipsFrom(s.jumpFrom)
	}

	pieces := s.board.Pieces(s.turn)
	var moves []board.Move
	for _, i := range pieces {
		moves = append(moves, s.skipsFrom(i)...)
	}
	if len(moves) > 0 {
		return moves
	}

	for _, i := range pieces {
		for _, end := range s.board.PieceMoves(i) {
			moves = append(moves, board.Move{Start: i, End: end, Type: board.MoveNormal})
		}
	}
	return moves
}

// MovesFrom returns the legal moves starting at index
func (s State) MovesFrom(index int) []board.Move {
	var moves []board.Move
	for _, m := range s.LegalMoves() {
		if m.Start == index {
			moves = append(moves, m)
		}
	}
	return moves
}

func (s State) IsLegal(m board.Move) bool {
	for _, legal := range s.LegalMoves() {
		if legal == m {
			return true
		}
	}
	return false
}

// MustJump reports whether the side to move is obliged to capture
func (s State) MustJump() bool {
	return s.jumpFrom >= 0 || s.board.HasSkip(s.turn, s.rules.Variant)
}

func (s State) skipsFrom(index int) []board.Move {
	var moves []board.Move
	for _, end := range s.board.PieceSkips(index, s.rules.Variant) {
		moves = append(moves, board.Move{Start: index, End: end, Type: board.MoveSkip})
	}
	return moves
}

// Apply plays a legal move and returns the resulting state. A skip that leaves the same
// piece able to capture again keeps the turn; promotion always ends it.
func (s State) Apply(m board.Move) (State, error) {
	if s.IsOver() {
		return s, errors.Wrap(ErrIllegalMove, "game is over")
	}
	if !s.IsLegal(m) {
		return s, errors.Wrapf(ErrIllegalMove, "%s", m)
	}
	return s.Successor(m), nil
}

// Successor plays m without validation. m must come from LegalMoves of the same state.
func (s State) Successor(m board.Move) State {
	next := s
	piece := next.board.Get(m.Start)
	next.board.Set(m.Start, board.Empty)

	promoted := board.ShouldPromote(piece, m.End)
	if promoted {
		piece = piece.Crowned()
	}
	next.board.Set(m.End, piece)

	if m.Type == board.MoveSkip {
		next.board.Set(m.Captured(), board.Empty)
		next.plies = 0
	} else {
		next.plies++
	}

	next.jumpFrom = -1
	if m.Type == board.MoveSkip && !promoted && len(next.board.PieceSkips(m.End, next.rules.Variant)) > 0 {
		next.jumpFrom = m.End
		return next
	}
	next.turn = s.turn.Opposite()
	return next
}

// Result classifies the position. A side without pieces or without legal moves loses;
// otherwise the game is drawn once the ply limit is reached.
func (s State) Result() core.Result {
	if s.turn == core.ColorNone {
		return core.ResultUnknown
	}
	if len(s.board.Pieces(core.ColorWhite)) == 0 {
		return core.ResultPlayer2Win
	}
	if len(s.board.Pieces(core.ColorBlack)) == 0 {
		return core.ResultPlayer1Win
	}
	if len(s.LegalMoves()) == 0 {
		return core.WinFor(s.turn.Opposite())
	}
	if s.rules.DrawPlies > 0 && s.plies >= s.rules.DrawPlies {
		return core.ResultDraw
	}
	return core.ResultUnknown
}

func (s State) IsOver() bool {
	return s.Result() != core.ResultUnknown
}

// Material returns the weighted piece count of a side: men count 1, kings 2
func (s State) Material(c core.Color) int {
	men, kings := s.board.Count(c)
	return men + 2*kings
}

// Evaluate returns the material balance from the point of view of c
func (s State) Evaluate(c core.Color) int {
	return s.Material(c) - s.Material(c.Opposite())
}

// PieceCount summarizes the material for API responses
func (s State) PieceCount() core.PieceCount {
	wm, wk := s.board.Count(core.ColorWhite)
	bm, bk := s.board.Count(core.ColorBlack)
	return core.PieceCount{WhiteMen: wm, WhiteKings: wk, BlackMen: bm, BlackKings: bk}
}
