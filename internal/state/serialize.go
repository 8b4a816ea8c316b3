package state

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"checkers/internal/board"
	"checkers/internal/core"
)

// Starting is the serialized starting position with default rules
var Starting = New(DefaultRules()).String()

// String serializes the state as
// "<32 squares> <w|b> <jump square|-> <plies since capture> <variant> <draw plies>".
// Squares use '.', 'w', 'W', 'b' and 'B'.
func (s State) String() string {
	var sb strings.Builder
	for i := 0; i < board.Squares; i++ {
		sb.WriteRune(s.board.Get(i).Rune())
	}

	jump := "-"
	if s.jumpFrom >= 0 {
		jump = strconv.Itoa(s.jumpFrom)
	}
	fmt.Fprintf(&sb, " %s %s %d %s %d", s.turn, jump, s.plies, s.rules.Variant, s.rules.DrawPlies)
	return sb.String()
}

// Parse reads a serialized state. The rules fields may be omitted, in which case the
// default rules apply.
func Parse(str string) (State, error) {
	parts := strings.Fields(str)
	if len(parts) != 4 && len(parts) != 6 {
		return State{}, errors.Wrapf(ErrInvalidState, "expected 4 or 6 fields, got %d", len(parts))
	}

	var s State
	if len(parts[0]) != board.Squares {
		return State{}, errors.Wrapf(ErrInvalidState, "expected %d squares, got %d", board.Squares, len(parts[0]))
	}
	for i, r := range parts[0] {
		p, ok := board.PieceFromRune(r)
		if !ok {
			return State{}, errors.Wrapf(ErrInvalidState, "invalid piece %q at square %d", r, i)
		}
		s.board.Set(i, p)
	}

	turn, err := core.ParseColor(parts[1])
	if err != nil || len(parts[1]) != 1 {
		return State{}, errors.Wrapf(ErrInvalidState, "turn must be 'w' or 'b', got %q", parts[1])
	}
	s.turn = turn

	s.plies, err = strconv.Atoi(parts[3])
	if err != nil || s.plies < 0 {
		return State{}, errors.Wrapf(ErrInvalidState, "invalid ply counter %q", parts[3])
	}

	s.rules = DefaultRules()
	if len(parts) == 6 {
		v, err := board.ParseVariant(parts[4])
		if err != nil {
			return State{}, errors.Wrap(ErrInvalidState, err.Error())
		}
		draw, err := strconv.Atoi(parts[5])
		if err != nil || draw < 0 {
			return State{}, errors.Wrapf(ErrInvalidState, "invalid draw plies %q", parts[5])
		}
		s.rules = Rules{Variant: v, DrawPlies: draw}
	}

	// men are crowned on arrival, so none can rest on their promotion row
	for i := 0; i < board.Squares; i++ {
		if board.ShouldPromote(s.board.Get(i), i) {
			return State{}, errors.Wrapf(ErrInvalidState, "uncrowned man on promotion square %d", i)
		}
	}

	s.jumpFrom = -1
	if parts[2] != "-" {
		jump, err := strconv.Atoi(parts[2])
		if err != nil || !board.IsValidIndex(jump) {
			return State{}, errors.Wrapf(ErrInvalidState, "invalid jump square %q", parts[2])
		}
		if s.board.Get(jump).Color() != turn {
			return State{}, errors.Wrapf(ErrInvalidState, "jump square %d does not hold a %s piece", jump, turn.Name())
		}
		if len(s.board.PieceSkips(jump, s.rules.Variant)) == 0 {
			return State{}, errors.Wrapf(ErrInvalidState, "piece on jump square %d has no capture to continue", jump)
		}
		s.jumpFrom = jump
	}

	return s, nil
}

// MustParse is Parse for known-good literals
func MustParse(str string) State {
	s, err := Parse(str)
	if err != nil {
		panic(err)
	}
	return s
}
