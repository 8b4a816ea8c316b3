package board

import (
	"fmt"
	"strconv"
	"strings"
)

type MoveType int

const (
	MoveNormal MoveType = iota
	MoveSkip
)

func (t MoveType) String() string {
	if t == MoveSkip {
		return "skip"
	}
	return "normal"
}

// Move is a single piece transfer; a multi-jump is a sequence of skip moves.
// Moves compare by value.
type Move struct {
	Start int      `json:"start"`
	End   int      `json:"end"`
	Type  MoveType `json:"type"`
}

// NewMove builds a move between two squares, inferring its type from the distance
func NewMove(start, end int) (Move, error) {
	if !IsValidIndex(start) || !IsValidIndex(end) {
		return Move{}, fmt.Errorf("square out of range: %d-%d", start, end)
	}
	if Middle(start, end) >= 0 {
		return Move{Start: start, End: end, Type: MoveSkip}, nil
	}
	p1, p2 := ToPoint(start), ToPoint(end)
	if abs(p2.X-p1.X) == 1 && abs(p2.Y-p1.Y) == 1 {
		return Move{Start: start, End: end, Type: MoveNormal}, nil
	}
	return Move{}, fmt.Errorf("squares %d and %d are not diagonal neighbours or a jump apart", start, end)
}

// Captured returns the square of the captured piece, -1 for a normal move
func (m Move) Captured() int {
	if m.Type != MoveSkip {
		return -1
	}
	return Middle(m.Start, m.End)
}

func (m Move) IsSkip() bool {
	return m.Type == MoveSkip
}

// String renders "S-E" for a normal move and "SxE" for a skip
func (m Move) String() string {
	sep := "-"
	if m.Type == MoveSkip {
		sep = "x"
	}
	return fmt.Sprintf("%d%s%d", m.Start, sep, m.End)
}

// ParseMove reads "9-13", "9x18" or "9 13". An explicit separator must agree with the geometry.
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	var parts []string
	want := -1
	switch {
	case strings.Contains(s, "x"):
		parts = strings.SplitN(s, "x", 2)
		want = int(MoveSkip)
	case strings.Contains(s, "-"):
		parts = strings.SplitN(s, "-", 2)
		want = int(MoveNormal)
	default:
		parts = strings.Fields(s)
	}
	if len(parts) != 2 {
		return Move{}, fmt.Errorf("invalid move notation: %q", s)
	}

	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Move{}, fmt.Errorf("invalid move notation %q: %w", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Move{}, fmt.Errorf("invalid move notation %q: %w", s, err)
	}

	m, err := NewMove(start, end)
	if err != nil {
		return Move{}, err
	}
	if want >= 0 && MoveType(want) != m.Type {
		return Move{}, fmt.Errorf("invalid move notation %q: %d to %d is a %s move", s, start, end, m.Type)
	}
	return m, nil
}
