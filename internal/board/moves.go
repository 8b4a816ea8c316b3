package board

import (
	"fmt"

	"checkers/internal/core"
)

// Variant selects the capture rule set
type Variant int

const (
	// VariantStandard lets men capture any enemy piece
	VariantStandard Variant = iota
	// VariantItalian forbids men from capturing kings
	VariantItalian
)

func (v Variant) String() string {
	switch v {
	case VariantItalian:
		return "italian"
	default:
		return "standard"
	}
}

func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "standard":
		return VariantStandard, nil
	case "italian":
		return VariantItalian, nil
	default:
		return VariantStandard, fmt.Errorf("invalid variant: %q", s)
	}
}

// CanCapture reports whether attacker may jump over victim under the variant's rules
func (v Variant) CanCapture(attacker, victim Piece) bool {
	if !attacker.IsPiece() || !victim.IsPiece() || attacker.Color() == victim.Color() {
		return false
	}
	if v == VariantItalian && !attacker.IsKing() && victim.IsKing() {
		return false
	}
	return true
}

var diagonals = [4]Point{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

// Forward returns the row direction men of a color advance in
func Forward(c core.Color) int {
	if c == core.ColorBlack {
		return -1
	}
	return 1
}

// PromotionRow returns the row on which men of a color are crowned
func PromotionRow(c core.Color) int {
	if c == core.ColorBlack {
		return 0
	}
	return 7
}

// ShouldPromote reports whether a piece arriving at index becomes a king
func ShouldPromote(p Piece, index int) bool {
	if !p.IsPiece() || p.IsKing() {
		return false
	}
	return ToPoint(index).Y == PromotionRow(p.Color())
}

// canMoveDir reports whether a piece may travel along row direction dy
func canMoveDir(p Piece, dy int) bool {
	return p.IsKing() || dy == Forward(p.Color())
}

// PieceMoves returns the simple (non-capturing) destinations of the piece on index
func (b Board) PieceMoves(index int) []int {
	p := b.Get(index)
	if !p.IsPiece() {
		return nil
	}
	from := ToPoint(index)

	var ends []int
	for _, d := range diagonals {
		if !canMoveDir(p, d.Y) {
			continue
		}
		end := ToIndex(from.X+d.X, from.Y+d.Y)
		if end >= 0 && b.Get(end) == Empty {
			ends = append(ends, end)
		}
	}
	return ends
}

// PieceSkips returns the landing squares of every capture available to the piece on index
func (b Board) PieceSkips(index int, v Variant) []int {
	p := b.Get(index)
	if !p.IsPiece() {
		return nil
	}
	from := ToPoint(index)

	var ends []int
	for _, d := range diagonals {
		end := ToIndex(from.X+2*d.X, from.Y+2*d.Y)
		if end >= 0 && b.IsValidSkip(index, end, v) {
			ends = append(ends, end)
		}
	}
	return ends
}

// IsValidSkip reports whether the piece on start can jump to end capturing the piece between
func (b Board) IsValidSkip(start, end int, v Variant) bool {
	p := b.Get(start)
	if !p.IsPiece() || b.Get(end) != Empty {
		return false
	}
	mid := Middle(start, end)
	if mid < 0 {
		return false
	}
	if !canMoveDir(p, ToPoint(end).Y-ToPoint(start).Y) {
		return false
	}
	return v.CanCapture(p, b.Get(mid))
}

// HasSkip reports whether any piece of the given side can capture
func (b Board) HasSkip(c core.Color, v Variant) bool {
	for _, i := range b.Pieces(c) {
		if len(b.PieceSkips(i, v)) > 0 {
			return true
		}
	}
	return false
}

// IsSafe reports whether the piece on index cannot be captured by the opponent's next move.
// Empty and invalid squares are safe.
func (b Board) IsSafe(index int, v Variant) bool {
	p := b.Get(index)
	if !p.IsPiece() {
		return true
	}
	at := ToPoint(index)

	for _, d := range diagonals {
		attackerIdx := ToIndex(at.X+d.X, at.Y+d.Y)
		landing := ToIndex(at.X-d.X, at.Y-d.Y)
		if attackerIdx < 0 || landing < 0 {
			continue
		}
		attacker := b.Get(attackerIdx)
		if attacker.Color() != p.Color().Opposite() {
			continue
		}
		if b.IsValidSkip(attackerIdx, landing, v) {
			return false
		}
	}
	return true
}
