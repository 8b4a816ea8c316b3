package board

import (
	"fmt"
	"strings"

	"checkers/internal/core"
)

// Squares is the number of playable (dark) squares on the 8x8 board
const Squares = 32

// Piece codes: bit 2 marks an occupied square, bit 1 a black piece and bit 0 a king.
type Piece int8

const (
	Invalid   Piece = -1
	Empty     Piece = 0
	WhiteMan  Piece = 4
	WhiteKing Piece = 5
	BlackMan  Piece = 6
	BlackKing Piece = 7
)

func (p Piece) IsPiece() bool {
	return p >= WhiteMan && p <= BlackKing
}

func (p Piece) IsKing() bool {
	return p.IsPiece() && p&1 == 1
}

func (p Piece) Color() core.Color {
	if !p.IsPiece() {
		return core.ColorNone
	}
	if p&2 != 0 {
		return core.ColorBlack
	}
	return core.ColorWhite
}

// Crowned returns the king of the same color
func (p Piece) Crowned() Piece {
	if !p.IsPiece() {
		return p
	}
	return p | 1
}

// Rune returns the character used in serialized states and ASCII boards
func (p Piece) Rune() rune {
	switch p {
	case WhiteMan:
		return 'w'
	case WhiteKing:
		return 'W'
	case BlackMan:
		return 'b'
	case BlackKing:
		return 'B'
	default:
		return '.'
	}
}

func PieceFromRune(r rune) (Piece, bool) {
	switch r {
	case '.':
		return Empty, true
	case 'w':
		return WhiteMan, true
	case 'W':
		return WhiteKing, true
	case 'b':
		return BlackMan, true
	case 'B':
		return BlackKing, true
	default:
		return Invalid, false
	}
}

func Man(c core.Color) Piece {
	if c == core.ColorBlack {
		return BlackMan
	}
	return WhiteMan
}

func King(c core.Color) Piece {
	return Man(c).Crowned()
}

// Point is a board coordinate: X is the column, Y the row, both in 0..7.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Board maps the 32 playable squares to pieces. It is a value type; copies are independent.
type Board struct {
	squares [Squares]Piece
}

// New returns the starting position: white men on 0-11, black men on 20-31
func New() Board {
	var b Board
	for i := 0; i < 12; i++ {
		b.squares[i] = WhiteMan
		b.squares[Squares-1-i] = BlackMan
	}
	return b
}

// NewEmpty returns a board without pieces
func NewEmpty() Board {
	return Board{}
}

func IsValidIndex(index int) bool {
	return index >= 0 && index < Squares
}

// IsValidPoint reports whether (x, y) is a playable dark square
func IsValidPoint(x, y int) bool {
	if x < 0 || x > 7 || y < 0 || y > 7 {
		return false
	}
	return x%2 != y%2
}

// ToIndex converts a point to a square index, -1 when the point is not playable
func ToIndex(x, y int) int {
	if !IsValidPoint(x, y) {
		return -1
	}
	return y*4 + x/2
}

// ToPoint converts a square index to a point, (-1,-1) for invalid indices
func ToPoint(index int) Point {
	if !IsValidIndex(index) {
		return Point{-1, -1}
	}
	y := index / 4
	x := 2*(index%4) + (y+1)%2
	return Point{X: x, Y: y}
}

// Middle returns the square jumped over between start and end, -1 if the pair is not a jump
func Middle(start, end int) int {
	if !IsValidIndex(start) || !IsValidIndex(end) {
		return -1
	}
	p1, p2 := ToPoint(start), ToPoint(end)
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	if abs(dx) != 2 || abs(dy) != 2 {
		return -1
	}
	return ToIndex(p1.X+dx/2, p1.Y+dy/2)
}

// Get returns the piece on a square, Invalid for indices off the board
func (b Board) Get(index int) Piece {
	if !IsValidIndex(index) {
		return Invalid
	}
	return b.squares[index]
}

func (b Board) GetAt(x, y int) Piece {
	return b.Get(ToIndex(x, y))
}

// Set places a piece on a square; invalid indices are ignored
func (b *Board) Set(index int, p Piece) {
	if !IsValidIndex(index) {
		return
	}
	if !p.IsPiece() {
		p = Empty
	}
	b.squares[index] = p
}

func (b *Board) SetAt(x, y int, p Piece) {
	b.Set(ToIndex(x, y), p)
}

// Find returns the indices holding the given piece in ascending order
func (b Board) Find(p Piece) []int {
	var indices []int
	for i, sq := range b.squares {
		if sq == p {
			indices = append(indices, i)
		}
	}
	return indices
}

// Pieces returns the indices occupied by a side in ascending order
func (b Board) Pieces(c core.Color) []int {
	var indices []int
	for i, sq := range b.squares {
		if sq.Color() == c {
			indices = append(indices, i)
		}
	}
	return indices
}

// Count returns the number of men and kings of a side
func (b Board) Count(c core.Color) (men, kings int) {
	for _, sq := range b.squares {
		if sq.Color() != c {
			continue
		}
		if sq.IsKing() {
			kings++
		} else {
			men++
		}
	}
	return men, kings
}

// Total returns the number of pieces on the board
func (b Board) Total() int {
	n := 0
	for _, sq := range b.squares {
		if sq.IsPiece() {
			n++
		}
	}
	return n
}

// ToASCII creates an ASCII representation of the board with square indices in the margin
func (b Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("   0 1 2 3 4 5 6 7\n")

	for y := 0; y < 8; y++ {
		sb.WriteString(fmt.Sprintf("%d  ", y))
		for x := 0; x < 8; x++ {
			if !IsValidPoint(x, y) {
				sb.WriteString("  ")
				continue
			}
			sb.WriteString(fmt.Sprintf("%c ", b.GetAt(x, y).Rune()))
		}
		sb.WriteString(fmt.Sprintf(" %2d-%2d\n", y*4, y*4+3))
	}
	sb.WriteString("   0 1 2 3 4 5 6 7")

	return sb.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
