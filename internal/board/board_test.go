package board

import (
	"strings"
	"testing"

	"checkers/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointIndexConversion(t *testing.T) {
	assert.Equal(t, Point{1, 0}, ToPoint(0))
	assert.Equal(t, Point{0, 1}, ToPoint(4))
	assert.Equal(t, Point{3, 2}, ToPoint(9))
	assert.Equal(t, Point{2, 3}, ToPoint(13))
	assert.Equal(t, Point{6, 7}, ToPoint(31))
	assert.Equal(t, Point{-1, -1}, ToPoint(32))
	assert.Equal(t, Point{-1, -1}, ToPoint(-1))

	for i := 0; i < Squares; i++ {
		p := ToPoint(i)
		require.True(t, IsValidPoint(p.X, p.Y), "index %d maps to light square %v", i, p)
		require.Equal(t, i, ToIndex(p.X, p.Y))
	}

	assert.Equal(t, -1, ToIndex(0, 0))
	assert.Equal(t, -1, ToIndex(8, 1))
	assert.Equal(t, -1, ToIndex(-1, 0))
}

func TestMiddle(t *testing.T) {
	assert.Equal(t, 14, Middle(9, 18))
	assert.Equal(t, 14, Middle(18, 9))
	assert.Equal(t, 13, Middle(9, 16))
	assert.Equal(t, -1, Middle(9, 13))
	assert.Equal(t, -1, Middle(9, 9))
	assert.Equal(t, -1, Middle(0, 40))
}

func TestStartingPosition(t *testing.T) {
	b := New()

	men, kings := b.Count(core.ColorWhite)
	assert.Equal(t, 12, men)
	assert.Zero(t, kings)
	men, kings = b.Count(core.ColorBlack)
	assert.Equal(t, 12, men)
	assert.Zero(t, kings)

	for i := 12; i < 20; i++ {
		assert.Equal(t, Empty, b.Get(i))
	}
	assert.Equal(t, WhiteMan, b.Get(0))
	assert.Equal(t, BlackMan, b.Get(31))
	assert.Equal(t, Invalid, b.Get(32))
	assert.Equal(t, Invalid, b.GetAt(0, 0))
}

func TestSetIgnoresInvalidInput(t *testing.T) {
	b := NewEmpty()
	b.Set(40, WhiteMan)
	b.Set(3, Invalid)
	b.SetAt(0, 0, BlackKing)
	assert.Zero(t, b.Total())

	b.SetAt(1, 0, BlackKing)
	assert.Equal(t, BlackKing, b.Get(0))
	assert.Equal(t, []int{0}, b.Find(BlackKing))
}

func TestBoardIsValueType(t *testing.T) {
	b := New()
	c := b
	c.Set(9, Empty)
	assert.Equal(t, WhiteMan, b.Get(9))
	assert.Equal(t, Empty, c.Get(9))
}

func TestPieceCodes(t *testing.T) {
	assert.True(t, WhiteKing.IsKing())
	assert.False(t, BlackMan.IsKing())
	assert.False(t, Invalid.IsKing())
	assert.Equal(t, core.ColorBlack, BlackKing.Color())
	assert.Equal(t, core.ColorWhite, WhiteMan.Color())
	assert.Equal(t, core.ColorNone, Empty.Color())
	assert.Equal(t, BlackKing, BlackMan.Crowned())
	assert.Equal(t, WhiteKing, King(core.ColorWhite))

	for _, p := range []Piece{Empty, WhiteMan, WhiteKing, BlackMan, BlackKing} {
		got, ok := PieceFromRune(p.Rune())
		require.True(t, ok)
		assert.Equal(t, p, got)
	}
	_, ok := PieceFromRune('x')
	assert.False(t, ok)
}

func TestPieceMoves(t *testing.T) {
	b := New()
	assert.Equal(t, []int{13, 14}, b.PieceMoves(9))
	assert.Equal(t, []int{12, 13}, b.PieceMoves(8))
	assert.Empty(t, b.PieceMoves(0), "back row is blocked")
	assert.Equal(t, []int{16}, b.PieceMoves(20))
	assert.Empty(t, b.PieceMoves(15), "empty square")

	k := NewEmpty()
	k.Set(13, WhiteKing)
	assert.Equal(t, []int{8, 9, 16, 17}, k.PieceMoves(13))
}

func TestPieceSkips(t *testing.T) {
	b := NewEmpty()
	b.Set(9, WhiteMan)
	b.Set(13, BlackMan)
	b.Set(14, BlackMan)
	assert.Equal(t, []int{16, 18}, b.PieceSkips(9, VariantStandard))

	b.Set(18, WhiteMan)
	assert.Equal(t, []int{16}, b.PieceSkips(9, VariantStandard), "landing square occupied")
}

func TestMenDoNotCaptureBackwards(t *testing.T) {
	b := NewEmpty()
	b.Set(18, WhiteMan)
	b.Set(14, BlackMan)
	assert.Empty(t, b.PieceSkips(18, VariantStandard))

	b.Set(18, WhiteKing)
	assert.Equal(t, []int{9}, b.PieceSkips(18, VariantStandard))
}

func TestItalianVariantProtectsKings(t *testing.T) {
	b := NewEmpty()
	b.Set(9, WhiteMan)
	b.Set(14, BlackKing)

	assert.Equal(t, []int{18}, b.PieceSkips(9, VariantStandard))
	assert.Empty(t, b.PieceSkips(9, VariantItalian))
	assert.True(t, b.IsValidSkip(9, 18, VariantStandard))
	assert.False(t, b.IsValidSkip(9, 18, VariantItalian))

	b.Set(9, WhiteKing)
	assert.Equal(t, []int{18}, b.PieceSkips(9, VariantItalian))
}

func TestIsSafe(t *testing.T) {
	b := NewEmpty()
	b.Set(9, WhiteMan)
	b.Set(14, BlackMan)
	assert.False(t, b.IsSafe(9, VariantStandard))

	b.Set(5, WhiteMan)
	assert.True(t, b.IsSafe(9, VariantStandard), "landing square covered")

	b.Set(13, BlackMan)
	assert.False(t, b.IsSafe(9, VariantStandard), "13 can jump to 6")

	assert.True(t, b.IsSafe(20, VariantStandard), "empty squares are safe")
}

func TestHasSkip(t *testing.T) {
	b := New()
	assert.False(t, b.HasSkip(core.ColorWhite, VariantStandard))

	b.Set(13, BlackMan)
	b.Set(16, Empty)
	b.Set(17, Empty)
	assert.True(t, b.HasSkip(core.ColorWhite, VariantStandard))
}

func TestShouldPromote(t *testing.T) {
	assert.True(t, ShouldPromote(WhiteMan, 28))
	assert.False(t, ShouldPromote(WhiteMan, 3))
	assert.True(t, ShouldPromote(BlackMan, 3))
	assert.False(t, ShouldPromote(BlackKing, 3))
	assert.False(t, ShouldPromote(Empty, 3))
}

func TestToASCII(t *testing.T) {
	b := New()
	ascii := b.ToASCII()
	lines := strings.Split(ascii, "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, 12, strings.Count(ascii, "w"))
	assert.Equal(t, 12, strings.Count(ascii, "b"))
}
