package state

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkers/internal/board"
	"checkers/internal/core"
)

func TestStartingString(t *testing.T) {
	assert.Equal(t, "wwwwwwwwwwww........bbbbbbbbbbbb w - 0 standard 80", Starting)
}

func TestRoundTrip(t *testing.T) {
	s := New(Rules{Variant: board.VariantItalian, DrawPlies: 40})
	s, err := s.Apply(board.Move{Start: 9, End: 13, Type: board.MoveNormal})
	require.NoError(t, err)

	parsed, err := Parse(s.String())
	require.NoError(t, err)
	assert.Equal(t, s, parsed)
	assert.Equal(t, s.String(), parsed.String())
}

func TestRoundTripMidJump(t *testing.T) {
	s := MustParse("..w......w....b.......b........b w - 3")
	mid, err := s.Apply(board.Move{Start: 9, End: 18, Type: board.MoveSkip})
	require.NoError(t, err)
	require.Equal(t, 18, mid.JumpFrom())

	str := mid.String()
	assert.Contains(t, str, " w 18 0 ")

	parsed, err := Parse(str)
	require.NoError(t, err)
	assert.Equal(t, mid, parsed)
}

func TestParseShortFormUsesDefaultRules(t *testing.T) {
	s, err := Parse("wwwwwwwwwwww........bbbbbbbbbbbb b - 12")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), s.Rules())
	assert.Equal(t, core.ColorBlack, s.Turn())
	assert.Equal(t, 12, s.PliesSinceCapture())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"too few fields", "wwwwwwwwwwww........bbbbbbbbbbbb w -"},
		{"five fields", "wwwwwwwwwwww........bbbbbbbbbbbb w - 0 standard"},
		{"short board", "wwwwwwwwwww........bbbbbbbbbbbb w - 0"},
		{"bad piece", "wwwwwwwwwwwx........bbbbbbbbbbbb w - 0"},
		{"bad turn", "wwwwwwwwwwww........bbbbbbbbbbbb x - 0"},
		{"long turn", "wwwwwwwwwwww........bbbbbbbbbbbb white - 0"},
		{"bad jump", "wwwwwwwwwwww........bbbbbbbbbbbb w 40 0"},
		{"jump on empty square", "wwwwwwwwwwww........bbbbbbbbbbbb w 15 0"},
		{"jump on enemy piece", "wwwwwwwwwwww........bbbbbbbbbbbb w 25 0"},
		{"jump piece cannot capture", "wwwwwwwwwwww........bbbbbbbbbbbb w 9 0"},
		{"jump piece cannot capture under italian rules", ".........w....B................. w 9 0 italian 80"},
		{"white man on promotion row", "............................w..b w - 0"},
		{"black man on promotion row", "..b.........w................... b - 0"},
		{"negative plies", "wwwwwwwwwwww........bbbbbbbbbbbb w - -1"},
		{"bad plies", "wwwwwwwwwwww........bbbbbbbbbbbb w - x"},
		{"bad variant", "wwwwwwwwwwww........bbbbbbbbbbbb w - 0 russian 80"},
		{"bad draw plies", "wwwwwwwwwwww........bbbbbbbbbbbb w - 0 standard -5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidState))
		})
	}
}

func TestParseJumpContinuation(t *testing.T) {
	str := ".........w....b................. w 9 0 standard 80"
	s, err := Parse(str)
	require.NoError(t, err)
	assert.Equal(t, 9, s.JumpFrom())
	assert.Equal(t, str, s.String())

	moves := s.LegalMoves()
	require.Len(t, moves, 1)
	assert.Equal(t, "9x18", moves[0].String())
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("nope") })
}
