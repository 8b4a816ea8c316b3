package engine

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/state"
)

// hangingPiece has white men on 12 and 13 and a black man on 21. Only 13-16 keeps
// both white men out of reach.
func hangingPiece(t *testing.T) state.State {
	t.Helper()
	b := board.NewEmpty()
	b.Set(12, board.WhiteMan)
	b.Set(13, board.WhiteMan)
	b.Set(21, board.BlackMan)
	s, err := state.FromBoard(b, core.ColorWhite, state.DefaultRules())
	require.NoError(t, err)
	return s
}

func TestMinimaxAvoidsLosingPiece(t *testing.T) {
	want := board.Move{Start: 13, End: 16, Type: board.MoveNormal}

	for _, pruning := range []bool{true, false} {
		res, err := NewMinimax(2, pruning).ChooseMove(context.Background(), hangingPiece(t))
		require.NoError(t, err)
		assert.Equal(t, want, res.BestMove)
		assert.Equal(t, PieceScore, res.Score)
		assert.Equal(t, 2, res.Depth)
		assert.Positive(t, res.Nodes)
	}
}

func TestMinimaxPrefersWin(t *testing.T) {
	// White king on 13 takes the last black piece on 17
	b := board.NewEmpty()
	b.Set(13, board.WhiteKing)
	b.Set(0, board.WhiteMan)
	b.Set(17, board.BlackMan)
	s, err := state.FromBoard(b, core.ColorWhite, state.DefaultRules())
	require.NoError(t, err)

	res, err := NewMinimax(3, true).ChooseMove(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, res.BestMove.IsSkip())
	assert.Equal(t, WinScore-1, res.Score)
}

func TestAlphaBetaMatchesPlainMinimax(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	ctx := context.Background()

	for game := 0; game < 6; game++ {
		s := state.New(state.DefaultRules())
		for ply := 0; ply < 40 && !s.IsOver(); ply++ {
			if ply%4 == 0 {
				for depth := 1; depth <= 4; depth++ {
					plain, err := NewMinimax(depth, false).ChooseMove(ctx, s)
					require.NoError(t, err)
					pruned, err := NewMinimax(depth, true).ChooseMove(ctx, s)
					require.NoError(t, err)

					require.Equal(t, plain.BestMove, pruned.BestMove, "depth %d state %s", depth, s)
					require.Equal(t, plain.Score, pruned.Score, "depth %d state %s", depth, s)
					require.LessOrEqual(t, pruned.Nodes, plain.Nodes)
				}
			}
			moves := s.LegalMoves()
			s = s.Successor(moves[rng.Intn(len(moves))])
		}
	}
}

func TestMinimaxNoMoves(t *testing.T) {
	b := board.NewEmpty()
	b.Set(0, board.WhiteMan)
	b.Set(1, board.WhiteMan)
	b.Set(4, board.BlackMan)
	s, err := state.FromBoard(b, core.ColorBlack, state.DefaultRules())
	require.NoError(t, err)

	_, err = NewMinimax(3, true).ChooseMove(context.Background(), s)
	assert.True(t, errors.Is(err, ErrNoMoves))
}

func TestMinimaxCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMinimax(6, false).ChooseMove(ctx, state.New(state.DefaultRules()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewMinimaxClampsDepth(t *testing.T) {
	assert.Equal(t, core.DefaultDepth, NewMinimax(0, true).Depth)
	assert.Equal(t, core.MaxDepth, NewMinimax(50, true).Depth)
	assert.Equal(t, "minimax(3)", NewMinimax(3, true).Name())
	assert.Equal(t, "minimax(3,no-pruning)", NewMinimax(3, false).Name())
}

func TestRandomPicksLegalMoves(t *testing.T) {
	s := state.New(state.DefaultRules())
	legal := s.LegalMoves()
	seen := map[board.Move]int{}

	r := NewRandom(42)
	for i := 0; i < 700; i++ {
		res, err := r.ChooseMove(context.Background(), s)
		require.NoError(t, err)
		require.True(t, s.IsLegal(res.BestMove))
		seen[res.BestMove]++
	}
	assert.Len(t, seen, len(legal), "every legal move should be picked eventually")
}

func TestRandomIsReproducible(t *testing.T) {
	s := state.New(state.DefaultRules())
	a, b := NewRandom(5), NewRandom(5)
	for i := 0; i < 20; i++ {
		ra, err := a.ChooseMove(context.Background(), s)
		require.NoError(t, err)
		rb, err := b.ChooseMove(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, ra.BestMove, rb.BestMove)
	}
}

func TestRandomHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRandom(1).ChooseMove(ctx, state.New(state.DefaultRules()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGreedyKeepsPiecesSafe(t *testing.T) {
	s := hangingPiece(t)
	assert.Greater(t, MoveWeight(s, board.Move{Start: 13, End: 16}), MoveWeight(s, board.Move{Start: 13, End: 17}))
	assert.Greater(t, MoveWeight(s, board.Move{Start: 13, End: 16}), MoveWeight(s, board.Move{Start: 12, End: 16}))

	g := NewGreedy(3)
	for i := 0; i < 10; i++ {
		res, err := g.ChooseMove(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, board.Move{Start: 13, End: 16, Type: board.MoveNormal}, res.BestMove)
	}
}

func TestGreedyRewardsCaptureChains(t *testing.T) {
	// 9x18 continues to 25; 8x17 and 9x16 end the turn
	b := board.NewEmpty()
	b.Set(9, board.WhiteMan)
	b.Set(8, board.WhiteMan)
	b.Set(13, board.BlackMan)
	b.Set(14, board.BlackMan)
	b.Set(22, board.BlackMan)
	b.Set(26, board.BlackMan)
	s, err := state.FromBoard(b, core.ColorWhite, state.DefaultRules())
	require.NoError(t, err)

	chain := board.Move{Start: 9, End: 18, Type: board.MoveSkip}
	require.True(t, s.IsLegal(chain))
	for _, m := range s.LegalMoves() {
		if m != chain {
			assert.Greater(t, MoveWeight(s, chain), MoveWeight(s, m), m.String())
		}
	}
}

func TestTraceRecordsTree(t *testing.T) {
	trace := NewTrace(0)
	res, err := NewMinimax(2, false).Search(context.Background(), state.New(state.DefaultRules()), trace)
	require.NoError(t, err)

	// root + every visited node
	assert.Equal(t, res.Nodes+1, trace.Len())
	dot := trace.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(dot), "digraph"))
	assert.Contains(t, dot, "9-13")

	limited := NewTrace(10)
	_, err = NewMinimax(3, true).Search(context.Background(), state.New(state.DefaultRules()), limited)
	require.NoError(t, err)
	assert.LessOrEqual(t, limited.Len(), 10)

	var none *Trace
	assert.Zero(t, none.Len())
	assert.Empty(t, none.String())
}

func TestNewFromConfig(t *testing.T) {
	assert.True(t, New(nil).IsHuman())
	assert.True(t, New(&core.Player{Type: core.PlayerHuman}).IsHuman())

	m, ok := New(&core.Player{Type: core.PlayerMinimax, Depth: 4, NoPruning: true}).(*Minimax)
	require.True(t, ok)
	assert.Equal(t, 4, m.Depth)
	assert.False(t, m.Pruning)

	_, ok = New(&core.Player{Type: core.PlayerRandom}).(*Random)
	assert.True(t, ok)
	_, ok = New(&core.Player{Type: core.PlayerGreedy}).(*Greedy)
	assert.True(t, ok)

	_, err := Human{}.ChooseMove(context.Background(), state.New(state.DefaultRules()))
	assert.ErrorIs(t, err, ErrHumanPlayer)
}
