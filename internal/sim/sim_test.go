package sim

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkers/internal/core"
)

func TestRunCollectsStatistics(t *testing.T) {
	var played atomic.Int32
	cfg := Config{
		Games:      6,
		Player1:    core.PlayerConfig{Type: core.PlayerGreedy, Seed: 10},
		Player2:    core.PlayerConfig{Type: core.PlayerRandom, Seed: 20},
		SwapColors: true,
		Parallel:   3,
	}

	report, err := Run(context.Background(), cfg, func(GameResult) { played.Add(1) })
	require.NoError(t, err)
	assert.Equal(t, int32(6), played.Load())

	assert.Equal(t, 6, report.Games)
	assert.Equal(t, report.Games, report.Players[0].Wins+report.Players[1].Wins+report.Draws)
	assert.Equal(t, report.Players[0].Wins, report.Players[1].Losses)
	assert.Equal(t, 3, report.Players[0].AsWhite)
	assert.Equal(t, 3, report.Players[1].AsWhite)
	assert.Equal(t, "greedy", report.Players[0].Name)
	assert.Equal(t, "random", report.Players[1].Name)

	totalPlies := 0
	for i, res := range report.Results {
		assert.Equal(t, i+1, res.Index)
		assert.NotEqual(t, core.ResultUnknown, res.Result)
		assert.Equal(t, i%2 == 0, res.P1White)
		totalPlies += res.Plies
	}
	assert.Equal(t, totalPlies, report.Players[0].Moves+report.Players[1].Moves)
	assert.InDelta(t, float64(totalPlies)/6, report.Plies, 1e-9)
}

func TestRunIsReproducibleWithSeeds(t *testing.T) {
	cfg := Config{
		Games:    3,
		Player1:  core.PlayerConfig{Type: core.PlayerRandom, Seed: 1},
		Player2:  core.PlayerConfig{Type: core.PlayerRandom, Seed: 2},
		Parallel: 2,
	}
	a, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	for i := range a.Results {
		assert.Equal(t, a.Results[i].Plies, b.Results[i].Plies)
		assert.Equal(t, a.Results[i].Result, b.Results[i].Result)
	}
}

func TestMinimaxDepthIsReported(t *testing.T) {
	cfg := Config{
		Games:   1,
		Player1: core.PlayerConfig{Type: core.PlayerMinimax, Depth: 1},
		Player2: core.PlayerConfig{Type: core.PlayerRandom, Seed: 5},
	}
	report, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, "minimax(1)", report.Players[0].Name)
	assert.InDelta(t, 1.0, report.Players[0].Depth, 1e-9)
	assert.Zero(t, report.Players[1].Depth)
	assert.Positive(t, report.Players[0].Nodes)
}

func TestRunValidation(t *testing.T) {
	_, err := Run(context.Background(), Config{Games: 0, Player1: core.PlayerConfig{Type: core.PlayerRandom}, Player2: core.PlayerConfig{Type: core.PlayerRandom}}, nil)
	assert.Error(t, err)

	_, err = Run(context.Background(), Config{Games: 1, Player1: core.PlayerConfig{Type: core.PlayerHuman}, Player2: core.PlayerConfig{Type: core.PlayerRandom}}, nil)
	assert.ErrorIs(t, err, ErrHumanPlayer)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{
		Games:   100,
		Player1: core.PlayerConfig{Type: core.PlayerRandom},
		Player2: core.PlayerConfig{Type: core.PlayerRandom},
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReportWrite(t *testing.T) {
	report, err := Run(context.Background(), Config{
		Games:   2,
		Player1: core.PlayerConfig{Type: core.PlayerGreedy, Seed: 3},
		Player2: core.PlayerConfig{Type: core.PlayerRandom, Seed: 4},
	}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf))
	out := buf.String()
	assert.Contains(t, out, "Games: 2")
	assert.Contains(t, out, "Avg Depth")
	assert.Contains(t, out, "greedy")
	assert.Contains(t, out, "random")
}
