package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/state"
)

var (
	ErrNoMoves     = errors.New("no legal moves")
	ErrHumanPlayer = errors.New("human players do not compute moves")
)

type SearchResult struct {
	BestMove board.Move
	Score    int
	Depth    int
	Nodes    int
	Duration time.Duration
}

// Player chooses moves for one side. Human players return ErrHumanPlayer; their moves
// arrive through the game manager instead.
type Player interface {
	Name() string
	IsHuman() bool
	ChooseMove(ctx context.Context, s state.State) (*SearchResult, error)
}

type Human struct{}

func (Human) Name() string {
	return "human"
}

func (Human) IsHuman() bool {
	return true
}

func (Human) ChooseMove(context.Context, state.State) (*SearchResult, error) {
	return nil, ErrHumanPlayer
}

// New builds the strategy described by a player configuration; nil means human
func New(p *core.Player) Player {
	if p == nil {
		return Human{}
	}
	switch p.Type {
	case core.PlayerMinimax:
		return NewMinimax(p.Depth, !p.NoPruning)
	case core.PlayerRandom:
		return NewRandom(p.Seed)
	case core.PlayerGreedy:
		return NewGreedy(p.Seed)
	default:
		return Human{}
	}
}

func seedOrNow(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}
