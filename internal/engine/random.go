package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"checkers/internal/state"
)

// Random picks uniformly among the legal moves
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom seeds the generator; 0 seeds from the clock
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seedOrNow(seed)))}
}

func (r *Random) Name() string {
	return "random"
}

func (r *Random) IsHuman() bool {
	return false
}

func (r *Random) ChooseMove(ctx context.Context, s state.State) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	moves := s.LegalMoves()
	if len(moves) == 0 || s.IsOver() {
		return nil, ErrNoMoves
	}

	r.mu.Lock()
	m := moves[r.rng.Intn(len(moves))]
	r.mu.Unlock()

	return &SearchResult{BestMove: m, Nodes: len(moves), Duration: time.Since(start)}, nil
}

var _ Player = (*Random)(nil)
