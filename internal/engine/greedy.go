package engine

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/state"
)

// One-ply move weights
const (
	weightSkip       = 25
	weightSkipOnNext = 20
	weightPromotion  = 30
	safeSafe         = 5
	safeUnsafe       = -40
	unsafeSafe       = 40
	unsafeUnsafe     = -40
	pieceSafe        = 3
	pieceUnsafe      = -5
	kingFactor       = 2
)

// Greedy scores each legal move one ply ahead. Captures, longer capture chains, promotions
// and moves that keep pieces out of reach score higher. Ties are broken at random.
type Greedy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGreedy(seed int64) *Greedy {
	return &Greedy{rng: rand.New(rand.NewSource(seedOrNow(seed)))}
}

func (g *Greedy) Name() string {
	return "greedy"
}

func (g *Greedy) IsHuman() bool {
	return false
}

func (g *Greedy) ChooseMove(ctx context.Context, s state.State) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	moves := s.LegalMoves()
	if len(moves) == 0 || s.IsOver() {
		return nil, ErrNoMoves
	}

	bestWeight := math.Inf(-1)
	var best []board.Move
	for _, m := range moves {
		w := MoveWeight(s, m)
		switch {
		case w > bestWeight:
			bestWeight = w
			best = []board.Move{m}
		case w == bestWeight:
			best = append(best, m)
		}
	}

	g.mu.Lock()
	choice := best[g.rng.Intn(len(best))]
	g.mu.Unlock()

	return &SearchResult{
		BestMove: choice,
		Score:    int(math.Round(bestWeight)),
		Depth:    1,
		Nodes:    len(moves),
		Duration: time.Since(start),
	}, nil
}

// MoveWeight scores a legal move for the side to move in s
func MoveWeight(s state.State, m board.Move) float64 {
	v := s.Rules().Variant
	me := s.Turn()
	before := s.Board()
	w := 0.0

	if m.IsSkip() {
		w += weightSkip
	}

	next := s.Successor(m)
	after := next.Board()
	moved := after.Get(m.End)

	safeBefore := before.IsSafe(m.Start, v)
	safeAfter := true
	if next.Turn() == me {
		d := float64(skipDepth(next, me))
		w += weightSkip * d * d
	} else {
		safeAfter = after.IsSafe(m.End, v)
		if len(after.PieceSkips(m.End, v)) > 0 {
			w += weightSkipOnNext
		}
	}

	switch {
	case safeBefore && safeAfter:
		w += safeSafe
	case !safeBefore && safeAfter:
		w += unsafeSafe
	case safeBefore && !safeAfter:
		w += safeUnsafe * kingWeight(moved)
	default:
		w += unsafeUnsafe
	}

	if !before.Get(m.Start).IsKing() && moved.IsKing() {
		w += weightPromotion
	}

	return w + safetyWeight(after, me, v)
}

// skipDepth returns the longest capture chain the side still on move can complete
func skipDepth(s state.State, me core.Color) int {
	if s.Turn() != me || s.JumpFrom() < 0 {
		return 0
	}
	depth := 0
	for _, m := range s.LegalMoves() {
		if d := skipDepth(s.Successor(m), me); d > depth {
			depth = d
		}
	}
	return depth + 1
}

// safetyWeight rewards pieces of c that cannot be captured next move
func safetyWeight(b board.Board, c core.Color, v board.Variant) float64 {
	w := 0.0
	for _, i := range b.Pieces(c) {
		if b.IsSafe(i, v) {
			w += pieceSafe
		} else {
			w += pieceUnsafe * kingWeight(b.Get(i))
		}
	}
	return w
}

func kingWeight(p board.Piece) float64 {
	if p.IsKing() {
		return kingFactor
	}
	return 1
}

var _ Player = (*Greedy)(nil)
