package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"checkers/internal/core"
	"checkers/internal/state"
)

const (
	// WinScore is the score of a won position; wins found at a lower ply score higher
	WinScore = 100000
	// PieceScore scales the material balance at leaf nodes
	PieceScore = 100

	infinity       = 1 << 30
	cancelInterval = 1024
)

// Minimax runs a fixed-depth search with optional alpha-beta pruning. Both modes select
// the same move; ties go to the first move in generation order.
type Minimax struct {
	Depth   int
	Pruning bool
}

func NewMinimax(depth int, pruning bool) *Minimax {
	if depth < 1 {
		depth = core.DefaultDepth
	}
	if depth > core.MaxDepth {
		depth = core.MaxDepth
	}
	return &Minimax{Depth: depth, Pruning: pruning}
}

func (m *Minimax) Name() string {
	if m.Pruning {
		return fmt.Sprintf("minimax(%d)", m.Depth)
	}
	return fmt.Sprintf("minimax(%d,no-pruning)", m.Depth)
}

func (m *Minimax) IsHuman() bool {
	return false
}

func (m *Minimax) ChooseMove(ctx context.Context, s state.State) (*SearchResult, error) {
	return m.Search(ctx, s, nil)
}

type searcher struct {
	ctx     context.Context
	root    core.Color
	pruning bool
	nodes   int
	trace   *Trace
}

// Search selects a move for the side to move. When trace is non-nil the explored tree is
// recorded into it.
func (m *Minimax) Search(ctx context.Context, s state.State, trace *Trace) (*SearchResult, error) {
	start := time.Now()
	moves := s.LegalMoves()
	if len(moves) == 0 || s.IsOver() {
		return nil, ErrNoMoves
	}

	sr := &searcher{ctx: ctx, root: s.Turn(), pruning: m.Pruning, trace: trace}
	rootID := trace.root(s)

	best := -infinity
	bestMove := moves[0]
	for _, mv := range moves {
		alpha := -infinity
		if sr.pruning {
			alpha = best
		}
		nodeID := trace.reserve()
		score, err := sr.search(s.Successor(mv), m.Depth-1, 1, alpha, infinity, nodeID)
		if err != nil {
			return nil, errors.WithMessage(err, "search cancelled")
		}
		trace.node(rootID, nodeID, mv, score)
		if score > best {
			best = score
			bestMove = mv
		}
	}

	return &SearchResult{
		BestMove: bestMove,
		Score:    best,
		Depth:    m.Depth,
		Nodes:    sr.nodes,
		Duration: time.Since(start),
	}, nil
}

// search returns the score of s from the root player's point of view. The maximizing side
// is decided by whose turn it is, since a multi-jump gives one side consecutive plies.
func (sr *searcher) search(s state.State, depth, ply, alpha, beta int, id string) (int, error) {
	sr.nodes++
	if sr.nodes%cancelInterval == 0 {
		if err := sr.ctx.Err(); err != nil {
			return 0, err
		}
	}

	switch result := s.Result(); result {
	case core.ResultUnknown:
	case core.ResultDraw:
		return 0, nil
	default:
		if result.Winner() == sr.root {
			return WinScore - ply, nil
		}
		return -WinScore + ply, nil
	}

	if depth <= 0 {
		return Evaluate(s, sr.root), nil
	}

	maximizing := s.Turn() == sr.root
	best := infinity
	if maximizing {
		best = -infinity
	}

	for _, mv := range s.LegalMoves() {
		childID := sr.trace.reserve()
		score, err := sr.search(s.Successor(mv), depth-1, ply+1, alpha, beta, childID)
		if err != nil {
			return 0, err
		}
		sr.trace.node(id, childID, mv, score)

		if maximizing {
			if score > best {
				best = score
			}
			if sr.pruning && best > alpha {
				alpha = best
			}
		} else {
			if score < best {
				best = score
			}
			if sr.pruning && best < beta {
				beta = best
			}
		}
		if sr.pruning && alpha >= beta {
			break
		}
	}
	return best, nil
}

// Evaluate is the leaf evaluation used by the search, from c's point of view
func Evaluate(s state.State, c core.Color) int {
	return PieceScore * s.Evaluate(c)
}

var _ Player = (*Minimax)(nil)
