// Package sim plays series of games between two computer players and reports statistics.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"checkers/internal/core"
	"checkers/internal/engine"
	"checkers/internal/game"
	"checkers/internal/state"
)

var ErrHumanPlayer = errors.New("simulations need two computer players")

type Config struct {
	Games int
	// Player 1 plays white unless SwapColors alternates sides between games
	Player1, Player2 core.PlayerConfig
	Rules            state.Rules
	SwapColors       bool
	Parallel         int
	MoveTimeout      time.Duration
}

// GameResult is the outcome of one simulated game
type GameResult struct {
	Index    int
	Result   core.Result
	Winner   int // 1 or 2, 0 for a draw
	Plies    int
	P1White  bool
	Duration time.Duration

	samples [3][]moveSample
}

type moveSample struct {
	duration time.Duration
	depth    int
	nodes    int
}

func (c Config) validate() error {
	if c.Games < 1 {
		return fmt.Errorf("games must be positive, got %d", c.Games)
	}
	if c.Player1.Type == core.PlayerHuman || c.Player2.Type == core.PlayerHuman {
		return ErrHumanPlayer
	}
	return nil
}

// Run plays cfg.Games games, cfg.Parallel at a time. progress, when set, is called
// after each game from the goroutine that played it.
func Run(ctx context.Context, cfg Config, progress func(GameResult)) (*Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.Rules == (state.Rules{}) {
		cfg.Rules = state.DefaultRules()
	}

	start := time.Now()
	results := make([]GameResult, cfg.Games)
	errs := make([]error, cfg.Games)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Parallel; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = playGame(ctx, cfg, i)
				if errs[i] == nil && progress != nil {
					progress(results[i])
				}
			}
		}()
	}

feed:
	for i := 0; i < cfg.Games; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}
	}
	return newReport(cfg, results, time.Since(start)), nil
}

// seeded varies the seed per game so seeded random players do not replay the same game
func seeded(cfg core.PlayerConfig, index int) core.PlayerConfig {
	if cfg.Seed != 0 {
		cfg.Seed += int64(index)
	}
	return cfg
}

func playGame(ctx context.Context, cfg Config, index int) (GameResult, error) {
	res := GameResult{Index: index + 1, P1White: !cfg.SwapColors || index%2 == 0}

	p1 := seeded(cfg.Player1, 2*index)
	p2 := seeded(cfg.Player2, 2*index+1)
	white, black := p1, p2
	if !res.P1White {
		white, black = p2, p1
	}

	g := game.New(state.New(cfg.Rules),
		core.NewPlayer(white, core.ColorWhite),
		core.NewPlayer(black, core.ColorBlack))
	if err := g.Start(); err != nil {
		return res, err
	}

	start := time.Now()
	for g.Status() != core.StatusOver {
		mover := g.State().Turn()
		moveCtx, cancel := moveContext(ctx, cfg.MoveTimeout)
		sr, err := g.Advance(moveCtx)
		cancel()
		if err != nil {
			return res, err
		}
		side := res.side(mover)
		res.samples[side] = append(res.samples[side], moveSample{duration: sr.Duration, depth: sr.Depth, nodes: sr.Nodes})
	}

	res.Duration = time.Since(start)
	res.Plies = g.MoveCount()
	res.Result = g.Result()
	if w := res.Result.Winner(); w != core.ColorNone {
		res.Winner = res.side(w)
	}
	return res, nil
}

func moveContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// side maps a color onto player 1 or 2 for this game
func (r GameResult) side(c core.Color) int {
	if (c == core.ColorWhite) == r.P1White {
		return 1
	}
	return 2
}

// Name describes a player configuration for reports
func Name(cfg core.PlayerConfig) string {
	p := engine.New(core.NewPlayer(cfg, core.ColorWhite))
	return p.Name()
}
