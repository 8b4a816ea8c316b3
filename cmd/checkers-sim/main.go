// Command checkers-sim pits computer players against each other and exports search trees.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"checkers/internal/board"
	playercli "checkers/internal/cli"
	"checkers/internal/client"
	"checkers/internal/config"
	"checkers/internal/core"
	"checkers/internal/engine"
	"checkers/internal/sim"
	"checkers/internal/state"
)

func main() {
	app := &cli.App{
		Name:  "checkers-sim",
		Usage: "Simulate checkers games between computer players",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log level", EnvVars: []string{"CHECKERS_LOG_LEVEL"}},
		},
		Before: func(cCtx *cli.Context) error {
			return config.ConfigureLogger(cCtx.String("log-level"), os.Stderr)
		},
		Commands: []*cli.Command{runCommand(), traceCommand(), remoteCommand()},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("checkers-sim failed")
		os.Exit(1)
	}
}

func rulesFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "variant", Value: board.VariantStandard.String(), Usage: "rules variant: standard or italian"},
		&cli.IntFlag{Name: "draw-plies", Value: state.DefaultDrawPlies, Usage: "plies without capture before a draw"},
	}
}

func rules(cCtx *cli.Context) (state.Rules, error) {
	v, err := board.ParseVariant(cCtx.String("variant"))
	if err != nil {
		return state.Rules{}, err
	}
	if cCtx.Int("draw-plies") < 1 {
		return state.Rules{}, fmt.Errorf("draw-plies must be positive")
	}
	return state.Rules{Variant: v, DrawPlies: cCtx.Int("draw-plies")}, nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "play a series of games and print the final report",
		Flags: append([]cli.Flag{
			&cli.IntFlag{Name: "games", Aliases: []string{"n"}, Value: 10, Usage: "number of games"},
			&cli.StringFlag{Name: "p1", Value: "minimax:4", Usage: "player 1: minimax[:depth], random[:seed] or greedy[:seed]"},
			&cli.StringFlag{Name: "p2", Value: "random", Usage: "player 2"},
			&cli.BoolFlag{Name: "swap", Usage: "alternate colors between games"},
			&cli.IntFlag{Name: "parallel", Aliases: []string{"j"}, Value: 1, Usage: "games played concurrently"},
			&cli.DurationFlag{Name: "move-timeout", Usage: "maximum time per move, 0 for none"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only print the final report"},
		}, rulesFlags()...),
		Action: func(cCtx *cli.Context) error {
			p1, err := playercli.ParsePlayer(cCtx.String("p1"))
			if err != nil {
				return fmt.Errorf("p1: %w", err)
			}
			p2, err := playercli.ParsePlayer(cCtx.String("p2"))
			if err != nil {
				return fmt.Errorf("p2: %w", err)
			}
			r, err := rules(cCtx)
			if err != nil {
				return err
			}

			cfg := sim.Config{
				Games:       cCtx.Int("games"),
				Player1:     p1,
				Player2:     p2,
				Rules:       r,
				SwapColors:  cCtx.Bool("swap"),
				Parallel:    cCtx.Int("parallel"),
				MoveTimeout: cCtx.Duration("move-timeout"),
			}

			ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Str("p1", sim.Name(p1)).Str("p2", sim.Name(p2)).Int("games", cfg.Games).
				Str("variant", r.Variant.String()).Msg("simulation started")

			var progress func(sim.GameResult)
			if !cCtx.Bool("quiet") {
				progress = func(res sim.GameResult) {
					log.Info().Int("game", res.Index).Str("result", res.Result.String()).
						Int("winner", res.Winner).Int("plies", res.Plies).Dur("took", res.Duration).Msg("game finished")
				}
			}

			report, err := sim.Run(ctx, cfg, progress)
			if err != nil {
				return err
			}
			return report.Write(cCtx.App.Writer)
		},
	}
}

func traceCommand() *cli.Command {
	return &cli.Command{
		Name:  "trace",
		Usage: "run one minimax search and write its tree in Graphviz DOT format",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "state", Value: state.Starting, Usage: "serialized position"},
			&cli.IntFlag{Name: "depth", Value: 3, Usage: "search depth"},
			&cli.BoolFlag{Name: "no-pruning", Usage: "disable alpha-beta pruning"},
			&cli.IntFlag{Name: "max-nodes", Value: 2000, Usage: "maximum nodes recorded, 0 for all"},
			&cli.PathFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, stdout when empty"},
		},
		Action: func(cCtx *cli.Context) error {
			s, err := state.Parse(cCtx.String("state"))
			if err != nil {
				return err
			}
			depth := cCtx.Int("depth")
			if depth < 1 || depth > core.MaxDepth {
				return fmt.Errorf("depth must be between 1 and %d", core.MaxDepth)
			}

			trace := engine.NewTrace(cCtx.Int("max-nodes"))
			res, err := engine.NewMinimax(depth, !cCtx.Bool("no-pruning")).Search(cCtx.Context, s, trace)
			if err != nil {
				return err
			}
			log.Info().Str("move", res.BestMove.String()).Int("score", res.Score).
				Int("nodes", res.Nodes).Int("recorded", trace.Len()).Msg("search finished")

			out := cCtx.App.Writer
			if path := cCtx.Path("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			_, err = fmt.Fprintln(out, trace.String())
			return err
		},
	}
}

func remoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "play one computer game on a running checkers-server",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "server", Value: "http://localhost:8080", Usage: "server base URL", EnvVars: []string{"CHECKERS_SERVER"}},
			&cli.StringFlag{Name: "white", Value: "minimax:3", Usage: "white player"},
			&cli.StringFlag{Name: "black", Value: "greedy", Usage: "black player"},
			&cli.BoolFlag{Name: "keep", Usage: "do not delete the game when it ends"},
		}, rulesFlags()...),
		Action: func(cCtx *cli.Context) error {
			white, err := playercli.ParsePlayer(cCtx.String("white"))
			if err != nil {
				return fmt.Errorf("white: %w", err)
			}
			black, err := playercli.ParsePlayer(cCtx.String("black"))
			if err != nil {
				return fmt.Errorf("black: %w", err)
			}
			if white.Type == core.PlayerHuman || black.Type == core.PlayerHuman {
				return sim.ErrHumanPlayer
			}
			r, err := rules(cCtx)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := client.New(cCtx.String("server"))
			if _, err := c.Health(ctx); err != nil {
				return fmt.Errorf("server unavailable: %w", err)
			}

			drawPlies := r.DrawPlies
			g, err := c.CreateGame(ctx, core.CreateGameRequest{
				White:     white,
				Black:     black,
				Variant:   r.Variant.String(),
				DrawPlies: &drawPlies,
			})
			if err != nil {
				return err
			}
			log.Info().Str("game", g.GameID).Str("white", sim.Name(white)).Str("black", sim.Name(black)).Msg("remote game created")
			if !cCtx.Bool("keep") {
				defer func() {
					if err := c.DeleteGame(context.Background(), g.GameID); err != nil {
						log.Warn().Err(err).Str("game", g.GameID).Msg("failed to delete game")
					}
				}()
			}

			for g.Status != core.StatusOver.String() {
				if g, err = c.PlayComputerMove(ctx, g.GameID); err != nil {
					return err
				}
				if m := g.LastMove; m != nil {
					log.Debug().Str("move", m.Move).Str("color", m.PlayerColor).Int("score", m.Score).Msg("move played")
				}
			}

			_, err = fmt.Fprintf(cCtx.App.Writer, "%s after %d plies\nMoves: %s\nFinal state: %s\n",
				g.Result, len(g.Moves), strings.Join(g.Moves, " "), g.State)
			return err
		},
	}
}
