package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/game"
	"checkers/internal/state"
)

const defaultSearchTimeout = 30 * time.Second

// Handler owns the local game and turns input lines into manager operations
type Handler struct {
	view          *CLI
	game          *game.Manager
	white, black  core.PlayerConfig
	searchTimeout time.Duration
}

func NewHandler(view *CLI, searchTimeout time.Duration) *Handler {
	if searchTimeout <= 0 {
		searchTimeout = defaultSearchTimeout
	}
	return &Handler{
		view:          view,
		white:         core.PlayerConfig{Type: core.PlayerHuman},
		black:         core.PlayerConfig{Type: core.PlayerMinimax, Depth: core.DefaultDepth},
		searchTimeout: searchTimeout,
	}
}

// Game returns the current game, nil before the first 'new' or 'resume'
func (h *Handler) Game() *game.Manager {
	return h.game
}

// Run reads lines until quit or end of input
func (h *Handler) Run(ctx context.Context, rl *readline.Instance) error {
	for {
		rl.SetPrompt(h.Prompt())
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		if !h.Execute(ctx, line) {
			return nil
		}
	}
}

// Prompt shows whose turn it is once a game is running
func (h *Handler) Prompt() string {
	if h.game == nil {
		return "> "
	}
	v := h.game.View()
	switch v.Status {
	case core.StatusPlayer1ToMove, core.StatusPlayer2ToMove:
		turn := v.Current.State.Turn()
		prompt := fmt.Sprintf("[%s]> ", h.view.Highlight(turn.Name()))
		if !h.game.NextPlayer().IsHuman() {
			prompt = "ENTER to execute computer move\n" + prompt
		}
		return prompt
	case core.StatusPaused:
		return "[paused]> "
	case core.StatusOver:
		return "[over]> "
	default:
		return "> "
	}
}

// Execute handles one input line and reports whether the session continues
func (h *Handler) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		h.computerMove(ctx)
		return true
	}

	cmd, args := parts[0], parts[1:]
	switch cmd {
	case "quit", "exit":
		return false
	case "help", "?":
		h.view.ShowHelp()
	case "new":
		h.handleNew(args)
	case "resume":
		h.handleResume(args)
	case "auto":
		h.handleAuto(ctx)
	case "undo":
		h.handleUndo(args)
	case "redo":
		h.withGame(func(g *game.Manager) error { return g.Redo() })
	case "pause":
		h.withGame(func(g *game.Manager) error { return g.Pause() })
	case "resume-play":
		h.withGame(func(g *game.Manager) error { return g.Resume() })
	case "reset":
		h.withGame(func(g *game.Manager) error {
			if err := g.Reset(); err != nil {
				return err
			}
			h.view.ShowMessage("Game reset to its starting position")
			return g.Start()
		})
	case "moves":
		h.handleMoves(args)
	case "history":
		if h.requireGame() {
			h.view.ShowGameHistory(h.game)
		}
	case "state":
		if h.requireGame() {
			h.view.ShowMessage(h.game.State().String())
		}
	case "color":
		h.handleColor(args)
	case "verbose":
		if h.view.ToggleVerbose() {
			h.view.ShowMessage("Verbose mode on")
		} else {
			h.view.ShowMessage("Verbose mode off")
		}
	default:
		h.handleMove(cmd)
	}
	return true
}

func (h *Handler) requireGame() bool {
	if h.game == nil {
		h.view.ShowMessage("No active game. Use 'new' or 'resume <state>'.")
		return false
	}
	return true
}

func (h *Handler) handleNew(args []string) {
	if len(args) > 2 {
		h.view.ShowMessage("Usage: new [white] [black]")
		return
	}
	configs := []*core.PlayerConfig{&h.white, &h.black}
	parsed := make([]core.PlayerConfig, len(args))
	for i, arg := range args {
		cfg, err := ParsePlayer(arg)
		if err != nil {
			h.view.ShowError(err)
			return
		}
		parsed[i] = cfg
	}
	for i, cfg := range parsed {
		*configs[i] = cfg
	}
	h.start(state.New(state.DefaultRules()))
}

func (h *Handler) handleResume(args []string) {
	if len(args) == 0 {
		h.view.ShowMessage("Usage: resume <state>")
		return
	}
	s, err := state.Parse(strings.Join(args, " "))
	if err != nil {
		h.view.ShowError(err)
		return
	}
	h.start(s)
}

func (h *Handler) start(initial state.State) {
	white := core.NewPlayer(h.white, core.ColorWhite)
	black := core.NewPlayer(h.black, core.ColorBlack)
	g := game.New(initial, white, black)
	if err := g.Start(); err != nil {
		h.view.ShowError(err)
		return
	}
	h.game = g

	h.view.ShowMessage(fmt.Sprintf("New game: white %s, black %s", describePlayer(white), describePlayer(black)))
	h.showPosition()
}

func (h *Handler) handleMove(input string) {
	if !h.requireGame() {
		return
	}
	m, err := board.ParseMove(input)
	if err != nil {
		h.view.ShowMessage(fmt.Sprintf("Unknown command or move %q. Type 'help' for commands.", input))
		return
	}

	mover := h.game.State().Turn()
	if err := h.game.SubmitMove(m); err != nil {
		if errors.Is(err, game.ErrNotHumanTurn) {
			h.view.ShowMessage("It's not a human player's turn. Press ENTER to execute computer move.")
			return
		}
		h.view.ShowError(fmt.Errorf("invalid move: %w", err))
		return
	}
	h.view.ShowHumanMove(mover, m)
	h.showPosition()
}

// computerMove plays one computer move; an empty line on a human turn is ignored
func (h *Handler) computerMove(ctx context.Context) bool {
	if h.game == nil || h.game.NextPlayer().IsHuman() || h.game.Status() == core.StatusOver {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, h.searchTimeout)
	defer cancel()

	mover := h.game.State().Turn()
	res, err := h.game.Advance(ctx)
	if err != nil {
		h.view.ShowError(err)
		return false
	}
	h.view.ShowComputerMove(mover, res)
	h.showPosition()
	return true
}

func (h *Handler) handleAuto(ctx context.Context) {
	if !h.requireGame() {
		return
	}
	for ctx.Err() == nil && h.computerMove(ctx) {
	}
}

func (h *Handler) handleUndo(args []string) {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			h.view.ShowMessage("Usage: undo [count]")
			return
		}
		count = n
	}
	h.withGame(func(g *game.Manager) error { return g.Undo(count) })
}

func (h *Handler) withGame(fn func(g *game.Manager) error) {
	if !h.requireGame() {
		return
	}
	if err := fn(h.game); err != nil {
		h.view.ShowError(err)
		return
	}
	h.showPosition()
}

func (h *Handler) handleMoves(args []string) {
	if !h.requireGame() {
		return
	}
	s := h.game.State()
	moves := s.LegalMoves()
	if len(args) > 0 {
		square, err := strconv.Atoi(args[0])
		if err != nil || !board.IsValidIndex(square) {
			h.view.ShowMessage("Usage: moves [square 0-31]")
			return
		}
		moves = s.MovesFrom(square)
	}

	if len(moves) == 0 {
		h.view.ShowMessage("No legal moves")
		return
	}
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = m.String()
	}
	h.view.ShowMessage(strings.Join(names, " "))
}

func (h *Handler) handleColor(args []string) {
	if len(args) != 1 {
		h.view.ShowMessage(fmt.Sprintf("Usage: color <off|brown|green|gray> (current: %s)", h.view.Theme()))
		return
	}
	if err := h.view.SetTheme(ColorTheme(args[0])); err != nil {
		h.view.ShowError(err)
		return
	}
	if h.game != nil {
		h.view.DisplayBoard(h.game.State().Board())
	}
}

func (h *Handler) showPosition() {
	v := h.game.View()
	h.view.DisplayBoard(v.Current.State.Board())

	switch v.Status {
	case core.StatusOver:
		h.view.ShowGameOver(v.Current.State.Result())
	case core.StatusPaused:
		h.view.ShowMessage("Game paused. Use 'resume-play' to continue.")
	default:
		if s := v.Current.State; s.JumpFrom() >= 0 {
			h.view.ShowMessage(fmt.Sprintf("%s must continue jumping from %d", s.Turn().Name(), s.JumpFrom()))
		}
	}
}

// ParsePlayer reads human, minimax[:depth], random[:seed] or greedy[:seed]
func ParsePlayer(s string) (core.PlayerConfig, error) {
	name, arg, hasArg := strings.Cut(s, ":")
	t, err := core.ParsePlayerType(name)
	if err != nil {
		return core.PlayerConfig{}, err
	}
	cfg := core.PlayerConfig{Type: t}
	if !hasArg {
		if t == core.PlayerMinimax {
			cfg.Depth = core.DefaultDepth
		}
		return cfg, nil
	}

	n, err := strconv.Atoi(arg)
	if err != nil {
		return core.PlayerConfig{}, fmt.Errorf("invalid player argument %q: %w", arg, err)
	}
	switch t {
	case core.PlayerMinimax:
		if n < 1 || n > core.MaxDepth {
			return core.PlayerConfig{}, fmt.Errorf("depth must be between 1 and %d", core.MaxDepth)
		}
		cfg.Depth = n
	case core.PlayerRandom, core.PlayerGreedy:
		cfg.Seed = int64(n)
	default:
		return core.PlayerConfig{}, fmt.Errorf("%s takes no argument", t)
	}
	return cfg, nil
}

func describePlayer(p *core.Player) string {
	if p.Type == core.PlayerMinimax {
		return fmt.Sprintf("minimax(depth %d)", p.Depth)
	}
	return p.Type.String()
}
