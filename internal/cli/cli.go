package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"checkers/internal/board"
	"checkers/internal/core"
	"checkers/internal/engine"
	"checkers/internal/game"
)

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	white   string
	black   string
	accent  string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m",
		darkBg:  "\033[48;5;94m",
		white:   "\033[1;97m",
		black:   "\033[1;30m",
		accent:  "\033[33m",
		reset:   "\033[0m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m",
		darkBg:  "\033[48;5;22m",
		white:   "\033[1;97m",
		black:   "\033[1;30m",
		accent:  "\033[36m",
		reset:   "\033[0m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m",
		darkBg:  "\033[48;5;240m",
		white:   "\033[1;97m",
		black:   "\033[1;30m",
		accent:  "\033[35m",
		reset:   "\033[0m",
	},
}

// DefaultTheme picks the brown theme on a terminal and no color otherwise
func DefaultTheme(f *os.File) ColorTheme {
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return ThemeBrown
	}
	return ThemeOff
}

// CLI renders boards and messages to a writer
type CLI struct {
	output  io.Writer
	theme   ColorTheme
	verbose bool
}

func New(output io.Writer, theme ColorTheme) *CLI {
	if _, ok := themes[theme]; !ok {
		theme = ThemeOff
	}
	return &CLI{output: output, theme: theme}
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) Theme() ColorTheme {
	return c.theme
}

func (c *CLI) ToggleVerbose() bool {
	c.verbose = !c.verbose
	return c.verbose
}

func (c *CLI) IsVerbose() bool {
	return c.verbose
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	fmt.Fprintf(c.output, "Error: %v\n", err)
}

// Highlight wraps text in the theme's accent color
func (c *CLI) Highlight(text string) string {
	t := themes[c.theme]
	return t.accent + text + t.reset
}

// DisplayBoard draws the board with row 0 on top and the square range of each row on the right
func (c *CLI) DisplayBoard(b board.Board) {
	t := themes[c.theme]
	var sb strings.Builder

	sb.WriteString("\n   0 1 2 3 4 5 6 7\n")
	for y := 0; y < 8; y++ {
		sb.WriteString(fmt.Sprintf("%d  ", y))
		for x := 0; x < 8; x++ {
			playable := board.IsValidPoint(x, y)

			if c.theme == ThemeOff {
				if !playable {
					sb.WriteString("  ")
				} else {
					sb.WriteString(fmt.Sprintf("%c ", b.GetAt(x, y).Rune()))
				}
				continue
			}

			bg := t.lightBg
			if playable {
				bg = t.darkBg
			}
			p := b.GetAt(x, y)
			switch {
			case !playable || p == board.Empty:
				sb.WriteString(bg + "  " + t.reset)
			default:
				fg := t.black
				if p.Color() == core.ColorWhite {
					fg = t.white
				}
				sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, fg, p.Rune(), t.reset))
			}
		}
		sb.WriteString(fmt.Sprintf(" %2d-%2d\n", y*4, y*4+3))
	}
	sb.WriteString("   0 1 2 3 4 5 6 7\n")

	c.ShowMessage(sb.String())
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  new [white] [black]  - Start a new game; players are human, minimax[:depth], random or greedy
  resume <state>       - Start from a serialized position
  <move>               - Make a move (e.g. 9-13, 9x18)
  ENTER                - Execute the computer move when it is a computer's turn
  auto                 - Play computer moves until a human is to move or the game ends
  undo [count]         - Undo last move(s), default 1
  redo                 - Replay the last undone move
  pause                - Pause the game
  resume-play          - Resume a paused game
  reset                - Restart from the game's starting position
  moves [square]       - List legal moves, optionally from one square
  history              - Show played moves
  state                - Print the serialized position
  color <theme>        - Set board color theme (off|brown|green|gray)
  verbose              - Toggle detailed move information
  quit/exit            - Exit the program
  help/?               - Show this help message`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage("Welcome to Checkers!")
	c.ShowMessage("Commands: new, resume <state>, <move>, undo, redo, moves, history, help/?, quit")
	c.ShowMessage("Squares are numbered 0-31 row by row; white starts on 0-11 and moves first.")
	c.ShowMessage("Press ENTER to execute computer moves when it's a computer's turn.")
	c.ShowMessage("")
}

func (c *CLI) ShowGameHistory(g *game.Manager) {
	c.ShowMessage(fmt.Sprintf("Starting state: %s", g.InitialState()))

	moves := g.Moves()
	for i := 0; i < len(moves); i += 2 {
		if i+1 < len(moves) {
			c.ShowMessage(fmt.Sprintf("%d. %s | %s", i/2+1, moves[i], moves[i+1]))
		} else {
			c.ShowMessage(fmt.Sprintf("%d. %s | ...", i/2+1, moves[i]))
		}
	}
	if n := g.RedoCount(); n > 0 {
		c.ShowMessage(fmt.Sprintf("(%d undone move(s) available to redo)", n))
	}
	c.ShowMessage(fmt.Sprintf("Current state: %s", g.State()))
	c.ShowMessage(fmt.Sprintf("Game status: %s", g.Status()))
}

func (c *CLI) ShowComputerMove(mover core.Color, res *engine.SearchResult) {
	if c.verbose {
		c.ShowMessage(fmt.Sprintf("Computer (%s): %s (depth=%d, score=%d, nodes=%d, %s)",
			mover.Name(), res.BestMove, res.Depth, res.Score, res.Nodes, res.Duration.Round(time.Millisecond)))
		return
	}
	c.ShowMessage(fmt.Sprintf("Computer (%s): %s", mover.Name(), res.BestMove))
}

func (c *CLI) ShowHumanMove(mover core.Color, m board.Move) {
	if c.verbose {
		c.ShowMessage(fmt.Sprintf("%s plays %s", mover.Name(), m))
	}
}

func (c *CLI) ShowGameOver(result core.Result) {
	c.ShowMessage(fmt.Sprintf("Game Over: %s", result))
	c.ShowMessage("Start a new game with 'new' or 'resume', or step back with 'undo'.")
}
