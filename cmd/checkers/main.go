// Command checkers plays checkers in the terminal against other humans or computer players.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chzyer/readline"

	"checkers/internal/cli"
	"checkers/internal/config"
)

func main() {
	var (
		theme         = flag.String("color", "", "Board theme (off, brown, green, gray); default depends on the terminal")
		searchTimeout = flag.Duration("search-timeout", 0, "Maximum time for one computer move (default 30s)")
		logLevel      = flag.String("log-level", "warn", "Log level")
		historyFile   = flag.String("history", ".checkers_history", "Readline history file, empty to disable")
	)
	flag.Parse()

	if err := config.ConfigureLogger(*logLevel, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	view := cli.New(os.Stdout, cli.DefaultTheme(os.Stdout))
	if *theme != "" {
		if err := view.SetTheme(cli.ColorTheme(*theme)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     *historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	handler := cli.NewHandler(view, *searchTimeout)
	view.ShowWelcome()
	if err := handler.Run(ctx, rl); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
