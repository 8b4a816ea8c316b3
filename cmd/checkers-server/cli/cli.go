// Package cli implements the database administration subcommands of checkers-server.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
	"golang.org/x/term"

	"checkers/internal/core"
	"checkers/internal/storage"
)

const (
	minPasswordLength = 8
	flushTimeout      = 5 * time.Second
)

// readPassword prompts on the terminal without echo; replaced in tests
var readPassword = func(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

type command struct {
	out  io.Writer
	fs   *flag.FlagSet
	path *string
}

func newCommand(name string, out io.Writer) *command {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return &command{out: out, fs: fs, path: fs.String("path", "", "Database file path (required)")}
}

func (c *command) parse(args []string) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if *c.path == "" {
		return errors.New("database path required")
	}
	return nil
}

func (c *command) open() (*storage.Store, error) {
	if _, err := os.Stat(*c.path); err != nil {
		return nil, fmt.Errorf("database not found: %w", err)
	}
	store, err := storage.NewStore(*c.path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func (c *command) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Run dispatches "db" subcommands
func Run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("subcommand required: init, delete, query, moves, delete-game, user")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:], out)
	case "delete":
		return runDelete(args[1:], out)
	case "query":
		return runQuery(args[1:], out)
	case "moves":
		return runMoves(args[1:], out)
	case "delete-game":
		return runDeleteGame(args[1:], out)
	case "user":
		if len(args) < 2 {
			return errors.New("user subcommand required: add, delete, set-password, set-hash, promote, list")
		}
		return runUser(args[1], args[2:], out)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func runInit(args []string, out io.Writer) error {
	c := newCommand("init", out)
	if err := c.parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*c.path, false)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.printf("Database initialized at: %s\n", *c.path)
	return nil
}

func runDelete(args []string, out io.Writer) error {
	c := newCommand("delete", out)
	if err := c.parse(args); err != nil {
		return err
	}
	store, err := c.open()
	if err != nil {
		return err
	}
	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}
	c.printf("Database deleted: %s\n", *c.path)
	return nil
}

func runQuery(args []string, out io.Writer) error {
	c := newCommand("query", out)
	gameID := c.fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	playerID := c.fs.String("playerId", "", "Player ID to filter (optional, * for all)")
	if err := c.parse(args); err != nil {
		return err
	}
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *playerID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(games) == 0 {
		c.printf("No games found\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tWhite\tBlack\tRules\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s/%d\t%s\n",
			g.GameID,
			describeSide(g.WhitePlayerID, g.WhiteType, g.WhiteDepth),
			describeSide(g.BlackPlayerID, g.BlackType, g.BlackDepth),
			g.Variant, g.DrawPlies,
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	c.printf("\nFound %d game(s)\n", len(games))
	return nil
}

func describeSide(id string, playerType, depth int) string {
	t := core.PlayerType(playerType)
	desc := t.String()
	if t == core.PlayerMinimax {
		desc = fmt.Sprintf("%s(%d)", desc, depth)
	}
	return fmt.Sprintf("%s %s", short(id), desc)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runMoves(args []string, out io.Writer) error {
	c := newCommand("moves", out)
	gameID := c.fs.String("gameId", "", "Game ID (required)")
	if err := c.parse(args); err != nil {
		return err
	}
	if *gameID == "" {
		return errors.New("game ID required")
	}
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	moves, err := store.QueryMoves(*gameID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(moves) == 0 {
		c.printf("No moves found\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tColor\tMove\tState After\tTime")
	for _, m := range moves {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			m.MoveNumber, m.PlayerColor, m.Move, m.StateAfterMove, m.MoveTimeUTC.Format("15:04:05"))
	}
	w.Flush()
	return nil
}

func runDeleteGame(args []string, out io.Writer) error {
	c := newCommand("delete-game", out)
	gameID := c.fs.String("gameId", "", "Game ID (required)")
	if err := c.parse(args); err != nil {
		return err
	}
	if *gameID == "" {
		return errors.New("game ID required")
	}
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, "")
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(games) == 0 {
		return fmt.Errorf("game not found: %s", *gameID)
	}
	if err := store.DeleteGame(*gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if err := store.Flush(flushTimeout); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	c.printf("Game deleted: %s\n", *gameID)
	return nil
}

func runUser(subcommand string, args []string, out io.Writer) error {
	switch subcommand {
	case "add":
		return runUserAdd(args, out)
	case "delete":
		return runUserDelete(args, out)
	case "set-password":
		return runUserSetPassword(args, out)
	case "set-hash":
		return runUserSetHash(args, out)
	case "promote":
		return runUserPromote(args, out)
	case "list":
		return runUserList(args, out)
	default:
		return fmt.Errorf("unknown user subcommand: %s", subcommand)
	}
}

// passwordHash resolves the -password, -hash and -interactive options to a stored hash
func passwordHash(password, hash string, interactive bool) (string, error) {
	set := 0
	for _, b := range []bool{password != "", hash != "", interactive} {
		if b {
			set++
		}
	}
	switch {
	case set == 0:
		return "", errors.New("password required: use -password, -hash, or -interactive")
	case set > 1:
		return "", errors.New("use only one of -password, -hash and -interactive")
	case hash != "":
		if err := auth.ValidatePHCHashFormat(hash); err != nil {
			return "", fmt.Errorf("invalid hash format: %w", err)
		}
		return hash, nil
	}

	if interactive {
		var err error
		if password, err = readPassword("Enter password: "); err != nil {
			return "", err
		}
	}
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	h, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return h, nil
}

func runUserAdd(args []string, out io.Writer) error {
	c := newCommand("user add", out)
	username := c.fs.String("username", "", "Username (required)")
	email := c.fs.String("email", "", "Email address (optional)")
	password := c.fs.String("password", "", "Password")
	hash := c.fs.String("hash", "", "Pre-computed password hash")
	interactive := c.fs.Bool("interactive", false, "Interactive password prompt")
	temp := c.fs.Bool("temp", false, "Create as temporary user (24h TTL, default: permanent)")
	if err := c.parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("username required")
	}

	pwHash, err := passwordHash(*password, *hash, *interactive)
	if err != nil {
		return err
	}

	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	now := time.Now().UTC()
	record := storage.UserRecord{
		UserID:       uuid.New().String(),
		Username:     strings.ToLower(*username),
		Email:        strings.ToLower(*email),
		PasswordHash: pwHash,
		AccountType:  "permanent",
		CreatedAt:    now,
	}
	if *temp {
		expiry := now.Add(24 * time.Hour)
		record.AccountType = "temp"
		record.ExpiresAt = &expiry
	}

	if err := store.CreateUser(record); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	c.printf("User created successfully:\n  ID: %s\n  Username: %s\n", record.UserID, record.Username)
	if record.Email != "" {
		c.printf("  Email: %s\n", record.Email)
	}
	return nil
}

// lookupUser finds a user by -username or -id
func lookupUser(store *storage.Store, username, id string) (*storage.UserRecord, error) {
	switch {
	case username == "" && id == "":
		return nil, errors.New("either -username or -id required")
	case username != "" && id != "":
		return nil, errors.New("specify either -username or -id, not both")
	case id != "":
		u, err := store.GetUserByID(id)
		if err != nil {
			return nil, fmt.Errorf("user not found: %s", id)
		}
		return u, nil
	default:
		u, err := store.GetUserByUsername(username)
		if err != nil {
			return nil, fmt.Errorf("user not found: %s", username)
		}
		return u, nil
	}
}

func runUserDelete(args []string, out io.Writer) error {
	c := newCommand("user delete", out)
	username := c.fs.String("username", "", "Username to delete")
	userID := c.fs.String("id", "", "User ID to delete")
	if err := c.parse(args); err != nil {
		return err
	}
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := lookupUser(store, *username, *userID)
	if err != nil {
		return err
	}
	if err := store.DeleteUserByID(user.UserID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	c.printf("User deleted: %s (%s)\n", user.Username, user.UserID)
	return nil
}

func runUserSetPassword(args []string, out io.Writer) error {
	c := newCommand("user set-password", out)
	username := c.fs.String("username", "", "Username (required)")
	password := c.fs.String("password", "", "New password")
	interactive := c.fs.Bool("interactive", false, "Interactive password prompt")
	if err := c.parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("username required")
	}
	pwHash, err := passwordHash(*password, "", *interactive)
	if err != nil {
		return err
	}
	return updatePassword(c, *username, pwHash, "Password")
}

func runUserSetHash(args []string, out io.Writer) error {
	c := newCommand("user set-hash", out)
	username := c.fs.String("username", "", "Username (required)")
	hash := c.fs.String("hash", "", "Password hash (required)")
	if err := c.parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("username required")
	}
	if *hash == "" {
		return errors.New("password hash required")
	}
	pwHash, err := passwordHash("", *hash, false)
	if err != nil {
		return err
	}
	return updatePassword(c, *username, pwHash, "Password hash")
}

func updatePassword(c *command, username, pwHash, what string) error {
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := lookupUser(store, username, "")
	if err != nil {
		return err
	}
	if err := store.UpdateUserPassword(user.UserID, pwHash); err != nil {
		return fmt.Errorf("failed to update %s: %w", strings.ToLower(what), err)
	}
	c.printf("%s updated for user: %s\n", what, user.Username)
	return nil
}

func runUserPromote(args []string, out io.Writer) error {
	c := newCommand("user promote", out)
	username := c.fs.String("username", "", "Username to promote")
	userID := c.fs.String("id", "", "User ID to promote")
	if err := c.parse(args); err != nil {
		return err
	}
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := lookupUser(store, *username, *userID)
	if err != nil {
		return err
	}
	if user.AccountType == "permanent" {
		c.printf("User %s is already permanent\n", user.Username)
		return nil
	}
	if err := store.PromoteToPermanent(user.UserID); err != nil {
		return fmt.Errorf("failed to promote user: %w", err)
	}
	c.printf("User promoted to permanent: %s\n", user.Username)
	return nil
}

func runUserList(args []string, out io.Writer) error {
	c := newCommand("user list", out)
	if err := c.parse(args); err != nil {
		return err
	}
	store, err := c.open()
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		c.printf("No users found\n")
		return nil
	}

	formatTime := func(t *time.Time) string {
		if t == nil {
			return "never"
		}
		return t.Format("2006-01-02 15:04")
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "User ID\tUsername\tType\tEmail\tCreated\tExpires\tLast Login")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, u := range users {
		email := u.Email
		if email == "" {
			email = "(none)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			short(u.UserID)+"...",
			u.Username,
			u.AccountType,
			email,
			u.CreatedAt.Format("2006-01-02 15:04"),
			formatTime(u.ExpiresAt),
			formatTime(u.LastLoginAt),
		)
	}
	w.Flush()

	c.printf("\nTotal users: %d\n", len(users))
	return nil
}
