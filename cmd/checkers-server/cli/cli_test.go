package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/lixenwraith/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkers/internal/storage"
)

func initDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkers.db")
	var out bytes.Buffer
	require.NoError(t, Run([]string{"init", "-path", path}, &out))
	assert.Contains(t, out.String(), "Database initialized")
	return path
}

func runOK(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Run(args, &out))
	return out.String()
}

func openStore(t *testing.T, path string) *storage.Store {
	t.Helper()
	store, err := storage.NewStore(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestArgumentErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, Run(nil, &out))
	assert.ErrorContains(t, Run([]string{"vacuum"}, &out), "unknown subcommand")
	assert.ErrorContains(t, Run([]string{"init"}, &out), "database path required")
	assert.Error(t, Run([]string{"user"}, &out))
	assert.ErrorContains(t, Run([]string{"user", "rename", "-path", "x"}, &out), "unknown user subcommand")
	assert.ErrorContains(t, Run([]string{"query", "-path", filepath.Join(t.TempDir(), "none.db")}, &out), "database not found")
}

func TestUserCommands(t *testing.T) {
	path := initDB(t)

	out := runOK(t, "user", "add", "-path", path, "-username", "Alice", "-email", "Alice@Example.com", "-password", "correct-horse")
	assert.Contains(t, out, "Username: alice")
	assert.Contains(t, out, "Email: alice@example.com")

	var buf bytes.Buffer
	assert.ErrorContains(t, Run([]string{"user", "add", "-path", path, "-username", "bob", "-password", "short"}, &buf), "at least 8")
	assert.ErrorContains(t, Run([]string{"user", "add", "-path", path, "-username", "bob"}, &buf), "password required")
	assert.ErrorContains(t, Run([]string{"user", "add", "-path", path, "-username", "bob", "-password", "long-enough", "-hash", "x"}, &buf), "only one")
	assert.ErrorContains(t, Run([]string{"user", "add", "-path", path, "-username", "bob", "-hash", "plain"}, &buf), "invalid hash format")
	assert.Error(t, Run([]string{"user", "add", "-path", path, "-username", "alice", "-password", "another-pass"}, &buf), "duplicate username")

	orig := readPassword
	readPassword = func(string) (string, error) { return "typed-password", nil }
	defer func() { readPassword = orig }()
	runOK(t, "user", "add", "-path", path, "-username", "bob", "-interactive", "-temp")

	out = runOK(t, "user", "list", "-path", path)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "Total users: 2")

	store := openStore(t, path)
	bob, err := store.GetUserByUsername("bob")
	require.NoError(t, err)
	assert.Equal(t, "temp", bob.AccountType)
	require.NoError(t, auth.VerifyPassword("typed-password", bob.PasswordHash))

	assert.Contains(t, runOK(t, "user", "promote", "-path", path, "-username", "bob"), "promoted")
	assert.Contains(t, runOK(t, "user", "promote", "-path", path, "-id", bob.UserID), "already permanent")

	runOK(t, "user", "set-password", "-path", path, "-username", "alice", "-password", "new-password")
	alice, err := store.GetUserByUsername("alice")
	require.NoError(t, err)
	require.NoError(t, auth.VerifyPassword("new-password", alice.PasswordHash))

	hash, err := auth.HashPassword("hashed-elsewhere")
	require.NoError(t, err)
	assert.Contains(t, runOK(t, "user", "set-hash", "-path", path, "-username", "alice", "-hash", hash), "Password hash updated")

	assert.ErrorContains(t, Run([]string{"user", "delete", "-path", path}, &buf), "either -username or -id")
	assert.ErrorContains(t, Run([]string{"user", "delete", "-path", path, "-username", "carol"}, &buf), "user not found")
	runOK(t, "user", "delete", "-path", path, "-username", "alice")
	assert.Contains(t, runOK(t, "user", "list", "-path", path), "Total users: 1")
}

func TestGameCommands(t *testing.T) {
	path := initDB(t)
	assert.Contains(t, runOK(t, "query", "-path", path), "No games found")

	store := openStore(t, path)
	require.NoError(t, store.RecordNewGame(storage.GameRecord{
		GameID:        "0f7c1a52-game",
		InitialState:  "wwwwwwwwwwww........bbbbbbbbbbbb w - 0 standard 80",
		Variant:       "standard",
		DrawPlies:     80,
		WhitePlayerID: "white-player",
		WhiteType:     1,
		BlackPlayerID: "black-player",
		BlackType:     2,
		BlackDepth:    4,
		StartTimeUTC:  time.Now().UTC(),
	}))
	require.NoError(t, store.RecordMove(storage.MoveRecord{
		GameID:         "0f7c1a52-game",
		MoveNumber:     1,
		Move:           "9-13",
		StateAfterMove: "after",
		PlayerColor:    "w",
		MoveTimeUTC:    time.Now().UTC(),
	}))
	require.NoError(t, store.Flush(time.Second))

	out := runOK(t, "query", "-path", path, "-playerId", "black-player")
	assert.Contains(t, out, "0f7c1a52-game")
	assert.Contains(t, out, "minimax(4)")
	assert.Contains(t, out, "standard/80")
	assert.Contains(t, out, "Found 1 game(s)")

	out = runOK(t, "moves", "-path", path, "-gameId", "0f7c1a52-game")
	assert.Contains(t, out, "9-13")
	assert.Contains(t, runOK(t, "moves", "-path", path, "-gameId", "other"), "No moves found")

	var buf bytes.Buffer
	assert.ErrorContains(t, Run([]string{"delete-game", "-path", path, "-gameId", "other"}, &buf), "game not found")
	runOK(t, "delete-game", "-path", path, "-gameId", "0f7c1a52-game")
	assert.Contains(t, runOK(t, "query", "-path", path), "No games found")

	assert.Contains(t, runOK(t, "delete", "-path", path), "Database deleted")
	assert.NoFileExists(t, path)
}
