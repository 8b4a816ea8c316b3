package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "checkers.db"), true)
	require.NoError(t, err)
	require.NoError(t, s.InitDB())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testGame(id string) GameRecord {
	return GameRecord{
		GameID:        id,
		InitialState:  "wwwwwwwwwwww........bbbbbbbbbbbb w - 0 standard 80",
		Variant:       "standard",
		DrawPlies:     80,
		WhitePlayerID: "p-white",
		WhiteType:     1,
		BlackPlayerID: "p-black",
		BlackType:     2,
		BlackDepth:    4,
		StartTimeUTC:  time.Now().UTC(),
	}
}

func TestGameAndMoves(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.RecordNewGame(testGame("g1")))
	for i, mv := range []string{"9-13", "21-17", "10-14"} {
		color := "w"
		if i%2 == 1 {
			color = "b"
		}
		require.NoError(t, s.RecordMove(MoveRecord{
			GameID:         "g1",
			MoveNumber:     i + 1,
			Move:           mv,
			StateAfterMove: "state",
			PlayerColor:    color,
			MoveTimeUTC:    time.Now().UTC(),
		}))
	}
	require.NoError(t, s.Flush(time.Second))

	games, err := s.QueryGames("g1", "")
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 4, games[0].BlackDepth)
	assert.Equal(t, "standard", games[0].Variant)

	moves, err := s.QueryMoves("g1")
	require.NoError(t, err)
	require.Len(t, moves, 3)
	assert.Equal(t, "21-17", moves[1].Move)

	// undo two, then replay a different line over the same move number
	require.NoError(t, s.DeleteUndoneMoves("g1", 1))
	require.NoError(t, s.RecordMove(MoveRecord{GameID: "g1", MoveNumber: 2, Move: "22-18", StateAfterMove: "s", PlayerColor: "b", MoveTimeUTC: time.Now().UTC()}))
	require.NoError(t, s.Flush(time.Second))

	moves, err = s.QueryMoves("g1")
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, "22-18", moves[1].Move)

	byPlayer, err := s.QueryGames("*", "p-black")
	require.NoError(t, err)
	assert.Len(t, byPlayer, 1)

	require.NoError(t, s.DeleteGame("g1"))
	require.NoError(t, s.Flush(time.Second))
	games, err = s.QueryGames("*", "*")
	require.NoError(t, err)
	assert.Empty(t, games)
	assert.True(t, s.IsHealthy())
}

func TestUpdatePlayers(t *testing.T) {
	s := newTestStore(t)
	rec := testGame("g2")
	require.NoError(t, s.RecordNewGame(rec))

	rec.WhiteType, rec.WhiteDepth = 2, 6
	require.NoError(t, s.UpdatePlayers(rec))
	require.NoError(t, s.Flush(time.Second))

	games, err := s.QueryGames("g2", "")
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 2, games[0].WhiteType)
	assert.Equal(t, 6, games[0].WhiteDepth)
}

func TestUsersAndSessions(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	expires := now.Add(time.Hour)

	require.NoError(t, s.CreateUser(UserRecord{
		UserID: "u1", Username: "Alice", PasswordHash: "h",
		AccountType: "temp", CreatedAt: now, ExpiresAt: &expires,
	}))
	assert.ErrorIs(t, s.CreateUser(UserRecord{
		UserID: "u2", Username: "alice", PasswordHash: "h", AccountType: "temp", CreatedAt: now,
	}), ErrUserExists)

	u, err := s.GetUserByUsername("ALICE")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	assert.Empty(t, u.Email)

	total, permanent, temp, err := s.GetUserCounts()
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Zero(t, permanent)
	assert.Equal(t, 1, temp)

	require.NoError(t, s.PromoteToPermanent("u1"))
	u, err = s.GetUserByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "permanent", u.AccountType)
	assert.Nil(t, u.ExpiresAt)

	require.NoError(t, s.CreateSession(SessionRecord{SessionID: "s1", UserID: "u1", CreatedAt: now, ExpiresAt: expires}))
	require.NoError(t, s.CreateSession(SessionRecord{SessionID: "s2", UserID: "u1", CreatedAt: now, ExpiresAt: expires}))

	valid, err := s.IsSessionValid("s1")
	require.NoError(t, err)
	assert.False(t, valid, "a new session replaces the old one")
	valid, err = s.IsSessionValid("s2")
	require.NoError(t, err)
	assert.True(t, valid)

	require.NoError(t, s.DeleteSessionByUserID("u1"))
	_, err = s.GetSessionByUserID("u1")
	assert.Error(t, err)
}

func TestExpiredTempUsers(t *testing.T) {
	s := newTestStore(t)
	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.CreateUser(UserRecord{
		UserID: "old", Username: "old", PasswordHash: "h",
		AccountType: "temp", CreatedAt: past.Add(-time.Hour), ExpiresAt: &past,
	}))

	oldest, err := s.GetOldestTempUser()
	require.NoError(t, err)
	assert.Equal(t, "old", oldest.UserID)

	n, err := s.DeleteExpiredTempUsers()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.db")
	s, err := NewStore(path, false)
	require.NoError(t, err)
	require.NoError(t, s.InitDB())

	require.NoError(t, s.DeleteDB())
	assert.NoFileExists(t, path)
	assert.NoError(t, s.Close(), "close is idempotent")
}
