package storage

import (
	"database/sql"
	"fmt"
)

const gameColumns = `game_id, initial_state, variant, draw_plies,
	white_player_id, white_type, white_depth,
	black_player_id, black_type, black_depth,
	start_time_utc`

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) error {
	return s.enqueue("record game", func(tx *sql.Tx) error {
		query := `INSERT INTO games (` + gameColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.Exec(query,
			record.GameID, record.InitialState, record.Variant, record.DrawPlies,
			record.WhitePlayerID, record.WhiteType, record.WhiteDepth,
			record.BlackPlayerID, record.BlackType, record.BlackDepth,
			record.StartTimeUTC,
		)
		return err
	})
}

// UpdatePlayers asynchronously rewrites the player columns after reconfiguration
func (s *Store) UpdatePlayers(record GameRecord) error {
	return s.enqueue("update players", func(tx *sql.Tx) error {
		query := `UPDATE games SET
			white_player_id = ?, white_type = ?, white_depth = ?,
			black_player_id = ?, black_type = ?, black_depth = ?
		WHERE game_id = ?`
		_, err := tx.Exec(query,
			record.WhitePlayerID, record.WhiteType, record.WhiteDepth,
			record.BlackPlayerID, record.BlackType, record.BlackDepth,
			record.GameID,
		)
		return err
	})
}

// RecordMove asynchronously records a move. A row left over at the same move number
// from an undone line is replaced.
func (s *Store) RecordMove(record MoveRecord) error {
	return s.enqueue("record move", func(tx *sql.Tx) error {
		query := `INSERT OR REPLACE INTO moves (
			game_id, move_number, move, state_after_move, player_color, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?)`
		_, err := tx.Exec(query,
			record.GameID, record.MoveNumber, record.Move,
			record.StateAfterMove, record.PlayerColor, record.MoveTimeUTC,
		)
		return err
	})
}

// DeleteUndoneMoves asynchronously deletes moves after undo
func (s *Store) DeleteUndoneMoves(gameID string, afterMoveNumber int) error {
	return s.enqueue("delete undone moves", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM moves WHERE game_id = ? AND move_number > ?`, gameID, afterMoveNumber)
		return err
	})
}

// DeleteGame asynchronously removes a game and its moves
func (s *Store) DeleteGame(gameID string) error {
	return s.enqueue("delete game", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM moves WHERE game_id = ?`, gameID); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM games WHERE game_id = ?`, gameID)
		return err
	})
}

// QueryGames retrieves games with optional filtering; "*" or "" matches everything
func (s *Store) QueryGames(gameID, playerID string) ([]GameRecord, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`

	var args []any
	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}
	if playerID != "" && playerID != "*" {
		query += " AND (white_player_id = ? OR black_player_id = ?)"
		args = append(args, playerID, playerID)
	}
	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		err := rows.Scan(
			&g.GameID, &g.InitialState, &g.Variant, &g.DrawPlies,
			&g.WhitePlayerID, &g.WhiteType, &g.WhiteDepth,
			&g.BlackPlayerID, &g.BlackType, &g.BlackDepth,
			&g.StartTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return games, nil
}

// QueryMoves returns the recorded moves of a game in play order
func (s *Store) QueryMoves(gameID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT move_id, game_id, move_number, move, state_after_move, player_color, move_time_utc
		FROM moves WHERE game_id = ? ORDER BY move_number ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.MoveID, &m.GameID, &m.MoveNumber, &m.Move, &m.StateAfterMove, &m.PlayerColor, &m.MoveTimeUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}
