// internal/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/models"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS games (
		id         TEXT PRIMARY KEY,
		board      TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL,
		winner_id  TEXT,
		players    INTEGER NOT NULL DEFAULT 0,
		turns      INTEGER NOT NULL DEFAULT 0,
		start_time INTEGER,
		end_time   INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS game_actions (
		game_id        TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		action_index   INTEGER NOT NULL,
		actor_id       TEXT NOT NULL,
		action_type    TEXT NOT NULL,
		action_payload TEXT,
		created_at     INTEGER NOT NULL,
		PRIMARY KEY (game_id, action_index)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_status ON games(status)`,
}

// SQLite is the single-file Store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer; pragmas are per connection
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) withTx(ctx context.Context, f func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

func (s *SQLite) SaveResult(ctx context.Context, res models.GameResult) error {
	var winner interface{}
	if res.WinnerID != uuid.Nil {
		winner = res.WinnerID.String()
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, e := tx.ExecContext(ctx, `
			INSERT INTO games (id, board, status, winner_id, players, turns, start_time, end_time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				board = excluded.board, status = excluded.status, winner_id = excluded.winner_id,
				players = excluded.players, turns = excluded.turns,
				start_time = excluded.start_time, end_time = excluded.end_time
		`, res.GameID.String(), res.Board, StatusCompleted, winner, res.Players, res.Turns, res.StartedAt, res.EndedAt)
		return e
	})
	if err != nil {
		return fmt.Errorf("save result for game %v: %w", res.GameID, err)
	}
	return nil
}

func (s *SQLite) InsertActions(ctx context.Context, recs []models.ActionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range recs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO games (id, status, start_time) VALUES (?, ?, ?)
				ON CONFLICT (id) DO NOTHING
			`, rec.GameID.String(), StatusInProgress, rec.Timestamp); err != nil {
				return err
			}
			var payload interface{}
			if len(rec.ActionPayload) > 0 {
				payload = string(rec.ActionPayload)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO game_actions (game_id, action_index, actor_id, action_type, action_payload, created_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (game_id, action_index) DO NOTHING
			`, rec.GameID.String(), rec.ActionIndex, rec.ActorID.String(), rec.ActionType, payload, rec.Timestamp); err != nil {
				return fmt.Errorf("insert action %d: %w", rec.ActionIndex, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert actions: %w", err)
	}
	return nil
}

func (s *SQLite) MarkAbandoned(ctx context.Context, gameID uuid.UUID, endedAt int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE games SET status = ?, end_time = ?
		WHERE id = ? AND status = ?
	`, StatusAbandoned, endedAt, gameID.String(), StatusInProgress)
	if err != nil {
		return fmt.Errorf("mark game %v abandoned: %w", gameID, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
