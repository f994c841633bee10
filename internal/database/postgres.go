// internal/database/postgres.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/monopoly/internal/models"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id         UUID PRIMARY KEY,
		board      TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL,
		winner_id  UUID,
		players    INTEGER NOT NULL DEFAULT 0,
		turns      INTEGER NOT NULL DEFAULT 0,
		start_time BIGINT,
		end_time   BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS game_actions (
		game_id        UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		action_index   INTEGER NOT NULL,
		actor_id       UUID NOT NULL,
		action_type    TEXT NOT NULL,
		action_payload JSONB,
		created_at     BIGINT NOT NULL,
		PRIMARY KEY (game_id, action_index)
	)`,
}

// Postgres stores results and actions through a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool for url, pings it and creates the schema.
func ConnectPostgres(ctx context.Context, url string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	pg := &Postgres{pool: pool}
	if err := pg.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pg, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) SaveResult(ctx context.Context, res models.GameResult) error {
	err := pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO games (id, board, status, winner_id, players, turns, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				board = $2, status = $3, winner_id = $4, players = $5,
				turns = $6, start_time = $7, end_time = $8
		`
		_, e := tx.Exec(ctx, q, res.GameID, res.Board, StatusCompleted, nullableID(res.WinnerID),
			res.Players, res.Turns, res.StartedAt, res.EndedAt)
		return e
	})
	if err != nil {
		return fmt.Errorf("save result for game %v: %w", res.GameID, err)
	}
	return nil
}

func (p *Postgres) InsertActions(ctx context.Context, recs []models.ActionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO games (id, status, start_time)
				VALUES ($1, $2, $3)
				ON CONFLICT (id) DO NOTHING
			`, rec.GameID, StatusInProgress, rec.Timestamp); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO game_actions (game_id, action_index, actor_id, action_type, action_payload, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (game_id, action_index) DO NOTHING
			`, rec.GameID, rec.ActionIndex, rec.ActorID, rec.ActionType, payloadBytes(rec), rec.Timestamp); err != nil {
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

func (p *Postgres) MarkAbandoned(ctx context.Context, gameID uuid.UUID, endedAt int64) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE games
		SET status = $2, end_time = $3
		WHERE id = $1 AND status = $4
	`, gameID, StatusAbandoned, endedAt, StatusInProgress)
	if err != nil {
		return fmt.Errorf("mark game %v abandoned: %w", gameID, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func nullableID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func payloadBytes(rec models.ActionRecord) []byte {
	if len(rec.ActionPayload) == 0 {
		return nil
	}
	return rec.ActionPayload
}
