// internal/database/store.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/config"
	"github.com/jason-s-yu/monopoly/internal/models"
)

// Game row statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// Store persists finished games and the action history the historian drains.
type Store interface {
	// SaveResult marks the game completed and records its outcome.
	SaveResult(ctx context.Context, res models.GameResult) error
	// InsertActions writes a batch in one transaction. Records already stored are skipped.
	InsertActions(ctx context.Context, recs []models.ActionRecord) error
	// MarkAbandoned flags a game that is still in progress. endedAt is epoch millis.
	MarkAbandoned(ctx context.Context, gameID uuid.UUID, endedAt int64) error
	Close() error
}

// Open connects the store selected by cfg.Driver. It returns nil, nil when no
// driver is configured.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "postgres":
		pg, err := ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case "sqlite":
		lite, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
