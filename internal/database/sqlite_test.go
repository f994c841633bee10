package database

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/config"
	"github.com/jason-s-yu/monopoly/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "monopoly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func gameStatus(t *testing.T, s *SQLite, id uuid.UUID) string {
	t.Helper()
	var status string
	require.NoError(t, s.db.QueryRow(`SELECT status FROM games WHERE id = ?`, id.String()).Scan(&status))
	return status
}

func TestInsertActionsCreatesGameRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	gameID := uuid.New()
	actor := uuid.New()

	recs := []models.ActionRecord{
		{GameID: gameID, ActionIndex: 1, ActorID: actor, ActionType: "join", Timestamp: 100},
		{GameID: gameID, ActionIndex: 2, ActorID: actor, ActionType: "roll", ActionPayload: json.RawMessage(`{"total":7}`), Timestamp: 200},
	}
	require.NoError(t, s.InsertActions(ctx, recs))
	// replaying the same batch is a no-op
	require.NoError(t, s.InsertActions(ctx, recs))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM game_actions WHERE game_id = ?`, gameID.String()).Scan(&n))
	assert.Equal(t, 2, n)
	assert.Equal(t, StatusInProgress, gameStatus(t, s, gameID))

	var payload string
	require.NoError(t, s.db.QueryRow(`SELECT action_payload FROM game_actions WHERE action_index = 2`).Scan(&payload))
	assert.JSONEq(t, `{"total":7}`, payload)
}

func TestSaveResultCompletesGame(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	gameID := uuid.New()
	winner := uuid.New()

	require.NoError(t, s.InsertActions(ctx, []models.ActionRecord{
		{GameID: gameID, ActionIndex: 1, ActorID: winner, ActionType: "join", Timestamp: 1},
	}))
	require.NoError(t, s.SaveResult(ctx, models.GameResult{
		GameID: gameID, Board: "classic", WinnerID: winner, Players: 3, Turns: 42, StartedAt: 1, EndedAt: 9,
	}))
	assert.Equal(t, StatusCompleted, gameStatus(t, s, gameID))

	var board, winnerID string
	var turns int
	require.NoError(t, s.db.QueryRow(`SELECT board, winner_id, turns FROM games WHERE id = ?`, gameID.String()).
		Scan(&board, &winnerID, &turns))
	assert.Equal(t, "classic", board)
	assert.Equal(t, winner.String(), winnerID)
	assert.Equal(t, 42, turns)

	// a completed game is never downgraded
	require.NoError(t, s.MarkAbandoned(ctx, gameID, 10))
	assert.Equal(t, StatusCompleted, gameStatus(t, s, gameID))
}

func TestMarkAbandoned(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	gameID := uuid.New()
	require.NoError(t, s.InsertActions(ctx, []models.ActionRecord{
		{GameID: gameID, ActionIndex: 1, ActorID: uuid.New(), ActionType: "join", Timestamp: 1},
	}))
	require.NoError(t, s.MarkAbandoned(ctx, gameID, 50))
	assert.Equal(t, StatusAbandoned, gameStatus(t, s, gameID))
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, config.Store{})
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = Open(ctx, config.Store{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.NoError(t, st.Close())

	_, err = Open(ctx, config.Store{Driver: "oracle"})
	assert.Error(t, err)
}
