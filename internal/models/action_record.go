package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ActionRecord captures one handled action for the action log.
type ActionRecord struct {
	GameID        uuid.UUID       `json:"game_id"`
	ActionIndex   int             `json:"action_index"`
	ActorID       uuid.UUID       `json:"actor_id"`
	ActionType    string          `json:"action_type"`
	ActionPayload json.RawMessage `json:"action_payload,omitempty"`
	Timestamp     int64           `json:"timestamp"` // epoch millis
}

// GameResult is written once per finished game.
type GameResult struct {
	GameID    uuid.UUID `json:"game_id"`
	Board     string    `json:"board"`
	WinnerID  uuid.UUID `json:"winner_id"`
	Players   int       `json:"players"`
	Turns     int       `json:"turns"`
	StartedAt int64     `json:"started_at"`
	EndedAt   int64     `json:"ended_at"`
}
