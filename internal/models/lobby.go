// internal/models/lobby.go
package models

import "github.com/google/uuid"

// LobbyState is the public summary of a game session, sent as lobby-state and
// listed by the HTTP API.
type LobbyState struct {
	ID      uuid.UUID `json:"id"`
	Board   string    `json:"board"`
	Host    string    `json:"host,omitempty"`
	Started bool      `json:"started"`
	Over    bool      `json:"over"`
	Players []string  `json:"players"`

	// Rules holds the per-game configuration, see internal/models/house_rules.go
	Rules HouseRules `json:"rules"`
}
