// internal/handlers/lobby.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/jason-s-yu/monopoly/internal/models"
)

type createGameRequest struct {
	Board string             `json:"board"`
	Rules *models.HouseRules `json:"rules,omitempty"`
}

type createGameResponse struct {
	ID    uuid.UUID         `json:"id"`
	Lobby models.LobbyState `json:"lobby"`
}

// handleCreateGame serves POST /games. An empty body creates a game on the default board.
func (gs *GameServer) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := gs.CreateGame(req.Board, req.Rules)
	if err != nil {
		if errors.Is(err, apperror.ErrUnknownBoard) {
			writeError(w, http.StatusNotFound, apperror.Message(err))
			return
		}
		gs.Logger.WithError(err).WithField("board", req.Board).Error("failed to create game")
		writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}
	writeJSON(w, http.StatusCreated, createGameResponse{ID: g.ID, Lobby: g.LobbyState()})
}

// handleListGames serves GET /games.
func (gs *GameServer) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gs.GameStore.Lobbies())
}

// handleGetGame serves GET /games/{id}.
func (gs *GameServer) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	g, ok := gs.GameStore.GetGame(id)
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, g.LobbyState())
}

// handleListBoards serves GET /boards.
func (gs *GameServer) handleListBoards(w http.ResponseWriter, r *http.Request) {
	names, err := gs.Boards.Names()
	if err != nil {
		gs.Logger.WithError(err).Error("failed to list boards")
		writeError(w, http.StatusInternalServerError, "failed to list boards")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}
