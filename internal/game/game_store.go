package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/metrics"
	"github.com/jason-s-yu/monopoly/internal/models"
)

type GameStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]*Game
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[uuid.UUID]*Game),
	}
}

func (s *GameStore) AddGame(game *Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; !ok {
		metrics.ActiveGames.Inc()
	}
	s.games[game.ID] = game
}

func (s *GameStore) GetGame(id uuid.UUID) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.games[id]
	return g, exists
}

// DeleteGame removes the game and releases its board.
func (s *GameStore) DeleteGame(id uuid.UUID) {
	s.mu.Lock()
	g, ok := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()
	if ok {
		metrics.ActiveGames.Dec()
		g.Close()
	}
}

// Lobbies returns the summary of every game, oldest first.
func (s *GameStore) Lobbies() []models.LobbyState {
	s.mu.Lock()
	games := make([]*Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g)
	}
	s.mu.Unlock()

	sortByCreation(games)
	out := make([]models.LobbyState, 0, len(games))
	for _, g := range games {
		out = append(out, g.LobbyState())
	}
	return out
}
