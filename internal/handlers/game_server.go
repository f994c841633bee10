// internal/handlers/game_server.go
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/jason-s-yu/monopoly/internal/auth"
	"github.com/jason-s-yu/monopoly/internal/board"
	"github.com/jason-s-yu/monopoly/internal/game"
	"github.com/jason-s-yu/monopoly/internal/models"
	"github.com/sirupsen/logrus"
)

// finishedGameRetention is how long a finished game stays reachable for reconnects.
const finishedGameRetention = 5 * time.Minute

// GameServer holds the running games and what is needed to create new ones.
type GameServer struct {
	GameStore *game.GameStore
	Boards    *board.Catalog
	Sessions  *auth.Sessions

	DefaultBoard string
	Rules        models.HouseRules

	// Recorder and Results may be nil; games then skip the action log or result row.
	Recorder game.Recorder
	Results  game.ResultSaver

	Logger *logrus.Logger
}

func NewGameServer(boards *board.Catalog, sessions *auth.Sessions, defaultBoard string, rules models.HouseRules, logger *logrus.Logger) *GameServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &GameServer{
		GameStore:    game.NewGameStore(),
		Boards:       boards,
		Sessions:     sessions,
		DefaultBoard: defaultBoard,
		Rules:        rules.Normalize(),
		Logger:       logger,
	}
}

// CreateGame builds a fresh board and registers a waiting game on it. An empty
// boardName uses the default board; nil rules use the server defaults.
func (gs *GameServer) CreateGame(boardName string, rules *models.HouseRules) (*game.Game, error) {
	if boardName == "" {
		boardName = gs.DefaultBoard
	}
	r := gs.Rules
	if rules != nil {
		r = rules.Normalize()
	}

	entry := logrus.NewEntry(gs.Logger).WithField("board", boardName)
	b, err := gs.Boards.NewBoard(boardName, entry)
	if err != nil {
		return nil, err
	}

	g := game.NewGame(b, game.Options{
		Rules:    r,
		Recorder: gs.Recorder,
		Results:  gs.Results,
		Logger:   entry,
	})
	g.OnGameEnd = func(gameID, winner uuid.UUID) {
		entry.WithFields(logrus.Fields{"game": gameID, "winner": winner}).Info("game finished")
		time.AfterFunc(finishedGameRetention, func() {
			gs.GameStore.DeleteGame(gameID)
		})
	}
	gs.GameStore.AddGame(g)
	entry.WithField("game", g.ID).Info("game created")
	return g, nil
}

// Play seats client in the game with the given details and feeds its actions
// until it disconnects or ctx ends.
func (gs *GameServer) Play(ctx context.Context, gameID uuid.UUID, client game.Client, d game.Details) error {
	g, ok := gs.GameStore.GetGame(gameID)
	if !ok {
		return fmt.Errorf("game %s: %w", gameID, apperror.ErrUnknownGame)
	}
	p, err := g.Join(ctx, client, d)
	if err != nil {
		return err
	}
	defer g.Disconnect(p.ID, client)
	return g.Serve(ctx, p.ID, client)
}

// sessionFor returns the player id carried by a valid session for gameID, or uuid.Nil.
func (gs *GameServer) sessionFor(token string, gameID uuid.UUID) uuid.UUID {
	if gs.Sessions == nil || token == "" {
		return uuid.Nil
	}
	sess, err := gs.Sessions.Authenticate(token)
	if err != nil {
		gs.Logger.WithError(err).Debug("ignoring session token")
		return uuid.Nil
	}
	if sess.GameID != gameID {
		return uuid.Nil
	}
	return sess.PlayerID
}
