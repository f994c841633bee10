// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/jason-s-yu/monopoly/internal/game"
	"github.com/jason-s-yu/monopoly/internal/metrics"
	"github.com/jason-s-yu/monopoly/internal/middleware"
	"github.com/sirupsen/logrus"
)

// wsClient is the socket side of game.Client. Every frame is one JSON text message.
type wsClient struct {
	conn *websocket.Conn
}

func (c *wsClient) Write(ctx context.Context, msgs ...game.Response) error {
	return c.conn.Write(ctx, websocket.MessageText, game.EncodeResponses(msgs...))
}

// readText returns the next text frame, skipping binary ones.
func (c *wsClient) readText(ctx context.Context) ([]byte, error) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return nil, err
		}
		if typ == websocket.MessageText {
			return data, nil
		}
	}
}

func (c *wsClient) Read(ctx context.Context, prompt string) (string, error) {
	if err := c.Write(ctx, game.Response{Response: game.RespPrompt, Value: prompt}); err != nil {
		return "", err
	}
	data, err := c.readText(ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *wsClient) Next(ctx context.Context) (game.Action, error) {
	data, err := c.readText(ctx)
	if err != nil {
		return game.Action{}, err
	}
	return game.ParseAction(data)
}

// GameWSHandler upgrades GET /games/{id}/ws. A valid session for the game
// reconnects its player; anyone else is prompted for details and joins.
func GameWSHandler(gs *GameServer, allowedOrigins []string) http.HandlerFunc {
	patterns := originPatterns(allowedOrigins)
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid game id")
			return
		}
		g, ok := gs.GameStore.GetGame(gameID)
		if !ok {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		known := gs.sessionFor(sessionToken(r), gameID)

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: patterns})
		if err != nil {
			gs.Logger.WithError(err).WithField("game", gameID).Warn("websocket accept failed")
			return
		}
		defer c.CloseNow()

		metrics.Connections.Inc()
		defer metrics.Connections.Dec()

		ctx := r.Context()
		client := &wsClient{conn: c}
		playerID, err := g.Admit(ctx, client, known)
		if err != nil {
			if apperror.IsValidation(err) {
				_ = client.Write(ctx, game.Response{Response: game.RespError, Value: apperror.Message(err)})
				c.Close(AdmissionError, apperror.Message(err))
			}
			gs.Logger.WithError(err).WithField("game", gameID).Info("admission failed")
			return
		}

		if gs.Sessions != nil {
			token, err := gs.Sessions.Issue(playerID, gameID)
			if err != nil {
				gs.Logger.WithError(err).Error("failed to issue session token")
			} else {
				_ = client.Write(ctx, game.Response{Response: game.RespSession, Value: token})
			}
		}

		fields := logrus.Fields{"game": gameID, "player": playerID}
		middleware.LogWebSocketConnect(gs.Logger, r.RemoteAddr, r.URL.Path, fields)

		err = g.Serve(ctx, playerID, client)
		g.Disconnect(playerID, client)

		status := websocket.CloseStatus(err)
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
			err = nil
		}
		middleware.LogWebSocketDisconnect(gs.Logger, r.RemoteAddr, r.URL.Path, fields, err)
		c.Close(websocket.StatusNormalClosure, "")
	}
}
