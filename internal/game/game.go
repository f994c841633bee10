// internal/game/game.go
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/jason-s-yu/monopoly/internal/board"
	"github.com/jason-s-yu/monopoly/internal/metrics"
	"github.com/jason-s-yu/monopoly/internal/models"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

// Recorder receives every handled action, see cache.ActionLog.
type Recorder interface {
	Record(ctx context.Context, rec models.ActionRecord) error
}

// ResultSaver persists the outcome of a finished game.
type ResultSaver interface {
	SaveResult(ctx context.Context, res models.GameResult) error
}

// OnGameEndFunc is called once with the winner when fewer than two players remain.
type OnGameEndFunc func(gameID uuid.UUID, winner uuid.UUID)

// Options configures a new Game. Every field is optional.
type Options struct {
	Rules    models.HouseRules
	Recorder Recorder
	Results  ResultSaver
	Logger   *logrus.Entry
}

// Game is one session: a board, the seated players, turn order and any running auction.
// Every exported method takes Mu, so at most one action is applied at a time.
type Game struct {
	ID    uuid.UUID
	Rules models.HouseRules
	Mu    sync.Mutex

	board   *board.Board
	players map[uuid.UUID]*models.Player
	joined  []*models.Player // join order, bankrupt players included
	active  []*models.Player

	// curTurn indexes active; playerTurn is its 1-based rotation counter.
	curTurn    int
	playerTurn int
	hasRolled  bool
	turns      int

	auction    *Auction
	auctionGen int

	loans  []*models.Loan
	trades []*models.Trade

	clients map[uuid.UUID]Client

	Started   bool
	Over      bool
	host      uuid.UUID
	createdAt time.Time
	startedAt time.Time

	actionIndex int
	recorder    Recorder
	results     ResultSaver
	logger      *logrus.Entry

	OnGameEnd OnGameEndFunc

	now       func() time.Time
	afterFunc func(d time.Duration, f func())
}

// NewGame seats nobody yet; players arrive through Join or Admit.
func NewGame(b *board.Board, opts Options) *Game {
	id := uuid.New()
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	g := &Game{
		ID:         id,
		Rules:      opts.Rules.Normalize(),
		board:      b,
		players:    make(map[uuid.UUID]*models.Player),
		joined:     []*models.Player{},
		loans:      []*models.Loan{},
		trades:     []*models.Trade{},
		clients:    make(map[uuid.UUID]Client),
		playerTurn: 1,
		recorder:   opts.Recorder,
		results:    opts.Results,
		logger:     logger.WithField("game", id),
		now:        time.Now,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	g.createdAt = g.now()
	return g
}

// Board returns the game's board. Callers must hold Mu while using it.
func (g *Game) Board() *board.Board {
	return g.board
}

// PlayerByID resolves ids for the economic model. Callers must hold Mu.
func (g *Game) PlayerByID(id uuid.UUID) *models.Player {
	return g.players[id]
}

// HasPlayer reports whether id has been seated in this game.
func (g *Game) HasPlayer(id uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	_, ok := g.players[id]
	return ok
}

// LobbyState returns the public summary served by the HTTP API.
func (g *Game) LobbyState() models.LobbyState {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.lobbyState()
}

func (g *Game) curPlayer() *models.Player {
	if len(g.active) == 0 || g.curTurn >= len(g.active) {
		return nil
	}
	return g.active[g.curTurn]
}

// advanceTurn rotates over the current size of the active list, so the order
// re-packs around players removed by bankruptcy.
func (g *Game) advanceTurn() {
	g.playerTurn = (g.playerTurn % len(g.active)) + 1
	g.curTurn = g.playerTurn - 1
	g.hasRolled = false
	g.turns++
}

// Join seats a new player while the game is waiting.
func (g *Game) Join(ctx context.Context, client Client, d Details) (*models.Player, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Over {
		return nil, apperror.ErrGameOver
	}
	if g.Started {
		return nil, apperror.ErrGameStarted
	}
	p := models.NewPlayer(uuid.New(), g.Rules.StartingMoney, g)
	p.Name, p.Piece = d.Name, d.Piece
	g.players[p.ID] = p
	g.joined = append(g.joined, p)
	g.active = append(g.active, p)
	g.board.AddPlayer(p)
	g.clients[p.ID] = client

	g.logger.WithFields(logrus.Fields{"player": p.ID, "name": p.Name}).Info("player joined")

	var out batch
	out.sender(respond(RespJoinGame, g.lobbyState()), respond(RespAssignment, p.ID.String()))
	out.everyone(respond(RespBoard, g.board.Snapshot()), g.playerList())
	g.deliver(ctx, p.ID, out)

	raw, _ := json.Marshal(d)
	g.logAction(p.ID, "join", raw)
	return p, nil
}

// Rejoin attaches a new client to an existing player and replays the full state to it.
func (g *Game) Rejoin(ctx context.Context, id uuid.UUID, client Client) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.players[id]
	if p == nil {
		return fmt.Errorf("rejoin %s: %w", id, apperror.ErrUnknownPlayer)
	}
	g.clients[id] = client
	g.logger.WithField("player", id).Info("player reconnected")

	var out batch
	out.sender(
		respond(RespReconnect, Details{Name: p.Name, Piece: p.Piece}),
		respond(RespAssignment, p.ID.String()),
	)
	out.everyone(respond(RespBoard, g.board.Snapshot()))
	if cur := g.curPlayer(); cur != nil {
		out.everyone(respond(RespNextTurn, cur))
	}
	if p.Space != nil {
		out.sender(respond(RespCurrentSpace, p.Space))
	}
	out.everyone(g.playerList())
	if len(g.loans) > 0 {
		out.everyone(respond(RespLoanList, g.loans))
	}
	if len(g.trades) > 0 {
		out.everyone(respond(RespTradeList, g.trades))
	}
	if g.auction != nil {
		out.everyone(respond(RespAuctionStatus, g.auction))
	}
	g.deliver(ctx, id, out)
	return nil
}

// Admit runs the lobby handshake for a fresh connection. A known id reconnects;
// anyone else is prompted for details and joins. It returns the seated player's id.
func (g *Game) Admit(ctx context.Context, client Client, known uuid.UUID) (uuid.UUID, error) {
	if known != uuid.Nil && g.HasPlayer(known) {
		return known, g.Rejoin(ctx, known, client)
	}
	line, err := client.Read(ctx, "details")
	if err != nil {
		return uuid.Nil, err
	}
	var msg struct {
		Details Details `json:"details"`
	}
	if err := json.Unmarshal([]byte(line), &msg); err != nil || msg.Details.Name == "" {
		return uuid.Nil, fmt.Errorf("details: %w", apperror.ErrMalformedAction)
	}
	p, err := g.Join(ctx, client, msg.Details)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// Disconnect drops client if it is still the one attached to id.
func (g *Game) Disconnect(id uuid.UUID, client Client) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.clients[id] == client {
		delete(g.clients, id)
		g.logger.WithField("player", id).Info("player disconnected")
	}
}

// Serve feeds actions from client into the game until the client fails or ctx ends.
func (g *Game) Serve(ctx context.Context, id uuid.UUID, client Client) error {
	for {
		a, err := client.Next(ctx)
		if err != nil {
			if apperror.IsValidation(err) {
				_ = client.Write(ctx, errorResponse(err))
				continue
			}
			return err
		}
		g.HandleAction(ctx, id, a)
	}
}

var errUnknownAction = errors.New("unknown action")

// HandleAction applies one action from player id and delivers everything it produced.
// A player-list broadcast always follows, whatever the outcome.
func (g *Game) HandleAction(ctx context.Context, id uuid.UUID, a Action) {
	start := time.Now()
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.players[id]
	if p == nil {
		g.logger.WithFields(logrus.Fields{"player": id, "action": a.Name}).Warn("action from unknown player")
		return
	}
	log := g.logger.WithFields(logrus.Fields{"player": id, "action": a.Name})
	log.Debug("handling action")

	out, err := g.dispatch(p, a)
	g.deliver(ctx, id, out)

	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
		g.logAction(id, a.Name, a.Raw)
	case errors.Is(err, errUnknownAction):
		outcome = metrics.OutcomeUnknown
		log.Warn("unknown action")
	case apperror.IsValidation(err):
		outcome = metrics.OutcomeRejected
		log.WithError(err).Warn("action rejected")
		g.send(ctx, id, errorResponse(err))
	default:
		outcome = metrics.OutcomeInternal
		log.WithError(err).Error("action failed")
		g.send(ctx, id, errorResponse(err))
	}
	g.broadcast(ctx, g.playerList())

	metrics.ActionsHandled.WithLabelValues(a.Name, outcome).Inc()
	metrics.ActionDuration.WithLabelValues(a.Name).Observe(time.Since(start).Seconds())
}

func (g *Game) dispatch(p *models.Player, a Action) (out batch, err error) {
	h, ok := actionTable[a.Name]
	if !ok {
		return nil, errUnknownAction
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v: %w", a.Name, r, apperror.ErrInternal)
		}
	}()
	err = h(g, p, a, &out)
	return out, err
}

func (g *Game) deliver(ctx context.Context, sender uuid.UUID, out batch) {
	for _, o := range out {
		switch o.To.kind {
		case toSender:
			g.send(ctx, sender, o.Messages...)
		case toPlayer:
			g.send(ctx, o.To.id, o.Messages...)
		case toEveryone:
			g.broadcast(ctx, o.Messages...)
		}
	}
}

func (g *Game) send(ctx context.Context, id uuid.UUID, msgs ...Response) {
	c := g.clients[id]
	if c == nil {
		return
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := c.Write(wctx, msgs...); err != nil {
		g.logger.WithError(err).WithField("player", id).Warn("write failed")
	}
}

func (g *Game) broadcast(ctx context.Context, msgs ...Response) {
	for _, p := range g.joined {
		g.send(ctx, p.ID, msgs...)
	}
}

// removeActive takes p out of the rotation. Only curTurn is pulled back in range.
func (g *Game) removeActive(p *models.Player) {
	wasCurrent := g.curPlayer() == p
	for i, ap := range g.active {
		if ap == p {
			g.active = append(g.active[:i], g.active[i+1:]...)
			break
		}
	}
	if g.curTurn >= len(g.active) {
		g.curTurn = 0
	}
	if wasCurrent {
		g.hasRolled = false
	}
}

// endGame marks the game over and reports the winner. Assumes lock is held.
func (g *Game) endGame(out *batch, winner *models.Player) {
	if g.Over {
		return
	}
	g.Over = true
	g.auction = nil
	var winnerID uuid.UUID
	if winner != nil {
		winnerID = winner.ID
	}
	out.everyone(respond(RespGameEnd, winner))
	metrics.GamesFinished.Inc()
	g.logger.WithField("winner", winnerID).Info("game over")

	raw, _ := json.Marshal(map[string]interface{}{"winner": winnerID, "turns": g.turns})
	g.logAction(uuid.Nil, RespGameEnd, raw)

	if g.results != nil {
		res := models.GameResult{
			GameID:    g.ID,
			Board:     g.board.Name,
			WinnerID:  winnerID,
			Players:   len(g.joined),
			Turns:     g.turns,
			StartedAt: g.startedAt.UnixMilli(),
			EndedAt:   g.now().UnixMilli(),
		}
		go func(res models.GameResult) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := g.results.SaveResult(ctx, res); err != nil {
				g.logger.WithError(err).Error("saving game result")
			}
		}(res)
	}
	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, winnerID)
	}
}

// Close releases the board's script state. The game must not be used afterwards.
func (g *Game) Close() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.auction = nil
	g.board.Close()
}

// logAction publishes a record of a handled action. Assumes lock is held.
func (g *Game) logAction(actorID uuid.UUID, actionType string, payload json.RawMessage) {
	g.actionIndex++
	if g.recorder == nil {
		return
	}
	rec := models.ActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     g.now().UnixMilli(),
	}
	go func(rec models.ActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := g.recorder.Record(ctx, rec); err != nil {
			metrics.ActionLogErrors.Inc()
			g.logger.WithError(err).WithField("index", rec.ActionIndex).Warn("publishing action")
		}
	}(rec)
}
