// internal/game/events.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/jason-s-yu/monopoly/internal/models"
)

// Outbound response names.
const (
	RespAssignment    = "assignment"
	RespBoard         = "board"
	RespNextTurn      = "next-turn"
	RespTurnEnded     = "turn-ended"
	RespPlayerList    = "player-list"
	RespPlayerInfo    = "player-info"
	RespCurrentSpace  = "current-space"
	RespAuctionStatus = "auction-status"
	RespAuctionEnd    = "auction-end"
	RespTradeProposal = "trade-proposal"
	RespTradeList     = "trade-list"
	RespLoanProposal  = "loan-proposal"
	RespAcceptedLoan  = "accepted-loan"
	RespLoanList      = "loan-list"
	RespLobbyState    = "lobby-state"
	RespNotification  = "notification"
	RespError         = "error"
	RespGameEnd       = "game-end"
	RespReconnect     = "reconnect"
	RespJoinGame      = "join-game"
	RespPrompt        = "prompt"
	RespRollComplete  = "roll-complete"
	RespSession       = "session"
)

// Response is one outbound message: {"response": name, "value": ...}.
type Response struct {
	Response string      `json:"response"`
	Value    interface{} `json:"value,omitempty"`
}

func respond(name string, value interface{}) Response {
	return Response{Response: name, Value: value}
}

func notification(s models.Status) Response {
	return Response{Response: RespNotification, Value: s}
}

func errorResponse(err error) Response {
	return Response{Response: RespError, Value: apperror.Message(err)}
}

type audienceKind int

const (
	toSender audienceKind = iota
	toEveryone
	toPlayer
)

// Audience selects who receives an Outbound batch.
type Audience struct {
	kind audienceKind
	id   uuid.UUID
}

var (
	Sender   = Audience{kind: toSender}
	Everyone = Audience{kind: toEveryone}
)

// To addresses one specific player.
func To(id uuid.UUID) Audience {
	return Audience{kind: toPlayer, id: id}
}

// Outbound is a group of messages delivered together to one audience.
type Outbound struct {
	To       Audience
	Messages []Response
}

// batch accumulates the output of one action in order.
type batch []Outbound

func (b *batch) add(to Audience, msgs ...Response) {
	if len(msgs) == 0 {
		return
	}
	*b = append(*b, Outbound{To: to, Messages: msgs})
}

func (b *batch) sender(msgs ...Response)   { b.add(Sender, msgs...) }
func (b *batch) everyone(msgs ...Response) { b.add(Everyone, msgs...) }

func (b *batch) to(id uuid.UUID, msgs ...Response) { b.add(To(id), msgs...) }

// statuses routes each status by its own broadcast flag.
func (b *batch) statuses(sts []models.Status) {
	for _, s := range sts {
		if s.Broadcast() {
			b.everyone(notification(s))
		} else {
			b.sender(notification(s))
		}
	}
}
