// internal/game/auction.go
package game

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/metrics"
	"github.com/jason-s-yu/monopoly/internal/models"
	"github.com/sirupsen/logrus"
)

// Auction is the single running auction of a game. Each one carries a generation so
// an expiry timer left over from an earlier auction cannot close a newer one.
type Auction struct {
	CurrentBid int
	Bidder     uuid.UUID
	Space      int
	Window     time.Duration

	gen int
	end time.Time
}

func (a *Auction) MarshalJSON() ([]byte, error) {
	var bidder *string
	if a.Bidder != uuid.Nil {
		s := a.Bidder.String()
		bidder = &s
	}
	return json.Marshal(struct {
		CurrentBid   int     `json:"current_bid"`
		Bidder       *string `json:"bidder"`
		EndTime      int64   `json:"end_time"`
		Space        int     `json:"space"`
		EndTimestamp int64   `json:"end_timestamp"`
	}{a.CurrentBid, bidder, a.Window.Milliseconds(), a.Space, a.Deadline().UnixMilli()})
}

// Deadline is when the auction closes unless another bid arrives.
func (a *Auction) Deadline() time.Time {
	return a.end
}

// startAuction opens an auction for space and arms its expiry timer. Assumes lock is held.
func (g *Game) startAuction(space *models.Space) *Auction {
	g.auctionGen++
	a := &Auction{Space: space.ID, Window: g.Rules.AuctionDuration, gen: g.auctionGen}
	a.end = g.now().Add(a.Window)
	g.auction = a
	g.armAuction(a.gen, a.Window)
	g.logger.WithFields(logrus.Fields{"space": space.ID, "gen": a.gen}).Debug("auction started")
	return a
}

// placeBid records a valid bid and pushes the deadline out by a full window.
func (g *Game) placeBid(p *models.Player, amount int) {
	a := g.auction
	a.Bidder = p.ID
	a.CurrentBid = amount
	a.end = g.now().Add(a.Window)
}

func (g *Game) armAuction(gen int, d time.Duration) {
	g.afterFunc(d, func() { g.auctionExpired(gen) })
}

// auctionExpired is the timer callback. It re-arms itself while bids have pushed the
// deadline into the future.
func (g *Game) auctionExpired(gen int) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	a := g.auction
	if a == nil || a.gen != gen {
		g.logger.WithField("gen", gen).Debug("stale auction timer fired")
		return
	}
	if remaining := a.Deadline().Sub(g.now()); remaining > 0 {
		g.armAuction(gen, remaining)
		return
	}

	var out batch
	g.endAuction(&out)
	ctx := context.Background()
	g.deliver(ctx, uuid.Nil, out)
	g.broadcast(ctx, g.playerList())
}

// endAuction settles the running auction. The winner pays the final bid; with no
// usable bid the space stays unowned. Assumes lock is held.
func (g *Game) endAuction(out *batch) {
	a := g.auction
	if a == nil {
		return
	}
	g.auction = nil

	sold := false
	space := g.board.SpaceByID(a.Space)
	if bidder := g.players[a.Bidder]; bidder != nil && space != nil && !bidder.Bankrupt && !space.IsOwned() {
		if err := bidder.TakeOwnership(space, a.CurrentBid); err != nil {
			g.logger.WithError(err).WithField("bidder", bidder.ID).Warn("auction winner cannot pay")
		} else {
			sold = true
		}
	}

	out.everyone(respond(RespAuctionEnd, a))
	if sold {
		metrics.Auctions.WithLabelValues("sold").Inc()
		out.everyone(g.updatedState()...)
	} else {
		metrics.Auctions.WithLabelValues("unsold").Inc()
	}

	raw, _ := json.Marshal(a)
	winner := uuid.Nil
	if sold {
		winner = a.Bidder
	}
	g.logAction(winner, RespAuctionEnd, raw)
}
