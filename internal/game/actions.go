// internal/game/actions.go
package game

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/jason-s-yu/monopoly/internal/metrics"
	"github.com/jason-s-yu/monopoly/internal/models"
)

// actionFunc applies one action for p and appends what must be delivered to out.
// Messages already in out are delivered even when an error is returned.
type actionFunc func(g *Game, p *models.Player, a Action, out *batch) error

var actionTable map[string]actionFunc

func init() {
	actionTable = map[string]actionFunc{
		"end-turn":         endTurn,
		"send-player-info": sendPlayerInfo,
		"pay-bail":         payBail,
		"set-bail":         setBail,
		"connect":          connect,
		"start-game":       startGame,
		"teleport":         teleport,
		"roll":             roll,
		"set-details":      setDetails,
		"request-space":    requestSpace,
		"bankrupt":         bankrupt,
		"set-money":        setMoney,
		"buy":              buy,
		"start-auction":    startAuction,
		"bid":              bid,
		"buy-house":        buyHouse,
		"buy-hotel":        buyHotel,
		"sell-house":       sellHouse,
		"propose-trade":    proposeTrade,
		"accept-trade":     acceptTrade,
		"decline-trade":    declineTrade,
		"mortgage":         mortgage,
		"unmortgage":       unmortgage,
		"loan":             loan,
		"accept-loan":      acceptLoan,
		"decline-loan":     declineLoan,
		"pay-loan":         payLoan,
	}
}

// ActionNames lists the supported action names in sorted order.
func ActionNames() []string {
	names := make([]string, 0, len(actionTable))
	for n := range actionTable {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// --- guards ---

func (g *Game) requireStarted() error {
	if g.Over {
		return apperror.ErrGameOver
	}
	if !g.Started {
		return apperror.ErrGameNotStarted
	}
	return nil
}

func (g *Game) requireTurn(p *models.Player) error {
	if err := g.requireStarted(); err != nil {
		return err
	}
	if cur := g.curPlayer(); cur == nil || cur.ID != p.ID {
		return apperror.ErrNotYourTurn
	}
	return nil
}

func (g *Game) spaceArg(a Action) (*models.Space, error) {
	id, err := a.Int("spaceid")
	if err != nil {
		return nil, err
	}
	s := g.board.SpaceByID(id)
	if s == nil {
		return nil, fmt.Errorf("space %d: %w", id, apperror.ErrUnknownSpace)
	}
	return s, nil
}

func (g *Game) playerArg(a Action, key string) (*models.Player, error) {
	id, err := a.UUID(key)
	if err != nil {
		return nil, err
	}
	p := g.players[id]
	if p == nil {
		return nil, fmt.Errorf("player %s: %w", id, apperror.ErrUnknownPlayer)
	}
	return p, nil
}

func (g *Game) tradeByID(id uuid.UUID) *models.Trade {
	for _, t := range g.trades {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (g *Game) loanByID(id uuid.UUID) *models.Loan {
	for _, l := range g.loans {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// --- turn ---

func endTurn(g *Game, p *models.Player, a Action, out *batch) error {
	if err := g.requireTurn(p); err != nil {
		return err
	}
	if g.auction != nil {
		return apperror.ErrAuctionActive
	}
	prev := g.curPlayer()
	if prev.Bankrupt {
		return apperror.ErrBankrupt
	}
	g.advanceTurn()
	out.everyone(respond(RespTurnEnded, prev), g.nextTurn())
	return nil
}

func startGame(g *Game, p *models.Player, a Action, out *batch) error {
	if g.Over {
		return apperror.ErrGameOver
	}
	if g.Started {
		return apperror.ErrGameStarted
	}
	if len(g.active) < 2 {
		return apperror.ErrNotEnoughPlayers
	}
	g.Started = true
	g.startedAt = g.now()
	g.curTurn, g.playerTurn = 0, 1
	p.Host = true
	g.host = p.ID
	g.logger.WithField("players", len(g.active)).Info("game started")
	out.everyone(respond(RespLobbyState, g.lobbyState()), g.nextTurn())
	return nil
}

func roll(g *Game, p *models.Player, a Action, out *batch) error {
	if err := g.requireTurn(p); err != nil {
		return err
	}
	if g.auction != nil {
		return apperror.ErrAuctionActive
	}
	if g.hasRolled {
		return apperror.ErrAlreadyRolled
	}
	g.hasRolled = true
	r, sts, err := g.board.RollPlayer(p, g.Rules.DiceSides)
	out.statuses(sts)
	if err != nil {
		return err
	}
	out.sender(respond(RespRollComplete, map[string]int{"d1": r.D1, "d2": r.D2, "total": r.Total()}))
	out.everyone(g.updatedState()...)
	return nil
}

func bankrupt(g *Game, p *models.Player, a Action, out *batch) error {
	if p.Bankrupt {
		return apperror.ErrBankrupt
	}
	out.everyone(notification(models.Bankrupt(p.ID)))
	p.GoBankrupt()
	g.removeActive(p)
	metrics.Bankruptcies.Inc()
	out.sender(respond(RespPlayerInfo, p))

	if g.Started && len(g.active) < 2 {
		var winner *models.Player
		if len(g.active) == 1 {
			winner = g.active[0]
		}
		g.endGame(out, winner)
	}
	out.everyone(g.updatedState()...)
	return nil
}

// --- session and debug ---

func sendPlayerInfo(g *Game, p *models.Player, a Action, out *batch) error {
	out.sender(respond(RespPlayerInfo, p))
	return nil
}

func connect(g *Game, p *models.Player, a Action, out *batch) error {
	if p.Space == nil {
		return fmt.Errorf("connect %s: %w", p.ID, apperror.ErrPlayerOffBoard)
	}
	out.sender(respond(RespAssignment, p.ID.String()))
	out.everyone(respond(RespBoard, g.board.Snapshot()), g.nextTurn())
	out.sender(respond(RespCurrentSpace, p.Space))
	out.everyone(g.playerList())
	if g.auction != nil {
		out.everyone(respond(RespAuctionStatus, g.auction))
	}
	return nil
}

func setDetails(g *Game, p *models.Player, a Action, out *batch) error {
	var d Details
	if err := a.Decode("details", &d); err != nil {
		return err
	}
	if d.Name != "" {
		p.Name = d.Name
	}
	if d.Piece != "" {
		p.Piece = d.Piece
	}
	return nil
}

func requestSpace(g *Game, p *models.Player, a Action, out *batch) error {
	if p.Space == nil {
		return fmt.Errorf("request-space %s: %w", p.ID, apperror.ErrPlayerOffBoard)
	}
	out.sender(respond(RespCurrentSpace, p.Space))
	return nil
}

func setMoney(g *Game, p *models.Player, a Action, out *batch) error {
	money, err := a.Int("money")
	if err != nil {
		return err
	}
	p.Money = money
	return nil
}

func setBail(g *Game, p *models.Player, a Action, out *batch) error {
	s, err := g.spaceArg(a)
	if err != nil {
		return err
	}
	amount, err := a.Int("amount")
	if err != nil {
		return err
	}
	if s.Jail == nil {
		s.Jail = &models.JailAttrs{}
	}
	s.Jail.BailCost = amount
	out.everyone(g.updatedState()...)
	return nil
}

func teleport(g *Game, p *models.Player, a Action, out *batch) error {
	s, err := g.spaceArg(a)
	if err != nil {
		return err
	}
	target := p
	if _, ok := a.Fields["playerid"]; ok {
		if target, err = g.playerArg(a, "playerid"); err != nil {
			return err
		}
	}
	sts, err := g.board.MoveTo(target, s)
	out.statuses(sts)
	if err != nil {
		return err
	}
	out.everyone(g.updatedState()...)
	return nil
}

func payBail(g *Game, p *models.Player, a Action, out *batch) error {
	if !p.InJail {
		return apperror.ErrNotInJail
	}
	if p.Space == nil {
		return fmt.Errorf("pay-bail %s: %w", p.ID, apperror.ErrPlayerOffBoard)
	}
	out.statuses([]models.Status{p.PayBail(p.Space)})
	out.everyone(g.updatedState()...)
	return nil
}

// --- property ---

// propertyAction applies a model operation whose status is always broadcast.
func propertyAction(op func(p *models.Player, s *models.Space) models.Status) actionFunc {
	return func(g *Game, p *models.Player, a Action, out *batch) error {
		s, err := g.spaceArg(a)
		if err != nil {
			return err
		}
		out.everyone(notification(op(p, s)))
		out.everyone(g.updatedState()...)
		return nil
	}
}

var (
	buyHouse   = propertyAction((*models.Player).BuyHouse)
	buyHotel   = propertyAction((*models.Player).BuyHotel)
	sellHouse  = propertyAction((*models.Player).SellHouse)
	mortgage   = propertyAction((*models.Player).Mortgage)
	unmortgage = propertyAction((*models.Player).Unmortgage)
)

func buy(g *Game, p *models.Player, a Action, out *batch) error {
	if err := g.requireTurn(p); err != nil {
		return err
	}
	s, err := g.spaceArg(a)
	if err != nil {
		return err
	}
	out.everyone(notification(p.Buy(s)))
	out.everyone(g.updatedState()...)
	return nil
}

// --- auctions ---

func startAuction(g *Game, p *models.Player, a Action, out *batch) error {
	if err := g.requireStarted(); err != nil {
		return err
	}
	if g.auction != nil {
		return apperror.ErrAuctionActive
	}
	s, err := g.spaceArg(a)
	if err != nil {
		return err
	}
	if s.IsOwned() {
		return fmt.Errorf("auction space %d: %w", s.ID, apperror.ErrSpaceOwned)
	}
	out.everyone(respond(RespAuctionStatus, g.startAuction(s)))
	return nil
}

func bid(g *Game, p *models.Player, a Action, out *batch) error {
	if err := g.requireStarted(); err != nil {
		return err
	}
	amount, err := a.Int("bid")
	if err != nil {
		return err
	}
	if g.auction == nil {
		return apperror.ErrNoAuction
	}
	if p.Bankrupt || amount <= 0 || amount < g.auction.CurrentBid || p.Money < amount {
		return fmt.Errorf("bid %d against %d with $%d: %w", amount, g.auction.CurrentBid, p.Money, apperror.ErrInvalidBid)
	}
	g.placeBid(p, amount)
	out.everyone(respond(RespAuctionStatus, g.auction))
	return nil
}

// --- trades ---

func proposeTrade(g *Game, p *models.Player, a Action, out *batch) error {
	var terms models.TradeTerms
	if err := a.Decode("trade", &terms); err != nil {
		return err
	}
	if terms.Give.Money < 0 || terms.Want.Money < 0 {
		return fmt.Errorf("negative trade money: %w", apperror.ErrMalformedAction)
	}
	other, err := g.playerArg(a, "playerid")
	if err != nil {
		return err
	}
	if other.ID == p.ID {
		return apperror.ErrSelfTarget
	}
	t := models.NewTrade(terms, p.ID, other.ID)
	g.trades = append(g.trades, t)
	out.to(other.ID, respond(RespTradeProposal, t))
	out.everyone(g.updatedState()...)
	return nil
}

// acceptTrade re-checks both sides' assets before swapping them.
func acceptTrade(g *Game, p *models.Player, a Action, out *batch) error {
	id, err := a.UUID("id")
	if err != nil {
		return err
	}
	t := g.tradeByID(id)
	if t == nil {
		return fmt.Errorf("trade %s: %w", id, apperror.ErrUnknownTrade)
	}
	if t.Recipient != p.ID {
		return apperror.ErrNotParticipant
	}
	if t.Status != models.DealProposed {
		return apperror.ErrTradeNotPending
	}
	sender := g.players[t.Sender]
	if sender == nil {
		return fmt.Errorf("trade sender %s: %w", t.Sender, apperror.ErrUnknownPlayer)
	}
	if err := t.Validate(g.board, sender, p); err != nil {
		return err
	}
	sender.ExecuteTrade(g.board, p, t)
	out.everyone(g.updatedState()...)
	return nil
}

func declineTrade(g *Game, p *models.Player, a Action, out *batch) error {
	id, err := a.UUID("id")
	if err != nil {
		return err
	}
	t := g.tradeByID(id)
	if t == nil {
		return fmt.Errorf("trade %s: %w", id, apperror.ErrUnknownTrade)
	}
	if t.Recipient != p.ID && t.Sender != p.ID {
		return apperror.ErrNotParticipant
	}
	if t.Status != models.DealProposed {
		return apperror.ErrTradeNotPending
	}
	t.Status = models.DealDeclined
	out.everyone(g.updatedState()...)
	return nil
}

// --- loans ---

func loan(g *Game, p *models.Player, a Action, out *batch) error {
	var terms models.LoanTerms
	if err := a.Decode("loan", &terms); err != nil {
		return err
	}
	if err := terms.Validate(); err != nil {
		return err
	}

	if terms.IsBank() {
		if terms.Amount > models.BankLoanLimit(p.CreditScore) {
			return apperror.ErrCreditLimit
		}
		if terms.Type != models.LoanDeadline {
			return apperror.ErrBankLoanType
		}
		terms.Deadline = models.BankLoanDeadline(p.CreditScore)
		l := models.NewLoan(uuid.Nil, p.ID, terms, models.DealAccepted)
		g.loans = append(g.loans, l)
		p.TakeBankLoan(l)
		out.everyone(respond(RespAcceptedLoan, l))
		out.everyone(g.updatedState()...)
		return nil
	}

	loanerID, err := uuid.Parse(terms.Loaner)
	if err != nil {
		return fmt.Errorf("loaner %q: %w", terms.Loaner, apperror.ErrMalformedAction)
	}
	loaner := g.players[loanerID]
	if loaner == nil {
		return fmt.Errorf("loaner %s: %w", loanerID, apperror.ErrUnknownPlayer)
	}
	if loaner.ID == p.ID {
		return apperror.ErrSelfTarget
	}
	l := models.NewLoan(loaner.ID, p.ID, terms, models.DealProposed)
	g.loans = append(g.loans, l)
	out.to(loaner.ID, respond(RespLoanProposal, l))
	out.everyone(g.updatedState()...)
	return nil
}

func (g *Game) pendingLoan(a Action) (*models.Loan, error) {
	id, err := a.UUID("loan")
	if err != nil {
		return nil, err
	}
	l := g.loanByID(id)
	if l == nil {
		return nil, fmt.Errorf("loan %s: %w", id, apperror.ErrUnknownLoan)
	}
	if l.Status != models.DealProposed {
		return nil, apperror.ErrLoanNotPending
	}
	return l, nil
}

// acceptLoan is sent by the player asked to lend.
func acceptLoan(g *Game, p *models.Player, a Action, out *batch) error {
	l, err := g.pendingLoan(a)
	if err != nil {
		return err
	}
	if l.Loaner != p.ID {
		return apperror.ErrNotParticipant
	}
	loanee := g.players[l.Loanee]
	if loanee == nil {
		return fmt.Errorf("loanee %s: %w", l.Loanee, apperror.ErrUnknownPlayer)
	}
	if err := p.LoanPlayer(loanee, l); err != nil {
		return err
	}
	l.Status = models.DealAccepted
	out.everyone(respond(RespAcceptedLoan, l))
	out.everyone(g.updatedState()...)
	return nil
}

func declineLoan(g *Game, p *models.Player, a Action, out *batch) error {
	l, err := g.pendingLoan(a)
	if err != nil {
		return err
	}
	if l.Loaner != p.ID && l.Loanee != p.ID {
		return apperror.ErrNotParticipant
	}
	l.Status = models.DealDeclined
	out.everyone(g.updatedState()...)
	return nil
}

func payLoan(g *Game, p *models.Player, a Action, out *batch) error {
	id, err := a.UUID("loan")
	if err != nil {
		return err
	}
	amount, err := a.Int("amount")
	if err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("pay-loan amount %d: %w", amount, apperror.ErrMalformedAction)
	}
	l := p.LoanByID(id)
	if l == nil {
		return fmt.Errorf("loan %s: %w", id, apperror.ErrUnknownLoan)
	}
	amount = min(amount, l.TotalOwed)
	if amount > p.Money {
		return apperror.ErrInsufficientFunds
	}
	p.PayLoan(l, amount)
	out.everyone(g.updatedState()...)
	return nil
}
