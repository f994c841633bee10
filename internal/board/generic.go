package board

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/models"
)

const (
	defaultIncomeTaxPercent = 10
	defaultLuxuryTax        = 75
)

// railroadRent is keyed by the number of railroads the owner holds.
var railroadRent = [...]int{0, 25, 50, 100, 100}

// Universal are the handlers every board falls back to.
var Universal = Handlers{
	EventLand:                 onland,
	EventPass:                 onpass,
	EventRoll:                 onroll,
	EventLand + "_go_to_jail": onlandGotoJail,
	EventLand + "_income_tax": onlandIncomeTax,
	EventLand + "_luxury_tax": onlandLuxuryTax,
	EventPass + "_passing_go": onpassGo,
}

func (b *Board) player(id uuid.UUID) *models.Player {
	if id == uuid.Nil {
		return nil
	}
	for _, p := range b.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func onpass(c *Context) ([]models.Status, error) {
	if c.Space.Type == models.SpaceGo {
		return onpassGo(c)
	}
	return nil, nil
}

func onpassGo(c *Context) ([]models.Status, error) {
	earned := abs(c.Space.Cost)
	c.Player.Gain(earned)
	return []models.Status{models.PassGo(c.Player.ID, earned)}, nil
}

func onland(c *Context) ([]models.Status, error) {
	s, p := c.Space, c.Player
	if s.Cost < 0 {
		p.Gain(-s.Cost)
		return []models.Status{models.MoneyGiven(p.ID, -s.Cost)}, nil
	}
	switch s.Type {
	case models.SpaceGotoJail:
		return onlandGotoJail(c)
	case models.SpaceIncomeTax:
		return onlandIncomeTax(c)
	case models.SpaceLuxuryTax:
		return onlandLuxuryTax(c)
	case models.SpaceChance, models.SpaceCommunityChest:
		return c.Board.DrawAndExecute(p)
	}

	var out []models.Status
	if !s.IsOwned() && s.Purchaseable {
		out = append(out, models.PromptToBuy(s.ID))
	}
	if s.IsOwned() && s.Owner != p.ID {
		if st, ok := c.Board.chargeRent(s, p); ok {
			out = append(out, st)
		}
	}
	return out, nil
}

// chargeRent collects rent for s from p. ok is false when nothing was owed.
func (b *Board) chargeRent(s *models.Space, p *models.Player) (models.Status, bool) {
	owner := b.player(s.Owner)
	if owner == nil || owner.Bankrupt || s.Mortgaged {
		return models.Status{}, false
	}
	var owed int
	switch s.Type {
	case models.SpaceUtility:
		owed = owner.Utilities() * p.LastRoll
	case models.SpaceRailroad:
		owed = railroadRent[min(owner.Railroads(), len(railroadRent)-1)]
	case models.SpaceProperty:
		if s.Property == nil {
			return models.Status{}, false
		}
		return p.PayRent(owner, s), true
	}
	if owed == 0 {
		return models.Status{}, false
	}
	p.Pay(owed, owner)
	return models.PayOther(owed, p.ID, owner.ID), true
}

func onlandGotoJail(c *Context) ([]models.Status, error) {
	jail := c.Board.FindJail()
	if jail == nil {
		return nil, nil
	}
	c.Player.GotoJail(jail)
	return c.Board.MoveTo(c.Player, jail)
}

// onlandIncomeTax charges a percentage of the player's money, computed once.
func onlandIncomeTax(c *Context) ([]models.Status, error) {
	pct := defaultIncomeTaxPercent
	if c.Space.Tax != nil && c.Space.Tax.Percent > 0 {
		pct = c.Space.Tax.Percent
	}
	amount := models.Percent(max(c.Player.Money, 0), pct)
	c.Player.PayBank(amount)
	return []models.Status{models.PayTax(c.Player.ID, amount, "income")}, nil
}

func onlandLuxuryTax(c *Context) ([]models.Status, error) {
	amount := defaultLuxuryTax
	if c.Space.Tax != nil && c.Space.Tax.Amount > 0 {
		amount = c.Space.Tax.Amount
	}
	c.Player.PayBank(amount)
	return []models.Status{models.PayTax(c.Player.ID, amount, "luxury")}, nil
}

// onroll resolves a jail escape attempt and then moves the player by the roll.
func onroll(c *Context) ([]models.Status, error) {
	p := c.Player

	var out []models.Status
	if p.InJail {
		jail := c.Space
		switch p.TryLeaveJailWithDice(jail.IsOwned(), c.Roll.D1, c.Roll.D2) {
		case models.JailEscape:
			p.LeaveJail()
		case models.JailForceLeave:
			out = append(out, p.PayBail(jail))
		default:
			return out, nil
		}
	}
	st, err := c.Board.Move(p, c.Roll.Total())
	return append(out, st...), err
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
