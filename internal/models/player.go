package models

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
)

const (
	DefaultStartingMoney = 1500
	DefaultCreditScore   = 300
	MaxCreditScore       = 800
	JailDoubleAttempts   = 3
	// CreditPenalty is charged for a missed loan deadline or an unpaid installment.
	CreditPenalty = 100
)

// Roster resolves player ids to live players. Players use it to reach their creditor
// and loaners at the point of use instead of holding pointers to each other.
type Roster interface {
	PlayerByID(id uuid.UUID) *Player
}

// SpaceLookup resolves a space id on the current board.
type SpaceLookup interface {
	SpaceByID(id int) *Space
}

// JailOutcome is the result of an escape attempt with dice.
type JailOutcome int

const (
	JailFail JailOutcome = iota
	JailEscape
	JailForceLeave
)

// Player holds the economic state of one participant.
type Player struct {
	ID    uuid.UUID
	Name  string
	Piece string
	Color string

	Money                int
	CreditScore          int
	InJail               bool
	JailDoublesRemaining int
	Bankrupt             bool
	InDebtTo             uuid.UUID
	LastRoll             int
	Host                 bool

	Loans []*Loan
	Space *Space

	owned  map[int]*Space
	sets   map[string]bool
	roster Roster
}

// NewPlayer builds a player with the default credit score and a random pastel colour.
func NewPlayer(id uuid.UUID, money int, roster Roster) *Player {
	return &Player{
		ID:                   id,
		Color:                fmt.Sprintf("#%x%x%x", 180+rand.IntN(76), 180+rand.IntN(76), 180+rand.IntN(76)),
		Money:                money,
		CreditScore:          DefaultCreditScore,
		JailDoublesRemaining: JailDoubleAttempts,
		owned:                make(map[int]*Space),
		sets:                 make(map[string]bool),
		roster:               roster,
	}
}

func (p *Player) lookup(id uuid.UUID) *Player {
	if id == uuid.Nil || p.roster == nil {
		return nil
	}
	return p.roster.PlayerByID(id)
}

// Owns reports whether space belongs to p.
func (p *Player) Owns(space *Space) bool {
	return space != nil && space.Owner == p.ID && p.owned[space.ID] == space
}

// OwnedSpaces returns p's holdings ordered by space id.
func (p *Player) OwnedSpaces() []*Space {
	out := make([]*Space, 0, len(p.owned))
	for _, s := range p.owned {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Sets returns the colours p holds completely, sorted.
func (p *Player) Sets() []string {
	out := make([]string, 0, len(p.sets))
	for c := range p.sets {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// HoldsSet reports whether p holds every space of color.
func (p *Player) HoldsSet(color string) bool {
	return color != "" && p.sets[color]
}

// claim records ownership on both sides and returns colours that became complete.
func (p *Player) claim(space *Space) []string {
	space.Owner = p.ID
	p.owned[space.ID] = space
	return p.refreshSets()
}

// release gives up ownership on both sides.
func (p *Player) release(space *Space) {
	if space.Owner == p.ID {
		space.Owner = uuid.Nil
	}
	delete(p.owned, space.ID)
	p.refreshSets()
}

// refreshSets recomputes the complete colour sets and returns the ones that are new.
func (p *Player) refreshSets() []string {
	counts := make(map[string]int)
	sizes := make(map[string]int)
	for _, s := range p.owned {
		if c := s.Color(); c != "" && s.Property.SetSize > 0 {
			counts[c]++
			sizes[c] = s.Property.SetSize
		}
	}
	var added []string
	next := make(map[string]bool)
	for c, n := range counts {
		if n >= sizes[c] {
			next[c] = true
			if !p.sets[c] {
				added = append(added, c)
			}
		}
	}
	p.sets = next
	return added
}

// transfer moves space from p to other.
func (p *Player) transfer(space *Space, other *Player) {
	p.release(space)
	other.claim(space)
}

func (p *Player) setMembers(color string) []*Space {
	var out []*Space
	for _, s := range p.owned {
		if s.Color() == color {
			out = append(out, s)
		}
	}
	return out
}

// PropertyWorth is half the face value of every unmortgaged holding including buildings.
func (p *Player) PropertyWorth() int {
	worth := 0
	for _, s := range p.owned {
		if s.Mortgaged {
			continue
		}
		worth += Half(s.Cost)
		if s.Houses != 0 {
			worth += Half(s.houseCost() * s.Houses)
		}
		if s.Hotel {
			worth += Half(s.hotelCost())
		}
	}
	return worth
}

// Utilities counts the utilities p owns.
func (p *Player) Utilities() int {
	return p.countType(SpaceUtility)
}

// Railroads counts the railroads p owns.
func (p *Player) Railroads() int {
	return p.countType(SpaceRailroad)
}

func (p *Player) countType(t SpaceType) int {
	n := 0
	for _, s := range p.owned {
		if s.Type == t {
			n++
		}
	}
	return n
}

// Gain credits amount to p. While p is in debt, the part that covers the negative
// balance is forwarded to the creditor first.
func (p *Player) Gain(amount int) {
	if p.InDebtTo != uuid.Nil {
		if creditor := p.lookup(p.InDebtTo); creditor != nil && p.Money < 0 && amount > 0 {
			creditor.Gain(min(amount, -p.Money))
		}
	}
	p.Money += amount
	if p.Money >= 0 {
		p.InDebtTo = uuid.Nil
	}
}

// Pay transfers amount to other. The payee only receives what p could cover;
// any shortfall leaves p negative and records other as the creditor.
func (p *Player) Pay(amount int, other *Player) {
	if other == nil {
		p.PayBank(amount)
		return
	}
	covered := min(amount, max(p.Money, 0))
	p.Money -= amount
	if covered > 0 {
		other.Gain(covered)
	}
	if p.Money < 0 && p.InDebtTo == uuid.Nil {
		p.InDebtTo = other.ID
	}
}

// PayBank removes amount from p with no counterparty.
func (p *Player) PayBank(amount int) {
	p.Money -= amount
}

// PayRent charges p the property rent of space to its owner.
func (p *Player) PayRent(owner *Player, space *Space) Status {
	amount := space.PropertyRent(owner.HoldsSet(space.Color()))
	p.Pay(amount, owner)
	return PayOther(amount, p.ID, owner.ID)
}

// TakeOwnership buys space at an arbitrary price, e.g. an auction result.
func (p *Player) TakeOwnership(space *Space, cost int) error {
	if cost > p.Money {
		return fmt.Errorf("cannot buy %s for $%d with $%d: %w", space.Name, cost, p.Money, apperror.ErrInsufficientFunds)
	}
	p.Money -= cost
	p.claim(space)
	return nil
}

// Buy purchases space at face value.
func (p *Player) Buy(space *Space) Status {
	if space.Cost > p.Money || !space.Purchaseable || space.IsOwned() {
		return BuyFail(space.ID)
	}
	p.Money -= space.Cost
	for _, c := range p.claim(space) {
		if c == space.Color() {
			return BuyNewSet(space.ID)
		}
	}
	return BuySuccess(space.ID)
}

// Mortgage grants half the face cost; only the owner may mortgage.
func (p *Player) Mortgage(space *Space) Status {
	if !space.IsOwned() || !p.Owns(space) || space.Mortgaged {
		return Fail(p.ID)
	}
	space.Mortgaged = true
	p.Gain(Half(space.Cost))
	return MortgageSuccess(p.ID, space.ID)
}

// Unmortgage costs a tenth of the face cost; only the owner may unmortgage.
func (p *Player) Unmortgage(space *Space) Status {
	if !space.IsOwned() || !p.Owns(space) || !space.Mortgaged {
		return Fail(p.ID)
	}
	p.PayBank(Percent(space.Cost, 10))
	space.Mortgaged = false
	return UnmortgageSuccess(p.ID, space.ID)
}

// CanBuyHouse enforces set ownership, funds, the four-house cap and even building.
func (p *Player) CanBuyHouse(space *Space) bool {
	if !p.Owns(space) || !p.HoldsSet(space.Color()) || space.Mortgaged {
		return false
	}
	if p.Money < space.houseCost() || space.Hotel || space.Houses >= 4 {
		return false
	}
	for _, s := range p.setMembers(space.Color()) {
		if s.Level() < space.Level() {
			return false
		}
	}
	return true
}

func (p *Player) BuyHouse(space *Space) Status {
	if !p.CanBuyHouse(space) {
		return BuyHouseFail(space.ID)
	}
	p.Money -= space.houseCost()
	space.Houses++
	return BuyHouseSuccess(space.ID)
}

// CanBuyHotel requires every owned set member at four houses or better.
func (p *Player) CanBuyHotel(space *Space) bool {
	if !p.Owns(space) || !p.HoldsSet(space.Color()) || space.Hotel {
		return false
	}
	if p.Money < space.hotelCost() || space.Houses < 4 {
		return false
	}
	for _, s := range p.setMembers(space.Color()) {
		if s.Level() < 4 {
			return false
		}
	}
	return true
}

// BuyHotel replaces the four houses with a hotel.
func (p *Player) BuyHotel(space *Space) Status {
	if !p.CanBuyHotel(space) {
		return BuyHotelFail(space.ID)
	}
	p.Money -= space.hotelCost()
	space.Houses = 0
	space.Hotel = true
	return BuyHotelSuccess(space.ID)
}

// SellHouse reverses one building step for half its cost. It is refused when another
// member of the set is built higher than space.
func (p *Player) SellHouse(space *Space) Status {
	if !p.Owns(space) || space.Level() == 0 {
		return SellHouseFail(space.ID)
	}
	for _, s := range p.setMembers(space.Color()) {
		if s.Level() > space.Level() {
			return SellHouseFail(space.ID)
		}
	}
	var refund int
	if space.Hotel {
		space.Hotel = false
		space.Houses = 4
		refund = Half(space.hotelCost())
	} else {
		space.Houses--
		refund = Half(space.houseCost())
	}
	p.Gain(refund)
	return SellHouseSuccess(space.ID, refund)
}

// GoBankrupt marks p bankrupt, pays the creditor p's property worth and releases
// every holding back to the bank with its buildings cleared.
func (p *Player) GoBankrupt() {
	p.Bankrupt = true
	if creditor := p.lookup(p.InDebtTo); creditor != nil {
		creditor.Gain(p.PropertyWorth())
	}
	for _, s := range p.OwnedSpaces() {
		s.Houses = 0
		s.Hotel = false
		s.Mortgaged = false
		p.release(s)
	}
}

// GotoJail places p in jail and resets the escape attempts.
func (p *Player) GotoJail(jail *Space) {
	p.JailDoublesRemaining = JailDoubleAttempts
	p.InJail = true
	p.Space = jail
}

func (p *Player) LeaveJail() {
	p.InJail = false
}

// PayBail pays the jail's bail to its owner, or to the bank when unowned, and frees p.
func (p *Player) PayBail(jail *Space) Status {
	cost := jail.BailCost()
	if owner := p.lookup(jail.Owner); owner != nil && owner.ID != p.ID {
		p.Pay(cost, owner)
	} else {
		p.PayBank(cost)
	}
	p.LeaveJail()
	return PayJail(p.ID, cost)
}

// TryLeaveJailWithDice applies the escape rules. An owned jail lets a total of nine or
// more out with unlimited attempts; an unowned jail needs doubles within three tries.
func (p *Player) TryLeaveJailWithDice(jailOwned bool, d1, d2 int) JailOutcome {
	if jailOwned {
		if d1+d2 >= 9 {
			return JailEscape
		}
		return JailFail
	}
	if d1 == d2 {
		return JailEscape
	}
	p.JailDoublesRemaining--
	if p.JailDoublesRemaining <= 0 {
		return JailForceLeave
	}
	return JailFail
}

// MarshalJSON renders the player snapshot sent in player-list and player-info.
func (p *Player) MarshalJSON() ([]byte, error) {
	spaceID := 0
	if p.Space != nil {
		spaceID = p.Space.ID
	}
	owned := make([]int, 0, len(p.owned))
	for _, s := range p.OwnedSpaces() {
		owned = append(owned, s.ID)
	}
	loans := make([]string, 0, len(p.Loans))
	for _, l := range p.Loans {
		loans = append(loans, l.ID.String())
	}
	return json.Marshal(struct {
		ID                   string   `json:"id"`
		Name                 string   `json:"name"`
		Piece                string   `json:"piece"`
		Color                string   `json:"color"`
		Money                int      `json:"money"`
		CreditScore          int      `json:"creditScore"`
		InJail               bool     `json:"inJail"`
		JailDoublesRemaining int      `json:"jailDoublesRemaining"`
		Bankrupt             bool     `json:"bankrupt"`
		InDebtTo             string   `json:"inDebtTo,omitempty"`
		LastRoll             int      `json:"lastRoll"`
		Host                 bool     `json:"host"`
		Space                int      `json:"space"`
		OwnedSpaces          []int    `json:"ownedSpaces"`
		Sets                 []string `json:"sets"`
		Loans                []string `json:"loans"`
	}{
		ID: p.ID.String(), Name: p.Name, Piece: p.Piece, Color: p.Color,
		Money: p.Money, CreditScore: p.CreditScore,
		InJail: p.InJail, JailDoublesRemaining: p.JailDoublesRemaining,
		Bankrupt: p.Bankrupt, InDebtTo: idString(p.InDebtTo),
		LastRoll: p.LastRoll, Host: p.Host, Space: spaceID,
		OwnedSpaces: owned, Sets: p.Sets(), Loans: loans,
	})
}
