package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
)

// TradeSide lists what one party hands over.
type TradeSide struct {
	Money      int   `json:"money,omitempty"`
	Properties []int `json:"properties,omitempty"`
}

// TradeTerms are named from the sender's point of view.
type TradeTerms struct {
	Give TradeSide `json:"give"`
	Want TradeSide `json:"want"`
}

type Trade struct {
	ID        uuid.UUID
	Terms     TradeTerms
	Sender    uuid.UUID
	Recipient uuid.UUID
	Status    DealStatus
}

func NewTrade(terms TradeTerms, sender, recipient uuid.UUID) *Trade {
	return &Trade{
		ID:        uuid.New(),
		Terms:     terms,
		Sender:    sender,
		Recipient: recipient,
		Status:    DealProposed,
	}
}

func (t *Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string     `json:"id"`
		Trade     TradeTerms `json:"trade"`
		Sender    string     `json:"sender"`
		Recipient string     `json:"recipient"`
		Status    DealStatus `json:"status"`
	}{t.ID.String(), t.Terms, t.Sender.String(), t.Recipient.String(), t.Status})
}

// Validate checks that both parties still hold what the trade names.
func (t *Trade) Validate(spaces SpaceLookup, sender, recipient *Player) error {
	if t.Terms.Give.Money < 0 || t.Terms.Want.Money < 0 {
		return fmt.Errorf("negative trade money: %w", apperror.ErrMalformedAction)
	}
	if sender.Money < t.Terms.Give.Money || recipient.Money < t.Terms.Want.Money {
		return fmt.Errorf("trade money: %w", apperror.ErrTradeAssetsMissing)
	}
	for _, id := range t.Terms.Give.Properties {
		if !sender.Owns(spaces.SpaceByID(id)) {
			return fmt.Errorf("sender no longer owns space %d: %w", id, apperror.ErrTradeAssetsMissing)
		}
	}
	for _, id := range t.Terms.Want.Properties {
		if !recipient.Owns(spaces.SpaceByID(id)) {
			return fmt.Errorf("recipient no longer owns space %d: %w", id, apperror.ErrTradeAssetsMissing)
		}
	}
	return nil
}

// ExecuteTrade swaps the assets of t with other, the give side first. p is the sender.
func (p *Player) ExecuteTrade(spaces SpaceLookup, other *Player, t *Trade) {
	for _, id := range t.Terms.Give.Properties {
		if s := spaces.SpaceByID(id); p.Owns(s) {
			p.transfer(s, other)
		}
	}
	if a := t.Terms.Give.Money; a > 0 {
		p.Pay(a, other)
	}
	for _, id := range t.Terms.Want.Properties {
		if s := spaces.SpaceByID(id); other.Owns(s) {
			other.transfer(s, p)
		}
	}
	if a := t.Terms.Want.Money; a > 0 {
		other.Pay(a, p)
	}
	t.Status = DealAccepted
}
