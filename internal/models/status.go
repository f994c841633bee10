package models

import "github.com/google/uuid"

// StatusKind names a notification produced by the economic model or the board.
type StatusKind string

const (
	StatusDueLoan           StatusKind = "due-loan"
	StatusBankrupt          StatusKind = "bankrupt"
	StatusDrawChance        StatusKind = "draw-chance"
	StatusFail              StatusKind = "fail"
	StatusMortgageSuccess   StatusKind = "mortgage-success"
	StatusUnmortgageSuccess StatusKind = "unmortgage-success"
	StatusBuyFail           StatusKind = "buy-fail"
	StatusBuyHouseFail      StatusKind = "buy-house-fail"
	StatusBuyHotelFail      StatusKind = "buy-hotel-fail"
	StatusBuySuccess        StatusKind = "buy-success"
	StatusBuyHouseSuccess   StatusKind = "buy-house-success"
	StatusBuyHotelSuccess   StatusKind = "buy-hotel-success"
	StatusBuyNewSet         StatusKind = "buy-new-set"
	StatusSellHouseSuccess  StatusKind = "sell-house-success"
	StatusSellHouseFail     StatusKind = "sell-house-fail"
	StatusPromptToBuy       StatusKind = "prompt-to-buy"
	StatusMoneyLost         StatusKind = "money-lost"
	StatusMoneyGiven        StatusKind = "money-given"
	StatusAuctionEnd        StatusKind = "auction-end"
	StatusPayOther          StatusKind = "pay-other"
	StatusPayTax            StatusKind = "pay-tax"
	StatusPassGo            StatusKind = "pass-go"
	StatusPayJail           StatusKind = "pay-jail"
)

var broadcastKinds = map[StatusKind]bool{
	StatusBankrupt:         true,
	StatusBuyHouseSuccess:  true,
	StatusBuyHotelSuccess:  true,
	StatusBuyNewSet:        true,
	StatusSellHouseSuccess: true,
	StatusMoneyLost:        true,
	StatusMoneyGiven:       true,
	StatusAuctionEnd:       true,
	StatusPayOther:         true,
	StatusPayTax:           true,
	StatusPassGo:           true,
	StatusPayJail:          true,
}

// Status is a single notification. Zero-valued fields are omitted on the wire.
type Status struct {
	Kind    StatusKind `json:"status"`
	Player  string     `json:"player,omitempty"`
	Other   string     `json:"other,omitempty"`
	Space   int        `json:"space,omitempty"`
	Amount  int        `json:"amount,omitempty"`
	Loan    string     `json:"loan,omitempty"`
	TaxName string     `json:"taxname,omitempty"`
	Event   string     `json:"event,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Broadcast reports whether the status goes to every client or only to the actor.
func (s Status) Broadcast() bool {
	return broadcastKinds[s.Kind]
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func DueLoan(loanID, player uuid.UUID) Status {
	return Status{Kind: StatusDueLoan, Loan: loanID.String(), Player: idString(player)}
}

func Bankrupt(player uuid.UUID) Status {
	return Status{Kind: StatusBankrupt, Player: idString(player)}
}

func DrawChance(event string, player uuid.UUID) Status {
	return Status{Kind: StatusDrawChance, Event: event, Player: idString(player)}
}

func Fail(player uuid.UUID) Status {
	return Status{Kind: StatusFail, Player: idString(player)}
}

func MortgageSuccess(player uuid.UUID, space int) Status {
	return Status{Kind: StatusMortgageSuccess, Player: idString(player), Space: space}
}

func UnmortgageSuccess(player uuid.UUID, space int) Status {
	return Status{Kind: StatusUnmortgageSuccess, Player: idString(player), Space: space}
}

func BuyFail(space int) Status         { return Status{Kind: StatusBuyFail, Space: space} }
func BuyHouseFail(space int) Status    { return Status{Kind: StatusBuyHouseFail, Space: space} }
func BuyHotelFail(space int) Status    { return Status{Kind: StatusBuyHotelFail, Space: space} }
func BuySuccess(space int) Status      { return Status{Kind: StatusBuySuccess, Space: space} }
func BuyHouseSuccess(space int) Status { return Status{Kind: StatusBuyHouseSuccess, Space: space} }
func BuyHotelSuccess(space int) Status { return Status{Kind: StatusBuyHotelSuccess, Space: space} }
func BuyNewSet(space int) Status       { return Status{Kind: StatusBuyNewSet, Space: space} }
func SellHouseFail(space int) Status   { return Status{Kind: StatusSellHouseFail, Space: space} }
func PromptToBuy(space int) Status     { return Status{Kind: StatusPromptToBuy, Space: space} }

func SellHouseSuccess(space, refund int) Status {
	return Status{Kind: StatusSellHouseSuccess, Space: space, Amount: refund}
}

func MoneyLost(player uuid.UUID, amount int) Status {
	return Status{Kind: StatusMoneyLost, Player: idString(player), Amount: amount}
}

func MoneyGiven(player uuid.UUID, amount int) Status {
	return Status{Kind: StatusMoneyGiven, Player: idString(player), Amount: amount}
}

func AuctionEnd(space int, auction map[string]interface{}) Status {
	return Status{Kind: StatusAuctionEnd, Space: space, Payload: auction}
}

func PayOther(amount int, payer, other uuid.UUID) Status {
	return Status{Kind: StatusPayOther, Amount: amount, Player: idString(payer), Other: idString(other)}
}

func PayTax(player uuid.UUID, amount int, taxName string) Status {
	return Status{Kind: StatusPayTax, Player: idString(player), Amount: amount, TaxName: taxName}
}

func PassGo(player uuid.UUID, earned int) Status {
	return Status{Kind: StatusPassGo, Player: idString(player), Amount: earned}
}

func PayJail(player uuid.UUID, cost int) Status {
	return Status{Kind: StatusPayJail, Player: idString(player), Amount: cost}
}
