// internal/models/player_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRoster map[uuid.UUID]*Player

func (r testRoster) PlayerByID(id uuid.UUID) *Player { return r[id] }

type testSpaces map[int]*Space

func (s testSpaces) SpaceByID(id int) *Space { return s[id] }

func newTestPlayers(n int) ([]*Player, testRoster) {
	roster := testRoster{}
	players := make([]*Player, n)
	for i := range players {
		p := NewPlayer(uuid.New(), DefaultStartingMoney, roster)
		roster[p.ID] = p
		players[i] = p
	}
	return players, roster
}

func newProperty(id int, color string, setSize int) *Space {
	return &Space{
		ID:           id,
		Type:         SpaceProperty,
		Name:         color + " street",
		Cost:         100,
		Purchaseable: true,
		Property: &PropertyAttrs{
			Rent:      10,
			HouseRent: [4]int{50, 150, 450, 625},
			HotelRent: 750,
			HouseCost: 50,
			HotelCost: 50,
			Color:     color,
			SetSize:   setSize,
		},
	}
}

func TestBuyUnaffordableLeavesStateUnchanged(t *testing.T) {
	players, _ := newTestPlayers(1)
	p := players[0]
	p.Money = 50
	s := newProperty(1, "brown", 2)

	st := p.Buy(s)

	assert.Equal(t, StatusBuyFail, st.Kind)
	assert.Equal(t, 50, p.Money)
	assert.False(t, s.IsOwned())
	assert.Empty(t, p.OwnedSpaces())
}

func TestBuyCompletesSet(t *testing.T) {
	players, _ := newTestPlayers(1)
	p := players[0]
	a, b := newProperty(1, "brown", 2), newProperty(2, "brown", 2)

	assert.Equal(t, StatusBuySuccess, p.Buy(a).Kind)
	assert.Equal(t, StatusBuyNewSet, p.Buy(b).Kind)
	assert.Equal(t, DefaultStartingMoney-200, p.Money)
	assert.True(t, p.HoldsSet("brown"))
	assert.Equal(t, p.ID, b.Owner)

	// already owned
	other, _ := newTestPlayers(1)
	assert.Equal(t, StatusBuyFail, other[0].Buy(a).Kind)
}

func TestRentWithSetIsDoubled(t *testing.T) {
	players, _ := newTestPlayers(2)
	a, b := players[0], players[1]
	s1, s2 := newProperty(1, "brown", 2), newProperty(2, "brown", 2)
	a.Buy(s1)
	a.Buy(s2)
	aBefore, bBefore := a.Money, b.Money

	st := b.PayRent(a, s1)

	assert.Equal(t, 20, st.Amount)
	assert.Equal(t, bBefore-20, b.Money)
	assert.Equal(t, aBefore+20, a.Money)
}

func TestPropertyRentTable(t *testing.T) {
	s := newProperty(1, "brown", 2)
	assert.Equal(t, 10, s.PropertyRent(false))
	assert.Equal(t, 20, s.PropertyRent(true))
	for houses, want := range []int{50, 150, 450, 625} {
		s.Houses = houses + 1
		assert.Equal(t, want, s.PropertyRent(true))
	}
	s.Houses, s.Hotel = 0, true
	assert.Equal(t, 750, s.PropertyRent(true))
	s.Mortgaged = true
	assert.Zero(t, s.PropertyRent(true))
}

func TestMortgageRequiresOwner(t *testing.T) {
	players, _ := newTestPlayers(2)
	a, b := players[0], players[1]
	s := newProperty(1, "brown", 2)

	assert.Equal(t, StatusFail, a.Mortgage(s).Kind, "unowned space")
	a.Buy(s)
	assert.Equal(t, StatusFail, b.Mortgage(s).Kind)

	before := a.Money
	assert.Equal(t, StatusMortgageSuccess, a.Mortgage(s).Kind)
	assert.Equal(t, before+50, a.Money)
	assert.Equal(t, StatusFail, b.Unmortgage(s).Kind)
	assert.Equal(t, StatusUnmortgageSuccess, a.Unmortgage(s).Kind)
	assert.Equal(t, before+40, a.Money)
}

func TestEvenBuilding(t *testing.T) {
	players, _ := newTestPlayers(1)
	p := players[0]
	s1, s2 := newProperty(1, "brown", 2), newProperty(2, "brown", 2)
	assert.Equal(t, StatusBuyHouseFail, p.BuyHouse(s1).Kind, "not owned")
	p.Buy(s1)
	assert.Equal(t, StatusBuyHouseFail, p.BuyHouse(s1).Kind, "no set")
	p.Buy(s2)

	require.Equal(t, StatusBuyHouseSuccess, p.BuyHouse(s1).Kind)
	assert.Equal(t, StatusBuyHouseFail, p.BuyHouse(s1).Kind, "s2 is behind")
	require.Equal(t, StatusBuyHouseSuccess, p.BuyHouse(s2).Kind)

	// selling s2 is blocked while s1 is not higher; selling s1 first would leave s2 higher
	s1.Houses = 2
	assert.Equal(t, StatusSellHouseFail, p.SellHouse(s2).Kind)
	st := p.SellHouse(s1)
	assert.Equal(t, StatusSellHouseSuccess, st.Kind)
	assert.Equal(t, 25, st.Amount)
	assert.Equal(t, 1, s1.Houses)
}

func TestHotelLifecycle(t *testing.T) {
	players, _ := newTestPlayers(1)
	p := players[0]
	s1, s2 := newProperty(1, "brown", 2), newProperty(2, "brown", 2)
	p.Buy(s1)
	p.Buy(s2)
	s1.Houses, s2.Houses = 4, 3

	assert.Equal(t, StatusBuyHotelFail, p.BuyHotel(s1).Kind)
	s2.Houses = 4
	before := p.Money
	require.Equal(t, StatusBuyHotelSuccess, p.BuyHotel(s1).Kind)
	assert.True(t, s1.Hotel)
	assert.Zero(t, s1.Houses)
	assert.Equal(t, before-50, p.Money)

	assert.Equal(t, StatusSellHouseFail, p.SellHouse(s2).Kind, "s1 is higher")
	assert.Equal(t, StatusSellHouseSuccess, p.SellHouse(s1).Kind)
	assert.False(t, s1.Hotel)
	assert.Equal(t, 4, s1.Houses)
}

func TestDebtCascade(t *testing.T) {
	players, _ := newTestPlayers(2)
	a, b := players[0], players[1]
	a.Money = 30
	bBefore := b.Money

	a.Pay(100, b)

	assert.Equal(t, -70, a.Money)
	assert.Equal(t, bBefore+30, b.Money)
	assert.Equal(t, b.ID, a.InDebtTo)

	a.Gain(50)
	assert.Equal(t, -20, a.Money)
	assert.Equal(t, bBefore+80, b.Money)
	assert.Equal(t, b.ID, a.InDebtTo)

	a.Gain(50)
	assert.Equal(t, 30, a.Money)
	assert.Equal(t, bBefore+100, b.Money)
	assert.Equal(t, uuid.Nil, a.InDebtTo)
}

func TestBankruptcyPaysWorthAndReleases(t *testing.T) {
	players, _ := newTestPlayers(2)
	a, b := players[0], players[1]
	s1, s2 := newProperty(1, "brown", 2), newProperty(2, "brown", 2)
	a.Buy(s1)
	a.Buy(s2)
	s1.Houses = 1
	s2.Mortgaged = true
	a.Money = 0
	a.Pay(500, b)
	worth := a.PropertyWorth()
	require.Equal(t, 50+25, worth)
	bBefore := b.Money

	a.GoBankrupt()

	assert.True(t, a.Bankrupt)
	assert.Equal(t, bBefore+worth, b.Money)
	assert.Empty(t, a.OwnedSpaces())
	assert.False(t, s1.IsOwned())
	assert.False(t, s2.IsOwned())
	assert.Zero(t, s1.Houses)
}

func TestJailEscapeRules(t *testing.T) {
	players, _ := newTestPlayers(1)
	p := players[0]
	jail := &Space{ID: 10, Type: SpaceJail, Name: "jail", Jail: &JailAttrs{BailCost: 50}}

	p.GotoJail(jail)
	for i := 0; i < 10; i++ {
		assert.Equal(t, JailFail, p.TryLeaveJailWithDice(true, 4, 3))
	}
	assert.Equal(t, JailEscape, p.TryLeaveJailWithDice(true, 5, 4))

	p.GotoJail(jail)
	assert.Equal(t, JailFail, p.TryLeaveJailWithDice(false, 6, 5))
	assert.Equal(t, JailFail, p.TryLeaveJailWithDice(false, 6, 5))
	assert.Equal(t, JailForceLeave, p.TryLeaveJailWithDice(false, 6, 5))

	p.GotoJail(jail)
	assert.Equal(t, JailEscape, p.TryLeaveJailWithDice(false, 2, 2))

	before := p.Money
	st := p.PayBail(jail)
	assert.Equal(t, StatusPayJail, st.Kind)
	assert.Equal(t, before-50, p.Money)
	assert.False(t, p.InJail)
}

func TestPlayerSnapshotJSON(t *testing.T) {
	players, _ := newTestPlayers(1)
	p := players[0]
	p.Name = "alice"
	p.Buy(newProperty(3, "brown", 2))

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ownedSpaces":[3]`)
	assert.Contains(t, string(data), `"name":"alice"`)
	assert.NotContains(t, string(data), "inDebtTo")
}

func TestPropertyWorthHalvesOddCosts(t *testing.T) {
	players, _ := newTestPlayers(1)
	p := players[0]
	s := newProperty(1, "brown", 2)
	s.Cost = 75
	p.Buy(s)
	s.Houses = 1

	assert.Equal(t, 37+25, p.PropertyWorth())
}
