package models

import (
	"testing"

	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeRoundTrip(t *testing.T) {
	players, _ := newTestPlayers(2)
	a, b := players[0], players[1]
	x := newProperty(7, "green", 3)
	b.Buy(x)
	spaces := testSpaces{7: x}
	aBefore, bBefore := a.Money, b.Money

	tr := NewTrade(TradeTerms{Give: TradeSide{Money: 100}, Want: TradeSide{Properties: []int{7}}}, a.ID, b.ID)
	require.NoError(t, tr.Validate(spaces, a, b))
	a.ExecuteTrade(spaces, b, tr)

	assert.Equal(t, aBefore-100, a.Money)
	assert.Equal(t, bBefore+100, b.Money)
	assert.Equal(t, a.ID, x.Owner)
	assert.True(t, a.Owns(x))
	assert.False(t, b.Owns(x))
	assert.Equal(t, DealAccepted, tr.Status)
}

func TestTradeValidateMissingAssets(t *testing.T) {
	players, _ := newTestPlayers(2)
	a, b := players[0], players[1]
	x := newProperty(7, "green", 3)
	spaces := testSpaces{7: x}

	tr := NewTrade(TradeTerms{Want: TradeSide{Properties: []int{7}}}, a.ID, b.ID)
	err := tr.Validate(spaces, a, b)
	assert.ErrorIs(t, err, apperror.ErrTradeAssetsMissing)

	tr = NewTrade(TradeTerms{Give: TradeSide{Money: a.Money + 1}}, a.ID, b.ID)
	assert.ErrorIs(t, tr.Validate(spaces, a, b), apperror.ErrTradeAssetsMissing)
	assert.True(t, apperror.IsValidation(tr.Validate(spaces, a, b)))
}
