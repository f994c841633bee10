// internal/models/house_rules.go
package models

import "time"

// HouseRules captures the per-game configuration chosen when the game is created.
type HouseRules struct {
	// StartingMoney is credited to every player on join.
	StartingMoney int `json:"startingMoney"`

	// DiceSides is the number of faces on each of the two dice.
	DiceSides int `json:"diceSides"`

	// AuctionDuration is the initial auction window. Each bid extends the deadline by the same amount.
	AuctionDuration time.Duration `json:"auctionDuration"`
}

// DefaultHouseRules mirrors the classic game.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		StartingMoney:   DefaultStartingMoney,
		DiceSides:       6,
		AuctionDuration: 10 * time.Second,
	}
}

// Normalize fills zero fields with defaults.
func (h HouseRules) Normalize() HouseRules {
	d := DefaultHouseRules()
	if h.StartingMoney <= 0 {
		h.StartingMoney = d.StartingMoney
	}
	if h.DiceSides <= 0 {
		h.DiceSides = d.DiceSides
	}
	if h.AuctionDuration <= 0 {
		h.AuctionDuration = d.AuctionDuration
	}
	return h
}
