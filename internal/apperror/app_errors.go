// Package apperror holds the sentinel errors shared by the board, game and transport layers.
//
// Every sentinel wraps one of two roots. ErrValidation marks a player-facing rejection
// (wrong turn, bad id, not enough money); ErrInternal marks a broken invariant that
// should never happen with consistent state.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("invalid action")
	ErrInternal   = errors.New("internal error")
)

// validation failures
var (
	ErrNotYourTurn         = fmt.Errorf("%w: it's not your turn", ErrValidation)
	ErrGameNotStarted      = fmt.Errorf("%w: game is not started", ErrValidation)
	ErrGameStarted         = fmt.Errorf("%w: game has already started", ErrValidation)
	ErrGameOver            = fmt.Errorf("%w: game is over", ErrValidation)
	ErrNotEnoughPlayers    = fmt.Errorf("%w: at least two players are needed", ErrValidation)
	ErrAlreadyRolled       = fmt.Errorf("%w: you have already rolled this turn", ErrValidation)
	ErrAuctionActive       = fmt.Errorf("%w: an auction is in progress", ErrValidation)
	ErrNoAuction           = fmt.Errorf("%w: there is no auction running", ErrValidation)
	ErrInvalidBid          = fmt.Errorf("%w: invalid bid", ErrValidation)
	ErrUnknownSpace        = fmt.Errorf("%w: space does not exist", ErrValidation)
	ErrUnknownPlayer       = fmt.Errorf("%w: player does not exist", ErrValidation)
	ErrUnknownTrade        = fmt.Errorf("%w: trade does not exist", ErrValidation)
	ErrUnknownLoan         = fmt.Errorf("%w: loan does not exist", ErrValidation)
	ErrMalformedAction     = fmt.Errorf("%w: malformed action", ErrValidation)
	ErrInsufficientFunds   = fmt.Errorf("%w: insufficient funds", ErrValidation)
	ErrNotInJail           = fmt.Errorf("%w: player is not in jail", ErrValidation)
	ErrBankrupt            = fmt.Errorf("%w: player is bankrupt", ErrValidation)
	ErrSpaceOwned          = fmt.Errorf("%w: space is already owned", ErrValidation)
	ErrTradeNotPending     = fmt.Errorf("%w: trade is no longer pending", ErrValidation)
	ErrTradeAssetsMissing  = fmt.Errorf("%w: trade assets are no longer available", ErrValidation)
	ErrLoanNotPending      = fmt.Errorf("%w: loan is no longer pending", ErrValidation)
	ErrCreditLimit         = fmt.Errorf("%w: your credit score is not high enough for this loan", ErrValidation)
	ErrBankLoanType        = fmt.Errorf("%w: bank loans must use a deadline", ErrValidation)
	ErrSelfTarget          = fmt.Errorf("%w: cannot target yourself", ErrValidation)
	ErrNotParticipant      = fmt.Errorf("%w: you are not part of this deal", ErrValidation)
	ErrUnknownBoard        = fmt.Errorf("%w: board does not exist", ErrValidation)
	ErrUnknownGame         = fmt.Errorf("%w: game does not exist", ErrValidation)
	ErrInvalidSessionToken = fmt.Errorf("%w: invalid session token", ErrValidation)
)

// structural failures
var (
	ErrPlayerOffBoard = fmt.Errorf("%w: player is not on a space", ErrInternal)
	ErrBrokenRing     = fmt.Errorf("%w: board is not circular", ErrInternal)
	ErrSpaceMissing   = fmt.Errorf("%w: required space is missing", ErrInternal)
)

// IsValidation reports whether err is a player-facing rejection.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// Message returns the text sent to a client for err. Internal details are not exposed.
func Message(err error) string {
	if IsValidation(err) {
		return err.Error()
	}
	return ErrInternal.Error()
}
