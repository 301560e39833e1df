package domain

import (
	"errors"
	"fmt"
)

// Rejections of player actions. A rejected action never mutates state.
var (
	ErrRoomFull         = errors.New("room already has 4 seated players")
	ErrNotEnoughPlayers = errors.New("4 seated players are required to start")
	ErrIllegalBid       = errors.New("illegal truco bid")
	ErrNotAllowed       = errors.New("action not allowed in the current state")

	// ErrIllegalMove is the parent of every card-play rejection.
	ErrIllegalMove       = errors.New("illegal move")
	ErrNotYourTurn       = fmt.Errorf("%w: not your turn", ErrIllegalMove)
	ErrInvalidCard       = fmt.Errorf("%w: invalid card", ErrIllegalMove)
	ErrInvalidHiddenPlay = fmt.Errorf("%w: hidden play not allowed", ErrIllegalMove)
)

// Wire names for the error kinds, most specific first.
var errorCodes = []struct {
	err  error
	code string
}{
	{ErrRoomFull, "RoomFullError"},
	{ErrNotEnoughPlayers, "NotEnoughPlayersError"},
	{ErrNotYourTurn, "NotYourTurnError"},
	{ErrInvalidCard, "InvalidCardError"},
	{ErrInvalidHiddenPlay, "InvalidHiddenPlayError"},
	{ErrIllegalMove, "IllegalMoveError"},
	{ErrIllegalBid, "IllegalBidError"},
	{ErrNotAllowed, "NotAllowedError"},
}

// ErrorCode returns the wire name of the error kind wrapped by err, or
// "InternalError" for errors outside the game's vocabulary.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "InternalError"
}
