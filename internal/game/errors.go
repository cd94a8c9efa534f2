package game

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrInvalidResponse = errors.New("invalid decision response")
	ErrConservation    = errors.New("card conservation violated")
	ErrDecisionSource  = errors.New("decision source failed")
	ErrPileEmpty       = errors.New("pile empty")
	ErrNotInSupply     = errors.New("card not in supply")
	ErrCardNotInZone   = errors.New("card not in zone")
	ErrGameOver        = errors.New("game is over")
)

// IllegalMoveError is returned by Apply for an action outside its legal window.
// No state is mutated.
type IllegalMoveError struct {
	Action Action
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %q: %s", e.Action, e.Reason)
}

func (e *IllegalMoveError) Unwrap() error { return ErrIllegalMove }

// InvalidResponseError describes why a decision response was rejected.
type InvalidResponseError struct {
	Request DecisionRequest
	Reason  string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response to %q: %s", e.Request.Prompt, e.Reason)
}

func (e *InvalidResponseError) Unwrap() error { return ErrInvalidResponse }

// ConservationError reports an engine bug: a card identity's total changed.
type ConservationError struct {
	Card string
	Want int
	Got  int
	Dump string
}

func (e *ConservationError) Error() string {
	return fmt.Sprintf("conservation violated for %s: want %d, got %d", e.Card, e.Want, e.Got)
}

func (e *ConservationError) Unwrap() error { return ErrConservation }
