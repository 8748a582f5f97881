package models

import "errors"

var (
	ErrPayoutNotFound = errors.New("payout not found")
	ErrInvalidStatus  = errors.New("invalid payout status")
	ErrTerminalStatus = errors.New("payout is in a terminal status")
)
