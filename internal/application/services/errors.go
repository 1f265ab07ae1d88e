package services

import "errors"

var (
	// ErrInvalidAddress is returned for a malformed wallet address, before any upstream call
	ErrInvalidAddress = errors.New("invalid wallet address")

	// ErrNoActivity is returned when the transaction source has no transactions for a wallet
	ErrNoActivity = errors.New("no activity found for wallet")
)
