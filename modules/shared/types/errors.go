package types

import "errors"

var (
	// ErrInvalidID covers malformed bot order ids and tracking ids.
	ErrInvalidID = errors.New("invalid identifier format")
	// ErrInvalidMoney covers unparseable amounts and bad currency codes.
	ErrInvalidMoney = errors.New("invalid money")
	// ErrCurrencyMismatch is returned when arithmetic mixes currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrAmountOverflow is returned when arithmetic leaves the minor-unit range.
	ErrAmountOverflow = errors.New("amount out of range")
)
