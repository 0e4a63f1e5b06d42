package domain

import "errors"

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidRequest  = errors.New("invalid order request")
	ErrCrossLinkFailed = errors.New("cross-link failed")
	// ErrSideEffectFailed is only ever logged; it never reaches the caller.
	ErrSideEffectFailed = errors.New("side effect failed")
)
