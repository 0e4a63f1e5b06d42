package domain

import "errors"

var (
	ErrOrderCreationFailed = errors.New("ecommerce order creation failed")
	ErrSyncUpdateFailed    = errors.New("ecommerce order sync update failed")
)
