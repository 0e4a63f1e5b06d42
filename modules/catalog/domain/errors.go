package domain

import "errors"

var (
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrProductNotFound  = errors.New("product not found in catalog")
	ErrProductNotMapped = errors.New("product has no CRM mapping")
	ErrNoItems          = errors.New("order has no resolvable items")
	ErrInvalidMapping   = errors.New("invalid product mapping")
)
