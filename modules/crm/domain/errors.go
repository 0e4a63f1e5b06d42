package domain

import "errors"

var (
	// ErrContactNotFound is a normal lookup miss, not a failure.
	ErrContactNotFound         = errors.New("contact not found")
	ErrContactResolutionFailed = errors.New("contact resolution failed")
	ErrContactCreationFailed   = errors.New("contact creation failed")
	ErrDealCreationFailed      = errors.New("deal creation failed")
	ErrProductAttachFailed     = errors.New("attaching product to deal failed")
	ErrAuthFailed              = errors.New("crm authentication failed")
)
