package domain

import "context"

// Capabilities is the set of CRM operations the bridge depends on.
// The HTTP client implements it; tests substitute fakes.
type Capabilities interface {
	// FindContactByMessengerID returns ErrContactNotFound on a miss.
	FindContactByMessengerID(ctx context.Context, externalID string) (*Contact, error)
	SearchContactsByPhone(ctx context.Context, phone string) ([]Contact, error)
	CreateContact(ctx context.Context, draft ContactDraft) (*Contact, error)
	// CreateDeal returns ErrDealCreationFailed when the response carries no id.
	CreateDeal(ctx context.Context, draft DealDraft) (*Deal, error)
	AttachProduct(ctx context.Context, dealID string, product DealProduct) error
}
