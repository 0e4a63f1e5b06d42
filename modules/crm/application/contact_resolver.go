// Package application contains the CRM-facing use cases of the saga:
// resolving the ordering contact and building the deal payload.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rai/bot-order-bridge/modules/crm/domain"
)

// Strategy looks a contact up one way. It returns (nil, nil) on a miss so that the
// next strategy runs; any error stops the chain.
type Strategy struct {
	Name    string
	Resolve func(ctx context.Context, id domain.Identity) (*domain.Contact, error)
}

// ByMessengerID looks the contact up by the platform's external messenger id.
func ByMessengerID(crm domain.Capabilities) Strategy {
	return Strategy{
		Name: "messenger_id",
		Resolve: func(ctx context.Context, id domain.Identity) (*domain.Contact, error) {
			if id.ExternalContactID == "" {
				return nil, nil
			}
			c, err := crm.FindContactByMessengerID(ctx, id.ExternalContactID)
			if errors.Is(err, domain.ErrContactNotFound) {
				return nil, nil
			}
			return c, err
		},
	}
}

// ByPhone searches by normalized phone number when one was supplied.
func ByPhone(crm domain.Capabilities) Strategy {
	return Strategy{
		Name: "phone",
		Resolve: func(ctx context.Context, id domain.Identity) (*domain.Contact, error) {
			phone := domain.NewPhone(id.Phone)
			if phone.IsZero() {
				return nil, nil
			}
			found, err := crm.SearchContactsByPhone(ctx, phone.String())
			if err != nil {
				return nil, err
			}
			for i := range found {
				if found[i].ID != "" {
					return &found[i], nil
				}
			}
			return nil, nil
		},
	}
}

// ContactResolution is the outcome of ContactResolver.Resolve.
type ContactResolution struct {
	Contact *domain.Contact
	// Strategy names the lookup that found the contact, or "created".
	Strategy string
	Created  bool
}

// ContactResolver walks its strategies in order and creates the contact when all miss.
type ContactResolver struct {
	crm        domain.Capabilities
	strategies []Strategy
	logger     *slog.Logger
}

// NewContactResolver uses the default chain (messenger id, then phone) unless
// strategies are given.
func NewContactResolver(crm domain.Capabilities, logger *slog.Logger, strategies ...Strategy) *ContactResolver {
	if logger == nil {
		logger = slog.Default()
	}
	if len(strategies) == 0 {
		strategies = []Strategy{ByMessengerID(crm), ByPhone(crm)}
	}
	return &ContactResolver{crm: crm, strategies: strategies, logger: logger}
}

// Strategies returns the strategy names in evaluation order.
func (r *ContactResolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name
	}
	return names
}

// Resolve returns the contact for id. Lookup errors wrap ErrContactResolutionFailed;
// creation errors wrap ErrContactCreationFailed.
func (r *ContactResolver) Resolve(ctx context.Context, id domain.Identity) (*ContactResolution, error) {
	for _, s := range r.strategies {
		c, err := s.Resolve(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s lookup: %w", domain.ErrContactResolutionFailed, s.Name, err)
		}
		if c != nil {
			r.logger.Debug("contact resolved", slog.String("strategy", s.Name), slog.String("contact_id", c.ID))
			return &ContactResolution{Contact: c, Strategy: s.Name}, nil
		}
	}

	draft := domain.NewContactDraft(id)
	c, err := r.crm.CreateContact(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrContactCreationFailed, err)
	}
	if c == nil || c.ID == "" {
		return nil, fmt.Errorf("%w: response has no id", domain.ErrContactCreationFailed)
	}

	r.logger.Info("contact created",
		slog.String("contact_id", c.ID),
		slog.String("source", draft.Source),
		slog.Bool("placeholder_name", draft.Name.FirstName() == domain.PlaceholderFirstName),
	)
	return &ContactResolution{Contact: c, Strategy: "created", Created: true}, nil
}
