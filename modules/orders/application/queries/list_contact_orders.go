package queries

import (
	"context"
	"fmt"
	"strings"

	"github.com/rai/bot-order-bridge/modules/orders/domain"
	"github.com/rai/bot-order-bridge/modules/shared/transaction"
)

// OrderListDTO contains a paginated list of orders.
type OrderListDTO struct {
	Orders     []*OrderDTO `json:"orders"`
	TotalCount int         `json:"totalCount"`
	Offset     int         `json:"offset"`
	Limit      int         `json:"limit"`
}

// ListContactOrdersQuery retrieves the bot orders of one CRM contact.
type ListContactOrdersQuery struct {
	ContactID string
	Offset    int
	Limit     int
}

type ListContactOrdersHandler struct {
	repo      domain.OrderRepository
	readScope transaction.Scope
}

// NewListContactOrdersHandler creates the handler. readScope, usually a read-only
// transaction, keeps the count and the page on one snapshot; nil skips it.
func NewListContactOrdersHandler(repo domain.OrderRepository, readScope transaction.Scope) *ListContactOrdersHandler {
	return &ListContactOrdersHandler{repo: repo, readScope: transaction.OrPassthrough(readScope)}
}

func (h *ListContactOrdersHandler) Handle(ctx context.Context, query ListContactOrdersQuery) (*OrderListDTO, error) {
	contactID := strings.TrimSpace(query.ContactID)
	if contactID == "" {
		return nil, fmt.Errorf("contact ID is required: %w", domain.ErrInvalidRequest)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := max(query.Offset, 0)

	var (
		orders []*domain.Order
		total  int
	)
	err := h.readScope.Execute(ctx, func(ctx context.Context) error {
		var err error
		orders, total, err = h.repo.FindByContactID(ctx, contactID, offset, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	dtos := make([]*OrderDTO, len(orders))
	for i, order := range orders {
		dtos[i] = toOrderDTO(order)
	}

	return &OrderListDTO{
		Orders:     dtos,
		TotalCount: total,
		Offset:     offset,
		Limit:      limit,
	}, nil
}
