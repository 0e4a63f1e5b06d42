// Package queries contains read use cases for the orders module.
package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/rai/bot-order-bridge/modules/orders/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// OrderDTO is a read model of a tracking record.
type OrderDTO struct {
	TrackingID       string    `json:"trackingId"`
	BotOrderID       string    `json:"botOrderId"`
	Platform         string    `json:"platform"`
	Stage            string    `json:"stage"`
	Status           string    `json:"status"`
	Gap              string    `json:"gap,omitempty"`
	ContactID        string    `json:"contactId"`
	DealID           string    `json:"dealId"`
	EcommerceOrderID string    `json:"orderId,omitempty"`
	Total            MoneyDTO  `json:"total"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type MoneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func ToMoneyDTO(m types.Money) MoneyDTO {
	return MoneyDTO{Amount: m.Decimal().StringFixed(2), Currency: m.Currency()}
}

// GetOrderQuery retrieves the latest tracking record of a bot order.
type GetOrderQuery struct {
	BotOrderID string
}

type GetOrderHandler struct {
	repo domain.OrderRepository
}

func NewGetOrderHandler(repo domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{repo: repo}
}

func (h *GetOrderHandler) Handle(ctx context.Context, query GetOrderQuery) (*OrderDTO, error) {
	botOrderID, err := types.ParseBotOrderID(query.BotOrderID)
	if err != nil {
		return nil, fmt.Errorf("invalid bot order ID: %w", err)
	}

	order, err := h.repo.FindLatestByBotOrderID(ctx, botOrderID)
	if err != nil {
		return nil, err
	}

	return toOrderDTO(order), nil
}

func toOrderDTO(order *domain.Order) *OrderDTO {
	return &OrderDTO{
		TrackingID:       order.ID().String(),
		BotOrderID:       order.BotOrderID().String(),
		Platform:         order.Platform(),
		Stage:            order.Stage().String(),
		Status:           order.Status().String(),
		Gap:              string(order.Gap()),
		ContactID:        order.ContactID(),
		DealID:           order.DealID(),
		EcommerceOrderID: order.EcommerceOrderID(),
		Total:            ToMoneyDTO(order.Total()),
		CreatedAt:        order.CreatedAt(),
		UpdatedAt:        order.UpdatedAt(),
	}
}
