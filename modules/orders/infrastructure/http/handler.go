// Package http provides HTTP handlers for the orders module.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	catalogdomain "github.com/rai/bot-order-bridge/modules/catalog/domain"
	crmdomain "github.com/rai/bot-order-bridge/modules/crm/domain"
	"github.com/rai/bot-order-bridge/modules/orders/application/commands"
	"github.com/rai/bot-order-bridge/modules/orders/application/queries"
	"github.com/rai/bot-order-bridge/modules/orders/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// IdempotencyKeyHeader carries the bot order id. It wins over the body field.
const IdempotencyKeyHeader = "Idempotency-Key"

type OrderCreator interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*commands.Result, error)
}

type OrderGetter interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (*queries.OrderDTO, error)
}

type ContactOrdersLister interface {
	Handle(ctx context.Context, query queries.ListContactOrdersQuery) (*queries.OrderListDTO, error)
}

type Handler struct {
	createOrder OrderCreator
	getOrder    OrderGetter
	listOrders  ContactOrdersLister
	validate    *validator.Validate
}

// RegisterRoutes registers the orders module routes to the given mux.
func RegisterRoutes(mux *http.ServeMux, createOrder OrderCreator, getOrder OrderGetter, listOrders ContactOrdersLister) {
	h := &Handler{
		createOrder: createOrder,
		getOrder:    getOrder,
		listOrders:  listOrders,
		validate:    validator.New(),
	}

	mux.HandleFunc("POST /bot/orders", h.handleCreateOrder)
	mux.HandleFunc("GET /orders/{botOrderId}", h.handleGetOrder)
	mux.HandleFunc("GET /contacts/{contactId}/orders", h.handleListContactOrders)
}

// Request/Response DTOs

type contactRequest struct {
	ExternalID string `json:"externalId" validate:"required"`
	ChatID     string `json:"chatId"`
	Phone      string `json:"phone"`
	Email      string `json:"email" validate:"omitempty,email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Username   string `json:"username"`
	Language   string `json:"language"`
}

type itemRequest struct {
	ProductID int64           `json:"productId" validate:"gt=0"`
	Quantity  domain.Quantity `json:"quantity" validate:"required"`
}

type deliveryRequest struct {
	City    string `json:"city"`
	Station string `json:"station"`
	Canton  string `json:"canton"`
	Address string `json:"address"`
}

type createOrderRequest struct {
	BotOrderID    string            `json:"botOrderId"`
	Platform      string            `json:"platform" validate:"required"`
	Contact       contactRequest    `json:"contact"`
	Items         []itemRequest     `json:"items" validate:"omitempty,dive"`
	Delivery      deliveryRequest   `json:"delivery"`
	PaymentMethod string            `json:"paymentMethod"`
	Notes         string            `json:"notes"`
	Attributes    map[string]string `json:"attributes"`
}

type createOrderResponse struct {
	TrackingID    string   `json:"trackingId"`
	BotOrderID    string   `json:"botOrderId"`
	OrderID       string   `json:"orderId,omitempty"`
	DealID        string   `json:"dealId"`
	ContactID     string   `json:"contactId"`
	TotalAmount   string   `json:"totalAmount"`
	Currency      string   `json:"currency"`
	Status        string   `json:"status"`
	Stage         string   `json:"stage"`
	Gap           string   `json:"gap,omitempty"`
	AttachedItems int      `json:"attachedItems"`
	FailedItems   int      `json:"failedItems"`
	Degraded      bool     `json:"degraded,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// Handlers

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Without structured items the catalog rebuilds one line from the cart summary.
	if len(req.Items) == 0 && strings.TrimSpace(req.Attributes[domain.AttrCartSummary]) == "" {
		writeError(w, http.StatusBadRequest, "items or attributes."+domain.AttrCartSummary+" is required")
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key == "" {
		key = req.BotOrderID
	}
	botOrderID, err := types.ParseBotOrderID(key)
	if err != nil {
		writeError(w, http.StatusBadRequest, "botOrderId or "+IdempotencyKeyHeader+" header is required")
		return
	}

	result, err := h.createOrder.Handle(r.Context(), commands.CreateOrderCommand{Request: req.toDomain(botOrderID)})
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Status == domain.StatusPartial {
		status = http.StatusAccepted
	}
	writeJSON(w, status, createOrderResponse{
		TrackingID:    result.TrackingID,
		BotOrderID:    result.BotOrderID,
		OrderID:       result.OrderID,
		DealID:        result.DealID,
		ContactID:     result.ContactID,
		TotalAmount:   result.TotalAmount.Decimal().StringFixed(2),
		Currency:      result.TotalAmount.Currency(),
		Status:        result.Status.String(),
		Stage:         result.Stage.String(),
		Gap:           string(result.Gap),
		AttachedItems: result.AttachedItems,
		FailedItems:   result.FailedItems,
		Degraded:      result.Degraded,
		Warnings:      result.Warnings,
	})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.getOrder.Handle(r.Context(), queries.GetOrderQuery{BotOrderID: r.PathValue("botOrderId")})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleListContactOrders(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.listOrders.Handle(r.Context(), queries.ListContactOrdersQuery{
		ContactID: r.PathValue("contactId"),
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (req createOrderRequest) toDomain(botOrderID types.BotOrderID) domain.OrderRequest {
	items := make([]domain.LineItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.LineItemRequest{CatalogProductID: it.ProductID, Quantity: it.Quantity}
	}

	return domain.OrderRequest{
		BotOrderID: botOrderID,
		Identity: domain.Identity{
			Platform:          req.Platform,
			ExternalContactID: req.Contact.ExternalID,
			ChatID:            req.Contact.ChatID,
			Phone:             req.Contact.Phone,
			Email:             req.Contact.Email,
			FirstName:         req.Contact.FirstName,
			LastName:          req.Contact.LastName,
			Username:          req.Contact.Username,
			Language:          req.Contact.Language,
		},
		Items: items,
		Delivery: domain.Delivery{
			City:    req.Delivery.City,
			Station: req.Delivery.Station,
			Canton:  req.Delivery.Canton,
			Address: req.Delivery.Address,
		},
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Attributes:    req.Attributes,
	}
}

// Helper functions

func handleError(w http.ResponseWriter, err error) {
	var stage string
	var sagaErr *domain.SagaError
	if errors.As(err, &sagaErr) {
		stage = sagaErr.Stage.String()
	}

	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidQuantity),
		errors.Is(err, catalogdomain.ErrNoItems):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Stage: stage})
	case errors.Is(err, catalogdomain.ErrProductNotFound),
		errors.Is(err, catalogdomain.ErrProductNotMapped),
		errors.Is(err, types.ErrAmountOverflow):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Stage: stage})
	case errors.Is(err, crmdomain.ErrAuthFailed),
		errors.Is(err, crmdomain.ErrContactResolutionFailed),
		errors.Is(err, crmdomain.ErrContactCreationFailed),
		errors.Is(err, crmdomain.ErrDealCreationFailed):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Stage: stage})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error", Stage: stage})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
