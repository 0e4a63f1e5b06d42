// Package application builds and submits the mirrored ecommerce order.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rai/bot-order-bridge/modules/ecommerce/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// DeliveryRequest is the customer's free-form delivery preference.
type DeliveryRequest struct {
	City    string
	Station string
	Canton  string
	Address string
}

// OrderInput is what the saga knows when it mirrors an order into the store.
type OrderInput struct {
	BotOrderID    string
	Guest         domain.Guest
	Delivery      DeliveryRequest
	PaymentMethod string
	Notes         string
	Lines         []domain.OrderLine
	Currency      string
}

// OrderService builds store orders from saga input and submits them.
type OrderService struct {
	gateway  domain.Gateway
	stations *domain.StationTable
	source   string
	now      func() time.Time
	logger   *slog.Logger
}

func NewOrderService(gateway domain.Gateway, stations *domain.StationTable, source string, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		gateway:  gateway,
		stations: stations,
		source:   source,
		now:      time.Now,
		logger:   logger,
	}
}

// Build assembles the order payload. The total is the sum of line totals.
func (s *OrderService) Build(in OrderInput) (domain.Order, error) {
	total, err := types.NewMoney(0, in.Currency)
	if err != nil {
		return domain.Order{}, err
	}
	for _, l := range in.Lines {
		if total, err = total.Add(l.Total); err != nil {
			return domain.Order{}, fmt.Errorf("summing order lines: %w", err)
		}
	}

	delivery, adminNote := s.classify(in.Delivery)

	return domain.Order{
		Source:          s.source,
		ExternalOrderID: in.BotOrderID,
		Guest:           in.Guest,
		Delivery:        delivery,
		PaymentMethod:   in.PaymentMethod,
		CustomerNote:    strings.TrimSpace(in.Notes),
		AdminNote:       adminNote,
		Lines:           in.Lines,
		TotalAmount:     total,
		Status:          domain.StatusPending,
	}, nil
}

// classify never fails: an unknown station falls back to the default pickup and
// the substitution is noted for the store admin.
func (s *OrderService) classify(req DeliveryRequest) (domain.Delivery, string) {
	station, ok := s.stations.Classify(req.Station)
	if ok {
		return domain.Delivery{
			Type:    station.DeliveryType,
			Station: station.Name,
			City:    firstNonEmpty(station.City, req.City),
			Canton:  firstNonEmpty(station.Canton, req.Canton),
			Address: firstNonEmpty(station.Address, req.Address),
		}, ""
	}

	note := "No delivery station requested; defaulted to " + station.Name + "."
	if strings.TrimSpace(req.Station) != "" {
		note = fmt.Sprintf("Unknown delivery station %q (city %q, canton %q); defaulted to %s.",
			req.Station, req.City, req.Canton, station.Name)
	}
	return domain.Delivery{
		Type:    station.DeliveryType,
		Station: station.Name,
		City:    firstNonEmpty(station.City, req.City),
		Canton:  firstNonEmpty(station.Canton, req.Canton),
		Address: station.Address,
	}, note
}

// Create builds and submits the order. Errors wrap ErrOrderCreationFailed.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*domain.Order, error) {
	order, err := s.Build(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrOrderCreationFailed, err)
	}
	if order.AdminNote != "" {
		s.logger.Warn("delivery station substituted",
			slog.String("bot_order_id", in.BotOrderID),
			slog.String("requested", in.Delivery.Station),
			slog.String("used", order.Delivery.Station),
		)
	}

	created, err := s.gateway.CreateOrder(ctx, order)
	if err != nil {
		if errors.Is(err, domain.ErrOrderCreationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrOrderCreationFailed, err)
	}
	return created, nil
}

// Link writes the CRM ids back into the created order.
func (s *OrderService) Link(ctx context.Context, orderID, dealID, contactID string) error {
	err := s.gateway.UpdateSync(ctx, orderID, domain.SyncData{
		DealID:     dealID,
		ContactID:  contactID,
		Status:     "synced",
		LastSyncAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSyncUpdateFailed, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
