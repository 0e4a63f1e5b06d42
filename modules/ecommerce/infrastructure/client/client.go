// Package client implements domain.Gateway over the store's REST API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rai/bot-order-bridge/internal/platform/httpclient"
	"github.com/rai/bot-order-bridge/modules/ecommerce/domain"
)

type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	Transport http.RoundTripper
}

type Client struct {
	http *httpclient.Client
}

func New(cfg Config) *Client {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["X-API-Key"] = cfg.APIKey
	}
	return &Client{http: httpclient.New(httpclient.Config{
		Name:      "ecommerce",
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		Headers:   headers,
		Transport: cfg.Transport,
	})}
}

type guestPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

type deliveryPayload struct {
	Type    string `json:"type"`
	Station string `json:"station,omitempty"`
	City    string `json:"city,omitempty"`
	Canton  string `json:"canton,omitempty"`
	Address string `json:"address,omitempty"`
}

type linePayload struct {
	ProductID int64       `json:"productId"`
	Name      string      `json:"name"`
	Quantity  int64       `json:"quantity"`
	UnitPrice json.Number `json:"unitPrice"`
	Total     json.Number `json:"total"`
}

type orderPayload struct {
	Source          string          `json:"source"`
	ExternalOrderID string          `json:"externalOrderId"`
	Guest           guestPayload    `json:"guest"`
	Delivery        deliveryPayload `json:"delivery"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	CustomerNote    string          `json:"customerNote,omitempty"`
	AdminNote       string          `json:"adminNote,omitempty"`
	Items           []linePayload   `json:"items"`
	TotalAmount     json.Number     `json:"totalAmount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
}

type orderResponse struct {
	ID     json.RawMessage `json:"id"`
	Status string          `json:"status"`
}

type syncPayload struct {
	DealID     string    `json:"dealId"`
	ContactID  string    `json:"contactId"`
	Status     string    `json:"status"`
	LastSyncAt time.Time `json:"lastSyncAt"`
}

func (c *Client) CreateOrder(ctx context.Context, o domain.Order) (*domain.Order, error) {
	req := orderPayload{
		Source:          o.Source,
		ExternalOrderID: o.ExternalOrderID,
		Guest: guestPayload{
			FirstName: o.Guest.FirstName,
			LastName:  o.Guest.LastName,
			Phone:     o.Guest.Phone,
			Email:     o.Guest.Email,
		},
		Delivery: deliveryPayload{
			Type:    o.Delivery.Type,
			Station: o.Delivery.Station,
			City:    o.Delivery.City,
			Canton:  o.Delivery.Canton,
			Address: o.Delivery.Address,
		},
		PaymentMethod: o.PaymentMethod,
		CustomerNote:  o.CustomerNote,
		AdminNote:     o.AdminNote,
		Items:         make([]linePayload, len(o.Lines)),
		TotalAmount:   json.Number(o.TotalAmount.Decimal().StringFixed(2)),
		Currency:      o.TotalAmount.Currency(),
		Status:        o.Status,
	}
	for i, l := range o.Lines {
		req.Items[i] = linePayload{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: json.Number(l.UnitPrice.Decimal().StringFixed(2)),
			Total:     json.Number(l.Total.Decimal().StringFixed(2)),
		}
	}

	var resp orderResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return nil, err
	}
	id := strings.Trim(string(resp.ID), `"`)
	if id == "" || id == "null" {
		return nil, fmt.Errorf("%w: response has no id", domain.ErrOrderCreationFailed)
	}

	created := o
	created.ID = id
	if resp.Status != "" {
		created.Status = resp.Status
	}
	return &created, nil
}

func (c *Client) UpdateSync(ctx context.Context, orderID string, data domain.SyncData) error {
	return c.http.DoJSON(ctx, http.MethodPatch, "/orders/"+url.PathEscape(orderID)+"/sync", syncPayload{
		DealID:     data.DealID,
		ContactID:  data.ContactID,
		Status:     data.Status,
		LastSyncAt: data.LastSyncAt,
	}, nil)
}

var _ domain.Gateway = (*Client)(nil)
