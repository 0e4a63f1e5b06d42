// Package client implements domain.Capabilities over the CRM's REST API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rai/bot-order-bridge/internal/platform/httpclient"
	"github.com/rai/bot-order-bridge/modules/crm/domain"
)

// Config holds CRM connection settings.
type Config struct {
	BaseURL      string
	AuthURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	RateLimit    float64
	Burst        int
	Logger       *slog.Logger
	// Transport and Now are overridden in tests.
	Transport http.RoundTripper
	Now       func() time.Time
}

// Client talks to the CRM with a cached client-credentials token.
// A 401 triggers one token refresh and one retry.
type Client struct {
	http    *httpclient.Client
	authURL string
	id      string
	secret  string
	tokens  *tokenCache
	logger  *slog.Logger
}

func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		http: httpclient.New(httpclient.Config{
			Name:      "crm",
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			Burst:     cfg.Burst,
			Transport: cfg.Transport,
		}),
		authURL: cfg.AuthURL,
		id:      cfg.ClientID,
		secret:  cfg.ClientSecret,
		logger:  logger.With("component", "crm_client"),
	}
	c.tokens = newTokenCache(c.fetchToken, cfg.Now)
	return c
}

// flexID accepts ids sent as JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexID(s)
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type contactPayload struct {
	ID                  flexID `json:"id,omitempty"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Phone               string `json:"phone,omitempty"`
	Email               string `json:"email,omitempty"`
	MessengerExternalID string `json:"messengerExternalId,omitempty"`
	Source              string `json:"source,omitempty"`
}

type attributePayload struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
}

type dealPayload struct {
	PipelineID int64              `json:"pipelineId"`
	StepID     int64              `json:"stepId"`
	Name       string             `json:"name"`
	Price      json.Number        `json:"price"`
	Currency   string             `json:"currency"`
	ContactIDs []string           `json:"contactIds"`
	Attributes []attributePayload `json:"attributes"`
}

type dealResponse struct {
	ID         flexID `json:"id"`
	Name       string `json:"name"`
	PipelineID int64  `json:"pipelineId"`
	StepID     int64  `json:"stepId"`
}

type dealProductPayload struct {
	ProductID string      `json:"productId"`
	Quantity  int64       `json:"quantity"`
	Price     json.Number `json:"price"`
	Currency  string      `json:"currency"`
}

func (c *Client) fetchToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.id},
		"client_secret": {c.secret},
	}
	var resp tokenResponse
	if err := c.http.PostForm(ctx, c.authURL, form, &resp); err != nil {
		return "", 0, err
	}
	if resp.AccessToken == "" {
		return "", 0, errEmptyToken
	}
	c.logger.Debug("crm token refreshed", slog.Int64("expires_in", resp.ExpiresIn))
	return resp.AccessToken, time.Duration(resp.ExpiresIn) * time.Second, nil
}

// call performs an authorized request, retrying once with a fresh token on 401.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	tok, err := c.tokens.Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuthFailed, err)
	}

	err = c.http.DoJSON(ctx, method, path, body, out, httpclient.WithBearer(tok))
	if !httpclient.IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	c.logger.Info("crm rejected token, refreshing", slog.String("path", path))
	c.tokens.Invalidate(tok)
	tok, err = c.tokens.Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuthFailed, err)
	}
	return c.http.DoJSON(ctx, method, path, body, out, httpclient.WithBearer(tok))
}

func (c *Client) FindContactByMessengerID(ctx context.Context, externalID string) (*domain.Contact, error) {
	var resp contactPayload
	err := c.call(ctx, http.MethodGet, "/contacts/messenger-external/"+url.PathEscape(externalID), nil, &resp)
	if httpclient.IsStatus(err, http.StatusNotFound) {
		return nil, domain.ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, domain.ErrContactNotFound
	}
	return resp.toDomain(), nil
}

func (c *Client) SearchContactsByPhone(ctx context.Context, phone string) ([]domain.Contact, error) {
	var resp []contactPayload
	if err := c.call(ctx, http.MethodPost, "/contacts/search", map[string]string{"phone": phone}, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Contact, 0, len(resp))
	for _, p := range resp {
		out = append(out, *p.toDomain())
	}
	return out, nil
}

func (c *Client) CreateContact(ctx context.Context, d domain.ContactDraft) (*domain.Contact, error) {
	req := contactPayload{
		FirstName:           d.Name.FirstName(),
		LastName:            d.Name.LastName(),
		Phone:               d.Phone.String(),
		Email:               d.Email.String(),
		MessengerExternalID: d.ExternalMessengerID,
		Source:              d.Source,
	}
	var resp contactPayload
	if err := c.call(ctx, http.MethodPost, "/contacts", req, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

func (c *Client) CreateDeal(ctx context.Context, d domain.DealDraft) (*domain.Deal, error) {
	req := dealPayload{
		PipelineID: d.PipelineID,
		StepID:     d.StageID,
		Name:       d.Title,
		Price:      json.Number(d.Price.Decimal().StringFixed(2)),
		Currency:   d.Price.Currency(),
		ContactIDs: d.ContactIDs,
		Attributes: make([]attributePayload, len(d.Attributes)),
	}
	for i, a := range d.Attributes {
		req.Attributes[i] = attributePayload{ID: a.ID, Value: a.Value}
	}

	var resp dealResponse
	if err := c.call(ctx, http.MethodPost, "/deals", req, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: response has no id", domain.ErrDealCreationFailed)
	}
	return &domain.Deal{
		ID:         string(resp.ID),
		Title:      d.Title,
		PipelineID: d.PipelineID,
		StageID:    d.StageID,
	}, nil
}

func (c *Client) AttachProduct(ctx context.Context, dealID string, p domain.DealProduct) error {
	req := dealProductPayload{
		ProductID: p.CRMProductID,
		Quantity:  p.Quantity,
		Price:     json.Number(p.UnitPrice.Decimal().StringFixed(2)),
		Currency:  p.UnitPrice.Currency(),
	}
	return c.call(ctx, http.MethodPost, "/deals/"+url.PathEscape(dealID)+"/products", req, nil)
}

func (p contactPayload) toDomain() *domain.Contact {
	return &domain.Contact{
		ID:                  string(p.ID),
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		Phone:               p.Phone,
		Email:               p.Email,
		ExternalMessengerID: p.MessengerExternalID,
		Source:              p.Source,
	}
}

var _ domain.Capabilities = (*Client)(nil)
