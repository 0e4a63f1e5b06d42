// Package client implements domain.Variables over the bot platform's HTTP API.
package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rai/bot-order-bridge/internal/platform/httpclient"
	"github.com/rai/bot-order-bridge/modules/botplatform/domain"
)

type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	Transport http.RoundTripper
}

type Client struct {
	http   *httpclient.Client
	apiKey string
}

func New(cfg Config) *Client {
	return &Client{
		http: httpclient.New(httpclient.Config{
			Name:      "botplatform",
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		}),
		apiKey: cfg.APIKey,
	}
}

type setVariableRequest struct {
	ContactID string `json:"contact_id"`
	Name      string `json:"name"`
	Value     string `json:"value"`
}

func (c *Client) SetContactVariable(ctx context.Context, platform, contactID, name, value string) error {
	var opts []httpclient.RequestOption
	if c.apiKey != "" {
		opts = append(opts, httpclient.WithBearer(c.apiKey))
	}
	return c.http.DoJSON(ctx, http.MethodPost, "/"+url.PathEscape(platform)+"/contacts/setVariable",
		setVariableRequest{ContactID: contactID, Name: name, Value: value}, nil, opts...)
}

var _ domain.Variables = (*Client)(nil)
