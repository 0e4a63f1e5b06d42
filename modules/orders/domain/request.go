package domain

import (
	"strconv"
	"strings"

	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// Keys of the bot platform's opaque attribute bag.
const (
	AttrCustomerName     = "customer_name"
	AttrCartSummary      = "cart_summary"
	AttrOrderDescription = "order_description"
	AttrOrderTotal       = "order_total"
	AttrLanguage         = "language"
)

// Identity is the chat identity of the customer.
type Identity struct {
	Platform          string
	ExternalContactID string
	ChatID            string
	Phone             string
	Email             string
	FirstName         string
	LastName          string
	Username          string
	Language          string
}

// Quantity is a requested quantity as sent, number or numeric string.
type Quantity string

func (q *Quantity) UnmarshalJSON(b []byte) error {
	*q = Quantity(strings.Trim(string(b), `"`))
	return nil
}

func QuantityOf(n int64) Quantity { return Quantity(strconv.FormatInt(n, 10)) }

type LineItemRequest struct {
	CatalogProductID int64
	Quantity         Quantity
}

type Delivery struct {
	City    string
	Station string
	Canton  string
	Address string
}

// OrderRequest is one bot purchase. It lives only for one saga run.
type OrderRequest struct {
	BotOrderID    types.BotOrderID
	Identity      Identity
	Items         []LineItemRequest
	Delivery      Delivery
	PaymentMethod string
	Notes         string
	Attributes    map[string]string
}

// Attr returns a trimmed attribute value.
func (r OrderRequest) Attr(key string) string {
	return strings.TrimSpace(r.Attributes[key])
}

// CustomerName prefers the bot's full-name attribute over the identity's names.
func (r OrderRequest) CustomerName() string {
	if n := r.Attr(AttrCustomerName); n != "" {
		return n
	}
	return strings.TrimSpace(r.Identity.FirstName + " " + r.Identity.LastName)
}

func (r OrderRequest) Language() string {
	if l := r.Attr(AttrLanguage); l != "" {
		return l
	}
	return r.Identity.Language
}
