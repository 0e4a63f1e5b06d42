package application

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rai/bot-order-bridge/modules/crm/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

const ellipsis = "..."

// AttributeSlots maps order metadata onto numbered CRM custom attributes.
type AttributeSlots struct {
	DeliveryCity    int64
	DeliveryStation int64
	DeliveryCanton  int64
	Products        int64
	Quantities      int64
	UnitPrices      int64
	CustomerName    int64
	Language        int64
	PaymentMethod   int64
	BotOrderID      int64
}

// DealBuilderConfig holds deployment-specific deal settings.
type DealBuilderConfig struct {
	PipelineID         int64
	StageID            int64
	Currency           string
	TitleMaxLength     int
	AttributeMaxLength int
	Slots              AttributeSlots
}

// DealInput is everything the builder reads from one order.
type DealInput struct {
	BotOrderID string
	ContactID  string
	Lines      []domain.DealLine
	// Total is the catalog-computed order total.
	Total types.Money
	// DeclaredTotal is the bot-side total, preferred for the displayed price when parseable.
	DeclaredTotal    string
	OrderDescription string
	CustomerName     string
	Language         string
	PaymentMethod    string
	City             string
	Station          string
	Canton           string
}

// DealAttributes is the typed view of a deal's attribute slots.
type DealAttributes struct {
	DeliveryCity    string
	DeliveryStation string
	DeliveryCanton  string
	Products        string
	Quantities      string
	UnitPrices      string
	CustomerName    string
	Language        string
	PaymentMethod   string
	BotOrderID      string
}

// DealBuilder turns an order into a CRM deal draft.
type DealBuilder struct {
	cfg DealBuilderConfig
}

func NewDealBuilder(cfg DealBuilderConfig) *DealBuilder {
	if cfg.TitleMaxLength < len(ellipsis)+1 {
		cfg.TitleMaxLength = 255
	}
	if cfg.AttributeMaxLength <= 0 {
		cfg.AttributeMaxLength = 255
	}
	return &DealBuilder{cfg: cfg}
}

// Build produces the deal draft for in.
func (b *DealBuilder) Build(in DealInput) domain.DealDraft {
	return domain.DealDraft{
		PipelineID: b.cfg.PipelineID,
		StageID:    b.cfg.StageID,
		Title:      b.title(in),
		Price:      b.price(in),
		ContactIDs: []string{in.ContactID},
		Attributes: b.attributes(in),
	}
}

func (b *DealBuilder) title(in DealInput) string {
	title := strings.TrimSpace(in.OrderDescription)
	if title == "" {
		parts := make([]string, len(in.Lines))
		for i, l := range in.Lines {
			parts[i] = fmt.Sprintf("%s x%d", l.Name, l.Quantity)
		}
		title = strings.Join(parts, ", ")
	}
	if title == "" {
		title = "Bot order " + in.BotOrderID
	}
	return truncate(title, b.cfg.TitleMaxLength)
}

func (b *DealBuilder) price(in DealInput) types.Money {
	if strings.TrimSpace(in.DeclaredTotal) != "" {
		declared, err := types.ParseMoney(in.DeclaredTotal, b.currency(in))
		if err == nil && declared.Amount() > 0 {
			return declared
		}
	}
	return in.Total
}

func (b *DealBuilder) currency(in DealInput) string {
	if b.cfg.Currency != "" {
		return b.cfg.Currency
	}
	return in.Total.Currency()
}

func (b *DealBuilder) attributes(in DealInput) []domain.Attribute {
	names := make([]string, len(in.Lines))
	quantities := make([]string, len(in.Lines))
	prices := make([]string, len(in.Lines))
	for i, l := range in.Lines {
		names[i] = l.Name
		quantities[i] = strconv.FormatInt(l.Quantity, 10)
		prices[i] = l.UnitPrice.Decimal().StringFixed(2)
	}
	summary := fmt.Sprintf("%d items, total %s %s", len(in.Lines), in.Total.Decimal().StringFixed(2), in.Total.Currency())

	s := b.cfg.Slots
	candidates := []domain.Attribute{
		{ID: s.DeliveryCity, Value: b.scalar(in.City)},
		{ID: s.DeliveryStation, Value: b.scalar(in.Station)},
		{ID: s.DeliveryCanton, Value: b.scalar(in.Canton)},
		{ID: s.Products, Value: b.list(names, summary)},
		{ID: s.Quantities, Value: b.list(quantities, summary)},
		{ID: s.UnitPrices, Value: b.list(prices, summary)},
		{ID: s.CustomerName, Value: b.scalar(in.CustomerName)},
		{ID: s.Language, Value: b.scalar(in.Language)},
		{ID: s.PaymentMethod, Value: b.scalar(in.PaymentMethod)},
		{ID: s.BotOrderID, Value: b.scalar(in.BotOrderID)},
	}

	attrs := make([]domain.Attribute, 0, len(candidates))
	for _, a := range candidates {
		if a.ID == 0 || a.Value == "" {
			continue
		}
		attrs = append(attrs, a)
	}
	return attrs
}

// list joins values, or returns summary when the joined text would not fit the slot.
func (b *DealBuilder) list(values []string, summary string) string {
	joined := strings.Join(values, ", ")
	if utf8.RuneCountInString(joined) > b.cfg.AttributeMaxLength {
		return truncate(summary, b.cfg.AttributeMaxLength)
	}
	return joined
}

func (b *DealBuilder) scalar(v string) string {
	return truncate(strings.TrimSpace(v), b.cfg.AttributeMaxLength)
}

// ReadAttributes maps attribute slots back to their meaning. Unknown slots are ignored.
func (b *DealBuilder) ReadAttributes(attrs []domain.Attribute) DealAttributes {
	var out DealAttributes
	s := b.cfg.Slots
	for _, a := range attrs {
		switch a.ID {
		case s.DeliveryCity:
			out.DeliveryCity = a.Value
		case s.DeliveryStation:
			out.DeliveryStation = a.Value
		case s.DeliveryCanton:
			out.DeliveryCanton = a.Value
		case s.Products:
			out.Products = a.Value
		case s.Quantities:
			out.Quantities = a.Value
		case s.UnitPrices:
			out.UnitPrices = a.Value
		case s.CustomerName:
			out.CustomerName = a.Value
		case s.Language:
			out.Language = a.Value
		case s.PaymentMethod:
			out.PaymentMethod = a.Value
		case s.BotOrderID:
			out.BotOrderID = a.Value
		}
	}
	return out
}

// truncate cuts s to max runes, ending in "..." when it had to cut.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= len(ellipsis) {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-len(ellipsis)]) + ellipsis
}
