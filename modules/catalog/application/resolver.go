// Package application contains the catalog use cases: pricing and mapping order items.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/rai/bot-order-bridge/modules/catalog/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// ItemRequest is one requested line as the bot sent it.
type ItemRequest struct {
	CatalogProductID int64
	Quantity         string
}

// EnrichRequest is the input of Resolver.Enrich.
type EnrichRequest struct {
	Items []ItemRequest
	// DeclaredTotal is the bot-side total; advisory only.
	DeclaredTotal string
	// CartSummary is parsed only when Items is empty.
	CartSummary string
}

// Enrichment is the priced, CRM-mapped form of an order's items.
type Enrichment struct {
	Items []domain.ResolvedLineItem
	// Total is the sum of item totals and the authoritative order amount.
	Total types.Money
	// DeclaredTotal is set when the bot sent a parseable total.
	DeclaredTotal *types.Money
	// Drift is DeclaredTotal minus Total when DeclaredTotal is set.
	Drift *types.Money
	// Degraded marks items reconstructed from the free-text cart summary.
	Degraded bool
	Warnings []string
}

// Resolver prices items against the catalog and links them to CRM products.
// It never writes anywhere, so a failing item leaves no remote state behind.
type Resolver struct {
	products domain.ProductRepository
	mappings domain.MappingRepository
	currency string
	logger   *slog.Logger
}

func NewResolver(products domain.ProductRepository, mappings domain.MappingRepository, currency string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		products: products,
		mappings: mappings,
		currency: currency,
		logger:   logger,
	}
}

// Enrich resolves every item or fails on the first bad one.
func (r *Resolver) Enrich(ctx context.Context, req EnrichRequest) (*Enrichment, error) {
	enrichment := &Enrichment{}

	items := req.Items
	if len(items) == 0 {
		item, err := r.fromCartSummary(ctx, req.CartSummary)
		if err != nil {
			return nil, err
		}
		items = []ItemRequest{item}
		enrichment.Degraded = true
		enrichment.Warnings = append(enrichment.Warnings, "items reconstructed from cart summary")
		r.logger.Warn("using cart summary fallback", slog.String("cart_summary", req.CartSummary))
	}

	total := types.MustNewMoney(0, r.currency)
	for i, it := range items {
		resolved, err := r.resolveItem(ctx, it)
		if err != nil {
			return nil, fmt.Errorf("item %d (product %d): %w", i, it.CatalogProductID, err)
		}
		sum, err := total.Add(resolved.Total)
		if err != nil {
			return nil, fmt.Errorf("item %d (product %d): %w", i, it.CatalogProductID, err)
		}
		total = sum
		enrichment.Items = append(enrichment.Items, resolved)
	}
	enrichment.Total = total

	if strings.TrimSpace(req.DeclaredTotal) != "" {
		r.compareDeclared(req.DeclaredTotal, enrichment)
	}
	return enrichment, nil
}

func (r *Resolver) resolveItem(ctx context.Context, it ItemRequest) (domain.ResolvedLineItem, error) {
	qty, err := domain.CoerceQuantity(it.Quantity)
	if err != nil {
		return domain.ResolvedLineItem{}, err
	}

	product, err := r.products.FindByID(ctx, it.CatalogProductID)
	if err != nil {
		return domain.ResolvedLineItem{}, err
	}
	mapping, err := r.mappings.FindByCatalogID(ctx, it.CatalogProductID)
	if err != nil {
		return domain.ResolvedLineItem{}, err
	}
	return domain.NewResolvedLineItem(product, mapping, qty)
}

// compareDeclared records the bot/catalog drift. It never fails the enrichment.
func (r *Resolver) compareDeclared(raw string, e *Enrichment) {
	declared, err := types.ParseMoney(raw, r.currency)
	if err != nil {
		e.Warnings = append(e.Warnings, fmt.Sprintf("declared total %q is not a number", raw))
		r.logger.Warn("unparseable declared total", slog.String("declared_total", raw))
		return
	}
	e.DeclaredTotal = &declared

	drift, err := declared.Subtract(e.Total)
	if err != nil {
		e.Warnings = append(e.Warnings, fmt.Sprintf("declared total %q is out of range", raw))
		r.logger.Warn("declared total out of range", slog.String("declared_total", raw), slog.Any("error", err))
		return
	}
	e.Drift = &drift
	if !drift.IsZero() {
		e.Warnings = append(e.Warnings, fmt.Sprintf("declared total %s differs from catalog total %s", declared, e.Total))
		r.logger.Warn("declared total drift",
			slog.String("declared", declared.String()),
			slog.String("computed", e.Total.String()),
			slog.String("drift", drift.String()),
		)
	}
}

// cartLine matches "<name> x<qty>", e.g. "Green Tea x2" or "Green Tea × 2".
var cartLine = regexp.MustCompile(`^\s*(.+?)\s*[xX×]\s*(\d+(?:[.,]\d+)?)\s*$`)

// fromCartSummary rebuilds a single approximate item from the first parseable
// line of the bot's cart summary.
func (r *Resolver) fromCartSummary(ctx context.Context, summary string) (ItemRequest, error) {
	for _, line := range strings.FieldsFunc(summary, func(c rune) bool { return c == '\n' || c == ';' }) {
		m := cartLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimLeft(m[1], "-•* ")
		product, err := r.products.FindByName(ctx, name)
		if errors.Is(err, domain.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return ItemRequest{}, err
		}
		return ItemRequest{
			CatalogProductID: product.ID,
			Quantity:         strings.ReplaceAll(m[2], ",", "."),
		}, nil
	}
	return ItemRequest{}, domain.ErrNoItems
}
