package application_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/bot-order-bridge/modules/catalog/application"
	"github.com/rai/bot-order-bridge/modules/catalog/domain"
	"github.com/rai/bot-order-bridge/modules/catalog/infrastructure/persistence"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

func newResolver(t *testing.T) *application.Resolver {
	t.Helper()
	products := persistence.NewInMemoryProductRepository(
		domain.Product{ID: 1, Name: "Green Tea", Price: types.MustNewMoney(450, "CHF")},
		domain.Product{ID: 2, Name: "Oolong", Price: types.MustNewMoney(1200, "CHF")},
		domain.Product{ID: 3, Name: "Unmapped Mug", Price: types.MustNewMoney(900, "CHF")},
	)
	mappings := persistence.NewInMemoryMappingRepository()
	now := time.Now()
	for _, m := range []struct {
		id  int64
		crm string
	}{{1, "crm-1"}, {2, "crm-2"}} {
		pm, err := domain.NewProductMapping(m.id, m.crm, "", "", now)
		require.NoError(t, err)
		require.NoError(t, mappings.Save(context.Background(), pm))
	}
	return application.NewResolver(products, mappings, "CHF", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolver_Enrich_SumsCatalogPrices(t *testing.T) {
	r := newResolver(t)

	e, err := r.Enrich(context.Background(), application.EnrichRequest{
		Items: []application.ItemRequest{
			{CatalogProductID: 1, Quantity: "2"},
			{CatalogProductID: 2, Quantity: "1.9"},
		},
	})

	require.NoError(t, err)
	require.Len(t, e.Items, 2)
	assert.Equal(t, int64(1), e.Items[1].Quantity)
	assert.Equal(t, "crm-2", e.Items[1].CRMProductID)

	var sum int64
	for _, it := range e.Items {
		sum += it.Total.Amount()
	}
	assert.Equal(t, sum, e.Total.Amount())
	assert.Equal(t, int64(2100), e.Total.Amount())
	assert.False(t, e.Degraded)
	assert.Nil(t, e.Drift)
}

func TestResolver_Enrich_Errors(t *testing.T) {
	tests := []struct {
		name    string
		items   []application.ItemRequest
		wantErr error
	}{
		{"unknown product", []application.ItemRequest{{CatalogProductID: 99, Quantity: "1"}}, domain.ErrProductNotFound},
		{"unmapped product", []application.ItemRequest{{CatalogProductID: 1, Quantity: "1"}, {CatalogProductID: 3, Quantity: "1"}}, domain.ErrProductNotMapped},
		{"zero quantity", []application.ItemRequest{{CatalogProductID: 1, Quantity: "0"}}, domain.ErrInvalidQuantity},
		{"non-numeric quantity", []application.ItemRequest{{CatalogProductID: 1, Quantity: "a few"}}, domain.ErrInvalidQuantity},
		{"quantity above line cap", []application.ItemRequest{{CatalogProductID: 2, Quantity: "10001"}}, domain.ErrInvalidQuantity},
		{"int64-sized quantity", []application.ItemRequest{{CatalogProductID: 2, Quantity: "9223372036854775807"}}, domain.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t)
			_, err := r.Enrich(context.Background(), application.EnrichRequest{Items: tt.items})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolver_Enrich_DeclaredTotalDriftIsAWarning(t *testing.T) {
	r := newResolver(t)

	e, err := r.Enrich(context.Background(), application.EnrichRequest{
		Items:         []application.ItemRequest{{CatalogProductID: 1, Quantity: "2"}},
		DeclaredTotal: "10,00 CHF",
	})

	require.NoError(t, err)
	require.NotNil(t, e.Drift)
	assert.Equal(t, int64(100), e.Drift.Amount())
	assert.Equal(t, int64(900), e.Total.Amount())
	assert.Len(t, e.Warnings, 1)
}

func TestResolver_Enrich_LargestLineKeepsTotalExact(t *testing.T) {
	r := newResolver(t)

	e, err := r.Enrich(context.Background(), application.EnrichRequest{
		Items: []application.ItemRequest{{CatalogProductID: 2, Quantity: "10000"}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(12_000_000), e.Total.Amount())
	assert.Equal(t, e.Items[0].UnitPrice.Amount()*e.Items[0].Quantity, e.Items[0].Total.Amount())
}

func TestResolver_Enrich_UnparseableDeclaredTotal(t *testing.T) {
	r := newResolver(t)

	e, err := r.Enrich(context.Background(), application.EnrichRequest{
		Items:         []application.ItemRequest{{CatalogProductID: 1, Quantity: "1"}},
		DeclaredTotal: "see cart",
	})

	require.NoError(t, err)
	assert.Nil(t, e.DeclaredTotal)
	assert.NotEmpty(t, e.Warnings)
}

func TestResolver_Enrich_CartSummaryFallback(t *testing.T) {
	r := newResolver(t)

	e, err := r.Enrich(context.Background(), application.EnrichRequest{
		CartSummary: "• Mystery Box x1\n• Oolong x3",
	})

	require.NoError(t, err)
	assert.True(t, e.Degraded)
	require.Len(t, e.Items, 1)
	assert.Equal(t, int64(2), e.Items[0].CatalogProductID)
	assert.Equal(t, int64(3), e.Items[0].Quantity)
	assert.Equal(t, int64(3600), e.Total.Amount())
}

func TestResolver_Enrich_NothingToResolve(t *testing.T) {
	r := newResolver(t)

	_, err := r.Enrich(context.Background(), application.EnrichRequest{CartSummary: "thanks!"})

	assert.ErrorIs(t, err, domain.ErrNoItems)
}
