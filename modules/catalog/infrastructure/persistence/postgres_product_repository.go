// Package persistence implements the catalog repositories.
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rai/bot-order-bridge/internal/platform/postgres"
	"github.com/rai/bot-order-bridge/modules/catalog/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// Numeric columns are read as text so that prices keep their exact decimal value.
const (
	productByIDQuery = `
		SELECT id, name, price::text, weight::text, COALESCE(category, '')
		FROM products
		WHERE id = $1`

	productByNameQuery = `
		SELECT id, name, price::text, weight::text, COALESCE(category, '')
		FROM products
		WHERE lower(name) = lower($1)
		ORDER BY id
		LIMIT 1`
)

// PostgresProductRepository reads products from the ecommerce store's database.
type PostgresProductRepository struct {
	db       postgres.Querier
	currency string
}

func NewPostgresProductRepository(db postgres.Querier, currency string) *PostgresProductRepository {
	return &PostgresProductRepository{db: db, currency: currency}
}

func (r *PostgresProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.scan(r.db.QueryRow(ctx, productByIDQuery, id))
}

func (r *PostgresProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	return r.scan(r.db.QueryRow(ctx, productByNameQuery, name))
}

func (r *PostgresProductRepository) scan(row pgx.Row) (*domain.Product, error) {
	var (
		id              int64
		name, priceText string
		weightText      *string
		category        string
	)
	if err := row.Scan(&id, &name, &priceText, &weightText, &category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("querying product: %w", err)
	}

	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return nil, fmt.Errorf("product %d: parsing price %q: %w", id, priceText, err)
	}
	money, err := types.MoneyFromDecimal(price, r.currency)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", id, err)
	}

	p := &domain.Product{
		ID:       id,
		Name:     name,
		Price:    money,
		Category: category,
	}
	if weightText != nil {
		w, err := decimal.NewFromString(*weightText)
		if err != nil {
			return nil, fmt.Errorf("product %d: parsing weight %q: %w", id, *weightText, err)
		}
		p.Weight = &w
	}
	return p, nil
}

var _ domain.ProductRepository = (*PostgresProductRepository)(nil)
