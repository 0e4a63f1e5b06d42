package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/bot-order-bridge/modules/catalog/domain"
	"github.com/rai/bot-order-bridge/modules/catalog/infrastructure/persistence"
)

var productCols = []string{"id", "name", "price", "weight", "category"}

func strPtr(s string) *string { return &s }

func TestPostgresProductRepository_FindByID(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(mock pgxmock.PgxPoolIface)
		wantPrice int64
		wantW     string
		wantErr   error
	}{
		{
			name: "found with weight",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, name, price::text, weight::text, COALESCE\(category, ''\) FROM products WHERE id = \$1`).
					WithArgs(int64(7)).
					WillReturnRows(pgxmock.NewRows(productCols).AddRow(int64(7), "Green Tea", "4.50", strPtr("0.250"), "tea"))
			},
			wantPrice: 450,
			wantW:     "0.25",
		},
		{
			name: "found without weight",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM products WHERE id = \$1`).
					WithArgs(int64(7)).
					WillReturnRows(pgxmock.NewRows(productCols).AddRow(int64(7), "Green Tea", "12.345", (*string)(nil), ""))
			},
			wantPrice: 1235,
		},
		{
			name: "not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM products WHERE id = \$1`).
					WithArgs(int64(7)).
					WillReturnRows(pgxmock.NewRows(productCols))
			},
			wantErr: domain.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
			require.NoError(t, err)
			defer mock.Close()
			tt.setup(mock)

			repo := persistence.NewPostgresProductRepository(mock, "CHF")
			p, err := repo.FindByID(context.Background(), 7)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Green Tea", p.Name)
				assert.Equal(t, tt.wantPrice, p.Price.Amount())
				assert.Equal(t, "CHF", p.Price.Currency())
				if tt.wantW == "" {
					assert.Nil(t, p.Weight)
				} else {
					require.NotNil(t, p.Weight)
					assert.Equal(t, tt.wantW, p.Weight.String())
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresProductRepository_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM products`).
		WithArgs("green tea").
		WillReturnError(errors.New("connection reset"))

	repo := persistence.NewPostgresProductRepository(mock, "CHF")
	_, err = repo.FindByName(context.Background(), "green tea")

	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, domain.ErrProductNotFound)
}
