package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/bot-order-bridge/modules/ledger/application"
	"github.com/rai/bot-order-bridge/modules/ledger/application/queries"
	"github.com/rai/bot-order-bridge/modules/ledger/domain"
	ledgerhttp "github.com/rai/bot-order-bridge/modules/ledger/infrastructure/http"
	"github.com/rai/bot-order-bridge/modules/ledger/infrastructure/persistence"
)

func TestHandler_SyncLog(t *testing.T) {
	// Arrange
	repo := persistence.NewInMemoryRepository()
	rec := application.NewRecorder(repo, nil).For("bo-7")
	rec.Success(context.Background(), domain.OpCreateDeal, "d-1", "deal created")
	rec.Failure(context.Background(), domain.OpCrossLink, "o-1", assert.AnError)

	mux := http.NewServeMux()
	ledgerhttp.RegisterRoutes(mux, queries.NewListEntriesHandler(repo))

	// Act
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders/bo-7/sync-log", nil))

	// Assert
	require.Equal(t, http.StatusOK, rr.Code)
	var got queries.SyncLogDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "bo-7", got.BotOrderID)
	assert.Len(t, got.Entries, 2)
	assert.Equal(t, 1, got.Failures)
	assert.Equal(t, "crm.create_deal", got.Entries[0].Operation)
}

func TestHandler_SyncLog_Empty(t *testing.T) {
	mux := http.NewServeMux()
	ledgerhttp.RegisterRoutes(mux, queries.NewListEntriesHandler(persistence.NewInMemoryRepository()))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders/unknown/sync-log", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}
