package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/bot-order-bridge/modules/crm/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

type fakeCRM struct {
	t          *testing.T
	tokenCalls atomic.Int32
	expiresIn  int64
	// rejectFirst makes the first authorized call answer 401.
	rejectFirst atomic.Bool
	mux         *http.ServeMux
}

func newFakeCRM(t *testing.T) (*fakeCRM, *httptest.Server) {
	f := &fakeCRM{t: t, expiresIn: 3600, mux: http.NewServeMux()}
	f.mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "id", r.PostForm.Get("client_id"))
		n := f.tokenCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-" + string(rune('0'+n)),
			"expires_in":   f.expiresIn,
		})
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" && f.rejectFirst.CompareAndSwap(true, false) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestClient(srv *httptest.Server) *Client {
	return New(Config{
		BaseURL:      srv.URL,
		AuthURL:      srv.URL + "/oauth/token",
		ClientID:     "id",
		ClientSecret: "secret",
		Timeout:      time.Second,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestClient_FindContactByMessengerID_NotFound(t *testing.T) {
	// Arrange
	f, srv := newFakeCRM(t)
	f.mux.HandleFunc("GET /contacts/messenger-external/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := newTestClient(srv)

	// Act
	_, err := c.FindContactByMessengerID(context.Background(), "ext-1")

	// Assert
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestClient_FindContactByMessengerID_NumericID(t *testing.T) {
	// Arrange
	f, srv := newFakeCRM(t)
	f.mux.HandleFunc("GET /contacts/messenger-external/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "ext-1", r.PathValue("id"))
		_, _ = io.WriteString(w, `{"id": 4711, "firstName": "Anna", "lastName": "Muster", "messengerExternalId": "ext-1"}`)
	})
	c := newTestClient(srv)

	// Act
	contact, err := c.FindContactByMessengerID(context.Background(), "ext-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "4711", contact.ID)
	assert.Equal(t, "Anna", contact.FirstName)
	assert.Equal(t, "ext-1", contact.ExternalMessengerID)
}

func TestClient_ReusesTokenAcrossCalls(t *testing.T) {
	// Arrange
	f, srv := newFakeCRM(t)
	f.mux.HandleFunc("POST /contacts/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	c := newTestClient(srv)

	// Act
	for i := 0; i < 3; i++ {
		_, err := c.SearchContactsByPhone(context.Background(), "+41791234567")
		require.NoError(t, err)
	}

	// Assert
	assert.Equal(t, int32(1), f.tokenCalls.Load())
}

func TestClient_ConcurrentCallsShareOneTokenFetch(t *testing.T) {
	// Arrange
	f, srv := newFakeCRM(t)
	f.mux.HandleFunc("POST /contacts/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	c := newTestClient(srv)

	// Act
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.SearchContactsByPhone(context.Background(), "+41791234567")
		}()
	}
	wg.Wait()

	// Assert
	assert.LessOrEqual(t, f.tokenCalls.Load(), int32(2))
}

func TestClient_RetriesOnceOn401(t *testing.T) {
	// Arrange
	f, srv := newFakeCRM(t)
	var seen []string
	f.mux.HandleFunc("POST /contacts", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"id": "c-1", "firstName": "Customer", "lastName": "Bot"}`)
	})
	c := newTestClient(srv)
	_, err := c.tokens.Get(context.Background())
	require.NoError(t, err)
	f.rejectFirst.Store(true)

	// Act
	contact, err := c.CreateContact(context.Background(), domain.NewContactDraft(domain.Identity{Platform: "telegram"}))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "c-1", contact.ID)
	assert.Equal(t, int32(2), f.tokenCalls.Load())
	assert.Equal(t, []string{"Bearer tok-2"}, seen)
}

func TestClient_SecondUnauthorizedIsReturned(t *testing.T) {
	// Arrange
	f, srv := newFakeCRM(t)
	var calls atomic.Int32
	f.mux.HandleFunc("POST /deals/{id}/products", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := newTestClient(srv)

	// Act
	err := c.AttachProduct(context.Background(), "d-1", domain.DealProduct{
		CRMProductID: "p-1", Quantity: 1, UnitPrice: types.MustNewMoney(500, "CHF"),
	})

	// Assert
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CreateDeal(t *testing.T) {
	t.Run("sends draft", func(t *testing.T) {
		// Arrange
		f, srv := newFakeCRM(t)
		var got map[string]any
		f.mux.HandleFunc("POST /deals", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = io.WriteString(w, `{"id": 99}`)
		})
		c := newTestClient(srv)

		// Act
		deal, err := c.CreateDeal(context.Background(), domain.DealDraft{
			PipelineID: 3,
			StageID:    7,
			Title:      "Pizza x2",
			Price:      types.MustNewMoney(2450, "CHF"),
			ContactIDs: []string{"c-1"},
			Attributes: []domain.Attribute{{ID: 110, Value: "bo-1"}},
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "99", deal.ID)
		assert.Equal(t, "Pizza x2", got["name"])
		assert.Equal(t, 24.5, got["price"])
		assert.Equal(t, "CHF", got["currency"])
		assert.Equal(t, float64(7), got["stepId"])
	})

	t.Run("missing id", func(t *testing.T) {
		// Arrange
		f, srv := newFakeCRM(t)
		f.mux.HandleFunc("POST /deals", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"name": "x"}`)
		})
		c := newTestClient(srv)

		// Act
		_, err := c.CreateDeal(context.Background(), domain.DealDraft{Price: types.MustNewMoney(0, "CHF")})

		// Assert
		assert.ErrorIs(t, err, domain.ErrDealCreationFailed)
	})
}

func TestClient_AuthFailure(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(srv)

	// Act
	_, err := c.SearchContactsByPhone(context.Background(), "+41791234567")

	// Assert
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
}

func TestTokenCache_RefreshesWithinBuffer(t *testing.T) {
	// Arrange
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	cache := newTokenCache(func(context.Context) (string, time.Duration, error) {
		calls++
		return "tok", 2 * time.Minute, nil
	}, func() time.Time { return now })

	// Act
	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	now = now.Add(59 * time.Second)
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	now = now.Add(2 * time.Second)
	_, err = cache.Get(context.Background())
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 2, calls)
}

func TestTokenCache_ReusesShortLivedToken(t *testing.T) {
	// Arrange
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	cache := newTokenCache(func(context.Context) (string, time.Duration, error) {
		calls++
		return "tok", 30 * time.Second, nil
	}, func() time.Time { return now })

	// Act
	for range 3 {
		_, err := cache.Get(context.Background())
		require.NoError(t, err)
		now = now.Add(4 * time.Second)
	}
	now = now.Add(4 * time.Second)
	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 2, calls)
}

func TestCacheLifetime(t *testing.T) {
	assert.Equal(t, 9*time.Minute, cacheLifetime(10*time.Minute))
	assert.Equal(t, time.Minute, cacheLifetime(2*time.Minute))
	assert.Equal(t, 30*time.Second, cacheLifetime(time.Minute))
	assert.Equal(t, 5*time.Second, cacheLifetime(10*time.Second))
}

func TestTokenCache_InvalidateIgnoresNewerToken(t *testing.T) {
	// Arrange
	cache := newTokenCache(func(context.Context) (string, time.Duration, error) {
		return "fresh", time.Hour, nil
	}, nil)
	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	// Act
	cache.Invalidate("stale")

	// Assert
	tok, ok := cache.current()
	assert.True(t, ok)
	assert.Equal(t, "fresh", tok)
}

func TestTokenCache_FetchError(t *testing.T) {
	boom := errors.New("boom")
	cache := newTokenCache(func(context.Context) (string, time.Duration, error) {
		return "", 0, boom
	}, nil)

	_, err := cache.Get(context.Background())

	assert.ErrorIs(t, err, boom)
}

func TestTTLFromJWT(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": now.Add(10 * time.Minute).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  time.Duration
	}{
		{"exp claim", signed, 10 * time.Minute},
		{"opaque token", "not-a-jwt", defaultTokenTTL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ttlFromJWT(tt.token, now))
		})
	}
}
