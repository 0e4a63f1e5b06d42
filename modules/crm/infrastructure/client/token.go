package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

const (
	// expiryBuffer refreshes tokens this long before they actually expire.
	expiryBuffer = 60 * time.Second
	// defaultTokenTTL applies when neither expires_in nor a JWT exp claim is present.
	defaultTokenTTL = 5 * time.Minute
)

type fetchFunc func(ctx context.Context) (token string, expiresIn time.Duration, err error)

// tokenCache holds one access token per client. Concurrent refreshes collapse
// into a single auth call.
type tokenCache struct {
	fetch fetchFunc
	now   func() time.Time

	mu        sync.Mutex
	token     string
	// refreshAt is when the cached token stops being handed out.
	refreshAt time.Time

	group singleflight.Group
}

func newTokenCache(fetch fetchFunc, now func() time.Time) *tokenCache {
	if now == nil {
		now = time.Now
	}
	return &tokenCache{fetch: fetch, now: now}
}

// Get returns the cached token or fetches one. A token is reused until expiryBuffer
// before it expires, or until half its lifetime for short-lived tokens.
func (c *tokenCache) Get(ctx context.Context) (string, error) {
	if tok, ok := c.current(); ok {
		return tok, nil
	}

	v, err, _ := c.group.Do("token", func() (any, error) {
		if tok, ok := c.current(); ok {
			return tok, nil
		}
		tok, ttl, err := c.fetch(ctx)
		if err != nil {
			return "", err
		}
		if ttl <= 0 {
			ttl = ttlFromJWT(tok, c.now())
		}

		c.mu.Lock()
		c.token = tok
		c.refreshAt = c.now().Add(cacheLifetime(ttl))
		c.mu.Unlock()
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops stale if it is still the cached token.
func (c *tokenCache) Invalidate(stale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == stale {
		c.token = ""
		c.refreshAt = time.Time{}
	}
}

func (c *tokenCache) current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || !c.now().Before(c.refreshAt) {
		return "", false
	}
	return c.token, true
}

// cacheLifetime is ttl minus expiryBuffer, but at least half of ttl, so tokens that
// live shorter than the buffer are still reused for a while.
func cacheLifetime(ttl time.Duration) time.Duration {
	return max(ttl-expiryBuffer, ttl/2)
}

// ttlFromJWT reads the exp claim without verifying the signature; the token is only
// forwarded, never trusted.
func ttlFromJWT(tok string, now time.Time) time.Duration {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return defaultTokenTTL
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return defaultTokenTTL
	}
	return exp.Sub(now)
}

var errEmptyToken = errors.New("auth response has no access_token")
