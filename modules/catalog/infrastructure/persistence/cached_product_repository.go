package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rai/bot-order-bridge/modules/catalog/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// ErrCacheMiss is returned by Cache.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache adapts a go-redis client to Cache.
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

func NewRedisCache(client redis.Cmdable, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// cachedProduct is the cache encoding of a product.
type cachedProduct struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    string  `json:"price"`
	Currency string  `json:"currency"`
	Weight   *string `json:"weight,omitempty"`
	Category string  `json:"category,omitempty"`
}

// CachedProductRepository is a read-through cache in front of another ProductRepository.
// Cache failures degrade to direct reads; misses are not cached.
type CachedProductRepository struct {
	next   domain.ProductRepository
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedProductRepository(next domain.ProductRepository, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedProductRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedProductRepository{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (r *CachedProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := fmt.Sprintf("product:%d", id)
	if p, ok := r.get(ctx, key); ok {
		return p, nil
	}

	p, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.set(ctx, key, p)
	return p, nil
}

// FindByName is not cached; it only serves the degraded cart-summary path.
func (r *CachedProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	return r.next.FindByName(ctx, name)
}

func (r *CachedProductRepository) get(ctx context.Context, key string) (*domain.Product, bool) {
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			r.logger.Warn("catalog cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return nil, false
	}

	var c cachedProduct
	if err := json.Unmarshal(raw, &c); err != nil {
		r.logger.Warn("discarding corrupt catalog cache entry", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	p, err := c.toDomain()
	if err != nil {
		r.logger.Warn("discarding corrupt catalog cache entry", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return p, true
}

func (r *CachedProductRepository) set(ctx context.Context, key string, p *domain.Product) {
	c := cachedProduct{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price.Decimal().String(),
		Currency: p.Price.Currency(),
		Category: p.Category,
	}
	if p.Weight != nil {
		w := p.Weight.String()
		c.Weight = &w
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, raw, r.ttl); err != nil {
		r.logger.Warn("catalog cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (c cachedProduct) toDomain() (*domain.Product, error) {
	price, err := decimal.NewFromString(c.Price)
	if err != nil {
		return nil, err
	}
	money, err := types.MoneyFromDecimal(price, c.Currency)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{ID: c.ID, Name: c.Name, Price: money, Category: c.Category}
	if c.Weight != nil {
		w, err := decimal.NewFromString(*c.Weight)
		if err != nil {
			return nil, err
		}
		p.Weight = &w
	}
	return p, nil
}

var _ domain.ProductRepository = (*CachedProductRepository)(nil)
