package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/postage-service/internal/domain"
	"github.com/jsamuelsen/postage-service/internal/platform/config"
)

// fakeRedis is an in-memory stand-in for *redis.Client.
type fakeRedis struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}

	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}

	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}

	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration

	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}

	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}

	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}

	return redis.NewStatusResult("PONG", nil)
}

func testQuote() *domain.PostageQuote {
	p := domain.NewPostage(decimal.RequireFromString("4.90"), decimal.RequireFromString("0.82"), "VAT 20%")
	date := time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC)

	return &domain.PostageQuote{
		ID:             "quote-1",
		ModuleCode:     "flat-rate",
		CartID:         "cart-1",
		Currency:       "EUR",
		CountryCode:    "FR",
		Valid:          true,
		Postage:        &p,
		DeliveryDate:   &date,
		DeliveryMode:   domain.DeliveryModeDelivery,
		AdditionalData: map[string]any{"rule": "france", "transit_days": 2},
		CreatedAt:      time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestRedisCache_SetGet(t *testing.T) {
	fake := newFakeRedis()
	c := newCache(fake, "postage:quote:", nil)

	require.NoError(t, c.Set(context.Background(), "abc", testQuote(), 10*time.Minute))

	assert.Contains(t, fake.data, "postage:quote:abc")
	assert.Equal(t, 10*time.Minute, fake.ttls["postage:quote:abc"])

	got, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, "quote-1", got.ID)
	assert.True(t, got.Postage.Amount.Equal(decimal.RequireFromString("4.9")))
	assert.Equal(t, domain.DeliveryModeDelivery, got.DeliveryMode)
	assert.Equal(t, "france", got.AdditionalData["rule"])
	assert.InDelta(t, 2.0, got.AdditionalData["transit_days"], 0)
	assert.False(t, got.Cached)
}

func TestRedisCache_Miss(t *testing.T) {
	c := newCache(newFakeRedis(), "p:", nil)

	_, err := c.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisCache_CorruptEntryIsEvicted(t *testing.T) {
	fake := newFakeRedis()
	fake.data["p:bad"] = "{not json"

	c := newCache(fake, "p:", nil)

	_, err := c.Get(context.Background(), "bad")

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, fake.data, "p:bad")
}

func TestRedisCache_Delete(t *testing.T) {
	fake := newFakeRedis()
	c := newCache(fake, "p:", nil)

	require.NoError(t, c.Set(context.Background(), "k", testQuote(), 0))
	require.NoError(t, c.Delete(context.Background(), "k"))
	require.NoError(t, c.Delete(context.Background(), "k"))

	assert.Empty(t, fake.data)
}

func TestRedisCache_ConnectionErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("dial tcp: connection refused")

	c := newCache(fake, "p:", nil)
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Contains(t, err.Error(), "connection refused")

	require.ErrorIs(t, c.Set(ctx, "k", testQuote(), time.Minute), domain.ErrUnavailable)
	require.ErrorIs(t, c.Delete(ctx, "k"), domain.ErrUnavailable)
	assert.Error(t, c.Check(ctx))
}

func TestRedisCache_HealthCheck(t *testing.T) {
	c := newCache(newFakeRedis(), "p:", nil)

	assert.Equal(t, "redis", c.Name())
	assert.NoError(t, c.Check(context.Background()))
	assert.NoError(t, c.Close())
}

func TestNewRedisCache_Lazy(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Enabled: true, Addr: "127.0.0.1:0", KeyPrefix: "p:"}, nil)

	assert.Equal(t, "p:", c.prefix)
	assert.NoError(t, c.Close())
}
