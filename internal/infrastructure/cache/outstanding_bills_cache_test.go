package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleBills() []billpay.OutstandingBill {
	return []billpay.OutstandingBill{
		{
			ID:          uuid.New(),
			BillNumber:  "INV-1001",
			BillDate:    time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			DueDate:     time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC),
			TotalAmount: decimal.RequireFromString("1250.05"),
			BalanceDue:  decimal.RequireFromString("250.05"),
		},
	}
}

func TestInMemoryOutstandingBillsCache(t *testing.T) {
	ctx := context.Background()
	tenantID, vendorID := uuid.New(), uuid.New()

	t.Run("miss then hit", func(t *testing.T) {
		c := NewInMemoryOutstandingBillsCache()

		_, ok, err := c.Get(ctx, tenantID, vendorID)
		require.NoError(t, err)
		assert.False(t, ok)

		bills := sampleBills()
		require.NoError(t, c.Set(ctx, tenantID, vendorID, bills, time.Minute))

		got, ok, err := c.Get(ctx, tenantID, vendorID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, bills, got)
	})

	t.Run("entries are scoped by tenant", func(t *testing.T) {
		c := NewInMemoryOutstandingBillsCache()
		require.NoError(t, c.Set(ctx, tenantID, vendorID, sampleBills(), time.Minute))

		_, ok, err := c.Get(ctx, uuid.New(), vendorID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		c := NewInMemoryOutstandingBillsCache()
		now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }

		require.NoError(t, c.Set(ctx, tenantID, vendorID, sampleBills(), 30*time.Second))
		now = now.Add(30 * time.Second)

		_, ok, err := c.Get(ctx, tenantID, vendorID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate drops the entry", func(t *testing.T) {
		c := NewInMemoryOutstandingBillsCache()
		require.NoError(t, c.Set(ctx, tenantID, vendorID, sampleBills(), time.Minute))
		require.NoError(t, c.Invalidate(ctx, tenantID, vendorID))

		_, ok, err := c.Get(ctx, tenantID, vendorID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("callers cannot mutate the cached slice", func(t *testing.T) {
		c := NewInMemoryOutstandingBillsCache()
		bills := sampleBills()
		require.NoError(t, c.Set(ctx, tenantID, vendorID, bills, time.Minute))
		bills[0].BillNumber = "changed"

		got, _, err := c.Get(ctx, tenantID, vendorID)
		require.NoError(t, err)
		assert.Equal(t, "INV-1001", got[0].BillNumber)
	})
}

func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisOutstandingBillsCache_ConnectionErrors(t *testing.T) {
	ctx := context.Background()
	client := unreachableRedis()
	defer client.Close()

	c := NewRedisOutstandingBillsCache(client, zap.NewNop())

	_, ok, err := c.Get(ctx, uuid.New(), uuid.New())
	assert.Error(t, err)
	assert.False(t, ok)

	assert.Error(t, c.Set(ctx, uuid.New(), uuid.New(), sampleBills(), time.Minute))
	assert.Error(t, c.Invalidate(ctx, uuid.New(), uuid.New()))
}

func TestRedisIdempotencyStore_ConnectionErrors(t *testing.T) {
	ctx := context.Background()
	client := unreachableRedis()
	defer client.Close()

	store := NewRedisIdempotencyStoreWithClient(client, "")
	ok, err := store.Claim(ctx, "k", time.Minute)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, store.Release(ctx, "k"))
	assert.Error(t, store.Complete(ctx, "k", "payment-1", time.Minute))
	result, err := store.Result(ctx, "k")
	assert.Error(t, err)
	assert.Empty(t, result)
	// shared client stays open
	assert.NoError(t, store.Close())
}

func TestOutstandingKey(t *testing.T) {
	tenantID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	vendorID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	assert.Equal(t,
		"billpay:outstanding:11111111-1111-1111-1111-111111111111:22222222-2222-2222-2222-222222222222",
		outstandingKey(defaultOutstandingPrefix, tenantID, vendorID))
}

func TestStoreFactory(t *testing.T) {
	t.Run("no redis configured uses memory", func(t *testing.T) {
		stores, err := NewStoreFactory(config.RedisConfig{}).CreateStores()
		require.NoError(t, err)
		defer stores.Close()

		assert.IsType(t, &InMemoryOutstandingBillsCache{}, stores.Outstanding)
		assert.IsType(t, &InMemoryIdempotencyStore{}, stores.Idempotency)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		f := NewStoreFactory(config.RedisConfig{Host: "127.0.0.1", Port: 1}, WithLogger(zap.NewNop()))
		stores, err := f.CreateStores()
		require.NoError(t, err)
		defer stores.Close()

		assert.IsType(t, &InMemoryIdempotencyStore{}, stores.Idempotency)
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		f := NewStoreFactory(config.RedisConfig{Host: "127.0.0.1", Port: 1}, WithInMemoryFallback(false))
		_, err := f.CreateStores()
		assert.Error(t, err)
	})
}
