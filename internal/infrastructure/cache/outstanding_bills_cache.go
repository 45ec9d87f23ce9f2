package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	appbillpay "github.com/Daniel159642/pos-sub005/internal/application/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultOutstandingPrefix = "billpay:outstanding:"

func outstandingKey(prefix string, tenantID, vendorID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", prefix, tenantID, vendorID)
}

// RedisOutstandingBillsCache keeps outstanding-bill lists in Redis as JSON
type RedisOutstandingBillsCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisOutstandingBillsCache creates a cache on a shared client
func NewRedisOutstandingBillsCache(client *redis.Client, logger *zap.Logger) *RedisOutstandingBillsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisOutstandingBillsCache{
		client:    client,
		keyPrefix: defaultOutstandingPrefix,
		logger:    logger,
	}
}

// Get returns the cached list; ok is false on a miss
func (c *RedisOutstandingBillsCache) Get(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billpay.OutstandingBill, bool, error) {
	data, err := c.client.Get(ctx, outstandingKey(c.keyPrefix, tenantID, vendorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read outstanding bills from cache: %w", err)
	}

	var bills []billpay.OutstandingBill
	if err := json.Unmarshal(data, &bills); err != nil {
		// a corrupt entry behaves like a miss and is refilled by the caller
		c.logger.Warn("discarding undecodable outstanding bills cache entry",
			zap.String("vendor_id", vendorID.String()),
			zap.Error(err))
		return nil, false, nil
	}
	return bills, true, nil
}

// Set stores the list for ttl
func (c *RedisOutstandingBillsCache) Set(ctx context.Context, tenantID, vendorID uuid.UUID, bills []billpay.OutstandingBill, ttl time.Duration) error {
	data, err := json.Marshal(bills)
	if err != nil {
		return fmt.Errorf("failed to encode outstanding bills: %w", err)
	}
	if err := c.client.Set(ctx, outstandingKey(c.keyPrefix, tenantID, vendorID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write outstanding bills to cache: %w", err)
	}
	return nil
}

// Invalidate drops the vendor's entry
func (c *RedisOutstandingBillsCache) Invalidate(ctx context.Context, tenantID, vendorID uuid.UUID) error {
	if err := c.client.Del(ctx, outstandingKey(c.keyPrefix, tenantID, vendorID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate outstanding bills: %w", err)
	}
	return nil
}

type outstandingEntry struct {
	bills     []billpay.OutstandingBill
	expiresAt time.Time
}

// InMemoryOutstandingBillsCache is the single-instance fallback used when no
// Redis server is configured
type InMemoryOutstandingBillsCache struct {
	mu      sync.RWMutex
	entries map[string]outstandingEntry
	now     func() time.Time
}

// NewInMemoryOutstandingBillsCache creates an empty cache
func NewInMemoryOutstandingBillsCache() *InMemoryOutstandingBillsCache {
	return &InMemoryOutstandingBillsCache{
		entries: make(map[string]outstandingEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached list; ok is false on a miss or expiry
func (c *InMemoryOutstandingBillsCache) Get(_ context.Context, tenantID, vendorID uuid.UUID) ([]billpay.OutstandingBill, bool, error) {
	c.mu.RLock()
	e, exists := c.entries[outstandingKey("", tenantID, vendorID)]
	c.mu.RUnlock()

	if !exists || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return append([]billpay.OutstandingBill(nil), e.bills...), true, nil
}

// Set stores a copy of the list for ttl
func (c *InMemoryOutstandingBillsCache) Set(_ context.Context, tenantID, vendorID uuid.UUID, bills []billpay.OutstandingBill, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[outstandingKey("", tenantID, vendorID)] = outstandingEntry{
		bills:     append([]billpay.OutstandingBill(nil), bills...),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Invalidate drops the vendor's entry
func (c *InMemoryOutstandingBillsCache) Invalidate(_ context.Context, tenantID, vendorID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, outstandingKey("", tenantID, vendorID))
	return nil
}

var (
	_ appbillpay.OutstandingBillsCache = (*RedisOutstandingBillsCache)(nil)
	_ appbillpay.OutstandingBillsCache = (*InMemoryOutstandingBillsCache)(nil)
)
