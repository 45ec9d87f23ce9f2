package cache

import (
	"fmt"

	appbillpay "github.com/Daniel159642/pos-sub005/internal/application/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores groups the caches the bill payment service uses
type Stores struct {
	Outstanding appbillpay.OutstandingBillsCache
	Idempotency shared.IdempotencyStore
	client      *redis.Client
}

// Close releases the idempotency store and the Redis client, if any
func (s *Stores) Close() error {
	var firstErr error
	if s.Idempotency != nil {
		firstErr = s.Idempotency.Close()
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// StoreFactory creates cache stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemoryStores creates process-local stores.
// They do not share state across instances, so a retried submit that lands on
// another instance is not recognised as a duplicate.
func (f *StoreFactory) CreateInMemoryStores() *Stores {
	return &Stores{
		Outstanding: NewInMemoryOutstandingBillsCache(),
		Idempotency: NewInMemoryIdempotencyStore(),
	}
}

// CreateStores connects to Redis when one is configured and falls back to
// in-memory stores when allowed
func (f *StoreFactory) CreateStores() (*Stores, error) {
	if !f.redisConfig.Enabled() {
		f.logger.Info("no Redis configured, using in-memory bill payment caches")
		return f.CreateInMemoryStores(), nil
	}

	client, err := NewRedisClient(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis bill payment caches", zap.String("addr", client.Options().Addr))
		return &Stores{
			Outstanding: NewRedisOutstandingBillsCache(client, f.logger),
			Idempotency: NewRedisIdempotencyStoreWithClient(client, ""),
			client:      client,
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for bill payment caches but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory bill payment caches. "+
		"Idempotency keys will not be shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStores(), nil
}
