package repository

import (
	"context"
	"time"

	domrepo "PriceGate/internal/domain/repository"
	pkgcache "PriceGate/pkg/cache"
)

// RedisResponseCache stores fully-formed history responses keyed by
// (symbol, timeframe) under history:{SYMBOL}:{tf}. Entries expire via the
// store-native TTL; there is no read-repair.
type RedisResponseCache struct {
	cache pkgcache.Service
}

func NewRedisResponseCache(cache pkgcache.Service) *RedisResponseCache {
	return &RedisResponseCache{cache: cache}
}

func (r *RedisResponseCache) Get(ctx context.Context, symbol string, tf domrepo.Timeframe) ([]byte, bool, error) {
	return r.cache.GetBytes(ctx, historyKey(symbol, tf))
}

func (r *RedisResponseCache) Set(ctx context.Context, symbol string, tf domrepo.Timeframe, value []byte, ttl time.Duration) error {
	return r.cache.SetBytes(ctx, historyKey(symbol, tf), value, ttl)
}

func historyKey(symbol string, tf domrepo.Timeframe) string {
	return pkgcache.GenerateKeyWithParams("history", symbol, string(tf))
}

var _ domrepo.ResponseCache = (*RedisResponseCache)(nil)
