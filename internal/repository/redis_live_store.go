package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"PriceGate/internal/domain/models"
	domrepo "PriceGate/internal/domain/repository"
	pkgcache "PriceGate/pkg/cache"
)

// RedisLiveStore reads the current, not-yet-closed 1m candle written by the
// external realtime aggregator under current_candle:{SYMBOL}:1m. This core
// never writes these keys.
type RedisLiveStore struct {
	cache pkgcache.Service
}

func NewRedisLiveStore(cache pkgcache.Service) *RedisLiveStore {
	return &RedisLiveStore{cache: cache}
}

func (r *RedisLiveStore) GetCurrent(ctx context.Context, symbol string) (models.FreshCandle, bool, error) {
	key := pkgcache.GenerateKeyWithParams("current_candle", symbol, string(domrepo.BaseTimeframe))
	b, ok, err := r.cache.GetBytes(ctx, key)
	if err != nil || !ok {
		return models.FreshCandle{}, false, err
	}
	var fresh models.FreshCandle
	if err := json.Unmarshal(b, &fresh); err != nil {
		return models.FreshCandle{}, false, fmt.Errorf("decode live candle: %w", err)
	}
	return fresh, true, nil
}

var _ domrepo.LiveCandleStore = (*RedisLiveStore)(nil)
