package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"PriceGate/internal/domain/models"
	domrepo "PriceGate/internal/domain/repository"
	applogger "PriceGate/pkg/logger"
)

// MaxHistoryLimit caps how many candles a single request may ask for.
const MaxHistoryLimit = 2000

// MaxBaseCandles bounds how many 1m rows one aggregation may pull from the
// store. Coarse timeframes multiply the requested count by their width in
// minutes; without a bound a 1M request could fan out to millions of rows.
const MaxBaseCandles = 100000

// HistoryUseCase is the candle resolution engine. Per request it consults the
// response cache, then the persistent store (aggregating above the base
// timeframe and merging the live candle), and only when the persistent path
// yields nothing falls back to the upstream provider. Every collaborator is
// injected at construction; the engine holds no ambient state.
type HistoryUseCase struct {
	cache   domrepo.ResponseCache
	store   domrepo.CandleStore
	live    domrepo.LiveCandleStore
	klines  domrepo.KlineClient
	metrics domrepo.Metrics
	logger  *applogger.Logger
}

func NewHistoryUseCase(
	cache domrepo.ResponseCache,
	store domrepo.CandleStore,
	live domrepo.LiveCandleStore,
	klines domrepo.KlineClient,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
) *HistoryUseCase {
	return &HistoryUseCase{
		cache:   cache,
		store:   store,
		live:    live,
		klines:  klines,
		metrics: metrics,
		logger:  logger,
	}
}

// GetHistory resolves a candle series for (symbol, timeframe, limit).
// Fails with models.ErrUnsupportedTimeframe or models.ErrUpstreamUnavailable;
// every intermediate failure degrades to the next tier instead.
func (uc *HistoryUseCase) GetHistory(ctx context.Context, symbol string, tf domrepo.Timeframe, limit int) (*models.HistoryResponse, error) {
	start := time.Now()
	if !domrepo.IsValidTimeframe(tf) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedTimeframe, tf)
	}
	symbol = strings.ToUpper(symbol)
	if limit <= 0 {
		limit = domrepo.DefaultLimit(tf)
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	if resp, ok := uc.cacheLookup(ctx, symbol, tf); ok {
		uc.metrics.RecordCacheHit(string(tf))
		uc.metrics.RecordResolution("cache", string(tf))
		return resp, nil
	}
	uc.metrics.RecordCacheMiss(string(tf))

	if candles, err := uc.resolveFromStore(ctx, symbol, tf, limit); err != nil {
		uc.metrics.RecordError("store")
		uc.logger.Warn("persistent path failed, falling back",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Error(err),
		)
	} else if len(candles) > 0 {
		resp := &models.HistoryResponse{Symbol: symbol, Interval: string(tf), Candles: candles}
		uc.cacheStore(ctx, symbol, tf, resp)
		uc.metrics.RecordResolution("store", string(tf))
		uc.metrics.RecordLatency("history_store", time.Since(start).Seconds())
		return resp, nil
	}

	candles, err := uc.klines.FetchKlines(ctx, symbol, tf, limit)
	if err != nil {
		uc.metrics.RecordError("upstream")
		return nil, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	resp := &models.HistoryResponse{Symbol: symbol, Interval: string(tf), Candles: candles}
	uc.cacheStore(ctx, symbol, tf, resp)
	uc.metrics.RecordResolution("upstream", string(tf))
	uc.metrics.RecordLatency("history_upstream", time.Since(start).Seconds())
	return resp, nil
}

// resolveFromStore runs the persistent path: coin id lookup, base query,
// aggregation above the base timeframe, live candle merge. Any error here is
// recoverable by design; the caller degrades to the upstream fallback.
func (uc *HistoryUseCase) resolveFromStore(ctx context.Context, symbol string, tf domrepo.Timeframe, limit int) ([]models.Candle, error) {
	coinID, err := uc.store.GetCoinID(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("resolve coin id: %w", err)
	}

	baseLimit := limit
	if tf != domrepo.BaseTimeframe {
		dur, derr := domrepo.DurationOf(tf)
		if derr != nil {
			return nil, derr
		}
		baseDur, _ := domrepo.DurationOf(domrepo.BaseTimeframe)
		baseLimit = limit * int(dur/baseDur)
		if baseLimit > MaxBaseCandles {
			baseLimit = MaxBaseCandles
		}
	}

	candles, err := uc.store.GetRecent1m(ctx, coinID, baseLimit)
	if err != nil {
		return nil, fmt.Errorf("query base candles: %w", err)
	}

	// Merge the live minute before aggregating so the current partial bucket
	// folds it in instead of dropping it.
	if fresh, ok, lerr := uc.live.GetCurrent(ctx, symbol); lerr != nil {
		// Live snapshot is best-effort; closed data alone is still correct.
		uc.logger.Warn("live candle read failed",
			applogger.String("symbol", symbol),
			applogger.Error(lerr),
		)
	} else if ok {
		candles = MergeFresh(candles, fresh)
	}

	if tf != domrepo.BaseTimeframe {
		candles, err = Aggregate(candles, tf, limit)
		if err != nil {
			return nil, err
		}
	} else if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}

	return candles, nil
}

func (uc *HistoryUseCase) cacheLookup(ctx context.Context, symbol string, tf domrepo.Timeframe) (*models.HistoryResponse, bool) {
	b, ok, err := uc.cache.Get(ctx, symbol, tf)
	if err != nil {
		uc.metrics.RecordError("cache_read")
		uc.logger.Warn("cache read failed",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Error(err),
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var resp models.HistoryResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		uc.metrics.RecordError("cache_decode")
		return nil, false
	}
	return &resp, true
}

// cacheStore writes the response back with the timeframe's freshness window.
// Failures never affect the response; abandoned requests write nothing.
func (uc *HistoryUseCase) cacheStore(ctx context.Context, symbol string, tf domrepo.Timeframe, resp *models.HistoryResponse) {
	if ctx.Err() != nil {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		uc.metrics.RecordError("cache_encode")
		return
	}
	if err := uc.cache.Set(ctx, symbol, tf, b, domrepo.CacheTTL(tf)); err != nil {
		uc.metrics.RecordError("cache_write")
		uc.logger.Warn("cache write failed",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Error(err),
		)
	}
}
