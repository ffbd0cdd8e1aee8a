package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceGate/internal/domain/models"
	domrepo "PriceGate/internal/domain/repository"
	applogger "PriceGate/pkg/logger"
)

type fakeCache struct {
	data     map[string][]byte
	getErr   error
	setErr   error
	setCalls int
	lastTTL  time.Duration
}

func (f *fakeCache) key(symbol string, tf domrepo.Timeframe) string {
	return symbol + ":" + string(tf)
}

func (f *fakeCache) Get(_ context.Context, symbol string, tf domrepo.Timeframe) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	b, ok := f.data[f.key(symbol, tf)]
	return b, ok, nil
}

func (f *fakeCache) Set(_ context.Context, symbol string, tf domrepo.Timeframe, value []byte, ttl time.Duration) error {
	f.setCalls++
	f.lastTTL = ttl
	if f.setErr != nil {
		return f.setErr
	}
	if f.data == nil {
		f.data = map[string][]byte{}
	}
	f.data[f.key(symbol, tf)] = value
	return nil
}

type fakeStore struct {
	coinID      int64
	coinErr     error
	candles     []models.Candle
	queryErr    error
	recentCalls int
	lastLimit   int
}

func (f *fakeStore) GetCoinID(_ context.Context, _ string) (int64, error) {
	if f.coinErr != nil {
		return 0, f.coinErr
	}
	return f.coinID, nil
}

func (f *fakeStore) GetRecent1m(_ context.Context, _ int64, limit int) ([]models.Candle, error) {
	f.recentCalls++
	f.lastLimit = limit
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.candles, nil
}

func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

type fakeLive struct {
	fresh models.FreshCandle
	ok    bool
	err   error
}

func (f *fakeLive) GetCurrent(context.Context, string) (models.FreshCandle, bool, error) {
	return f.fresh, f.ok, f.err
}

type fakeKlines struct {
	candles []models.Candle
	err     error
	calls   int
}

func (f *fakeKlines) FetchKlines(_ context.Context, _ string, _ domrepo.Timeframe, _ int) ([]models.Candle, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.candles, nil
}

type noopMetrics struct{}

func (noopMetrics) RecordCacheHit(string)         {}
func (noopMetrics) RecordCacheMiss(string)        {}
func (noopMetrics) RecordResolution(string, string) {}
func (noopMetrics) RecordError(string)            {}
func (noopMetrics) RecordLatency(string, float64) {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func newEngine(t *testing.T, cache *fakeCache, store *fakeStore, live *fakeLive, klines *fakeKlines) *HistoryUseCase {
	t.Helper()
	return NewHistoryUseCase(cache, store, live, klines, noopMetrics{}, testLogger(t))
}

func TestGetHistoryCacheHitShortCircuits(t *testing.T) {
	cached := models.HistoryResponse{
		Symbol:   "BTCUSDT",
		Interval: "1m",
		Candles:  []models.Candle{minuteCandle(0, 1, 1, 1, 1, 1)},
	}
	b, err := json.Marshal(cached)
	require.NoError(t, err)

	cache := &fakeCache{data: map[string][]byte{"BTCUSDT:1m": b}}
	store := &fakeStore{}
	klines := &fakeKlines{}

	resp, err := newEngine(t, cache, store, &fakeLive{}, klines).
		GetHistory(context.Background(), "btcusdt", domrepo.TF1m, 10)
	require.NoError(t, err)
	assert.Equal(t, &cached, resp)
	assert.Zero(t, store.recentCalls, "store must not be touched on a cache hit")
	assert.Zero(t, klines.calls)
	assert.Zero(t, cache.setCalls, "cache hit must not rewrite the entry")
}

func TestGetHistoryStorePath(t *testing.T) {
	store := &fakeStore{coinID: 7, candles: []models.Candle{
		minuteCandle(0, 100, 105, 99, 102, 10),
		minuteCandle(60, 102, 108, 101, 107, 12),
		minuteCandle(120, 107, 107, 103, 105, 8),
	}}
	cache := &fakeCache{}
	klines := &fakeKlines{}

	resp, err := newEngine(t, cache, store, &fakeLive{}, klines).
		GetHistory(context.Background(), "BTCUSDT", domrepo.TF3m, 500)
	require.NoError(t, err)
	require.Len(t, resp.Candles, 1)
	assert.Equal(t, "3m", resp.Interval)
	assert.Zero(t, klines.calls, "upstream must not be called when the store has data")
	assert.Equal(t, 1, cache.setCalls, "exactly one cache write per resolved request")
	assert.Equal(t, domrepo.CacheTTL(domrepo.TF3m), cache.lastTTL)
	assert.Equal(t, 1500, store.lastLimit, "3m over 500 candles needs 1500 base minutes")
}

func TestGetHistoryMergesLiveCandle(t *testing.T) {
	store := &fakeStore{coinID: 7, candles: []models.Candle{minuteCandle(0, 1, 2, 1, 2, 5)}}
	live := &fakeLive{ok: true, fresh: models.FreshCandle{Time: 70, Open: 2, High: 3, Low: 2, Close: 3, Volume: 1}}

	resp, err := newEngine(t, &fakeCache{}, store, live, &fakeKlines{}).
		GetHistory(context.Background(), "BTCUSDT", domrepo.TF1m, 10)
	require.NoError(t, err)
	require.Len(t, resp.Candles, 2)
	assert.Equal(t, int64(60), resp.Candles[1].OpenTime)
}

func TestGetHistoryLiveCandleSurvivesAggregation(t *testing.T) {
	// Four closed minutes plus a live minute at t=240 whose 3m bucket is
	// already partially filled by minute 180. The live data must fold into
	// that partial bucket, not vanish.
	store := &fakeStore{coinID: 7, candles: []models.Candle{
		minuteCandle(0, 100, 105, 99, 103, 10),
		minuteCandle(60, 103, 108, 102, 107, 12),
		minuteCandle(120, 107, 107, 104, 105, 8),
		minuteCandle(180, 105, 106, 102, 103, 5),
	}}
	live := &fakeLive{ok: true, fresh: models.FreshCandle{Time: 240, Open: 103, High: 999, Low: 101, Close: 999, Volume: 1}}

	resp, err := newEngine(t, &fakeCache{}, store, live, &fakeKlines{}).
		GetHistory(context.Background(), "BTCUSDT", domrepo.TF3m, 10)
	require.NoError(t, err)
	require.Len(t, resp.Candles, 2)

	partial := resp.Candles[1]
	assert.Equal(t, int64(180), partial.OpenTime)
	assert.Equal(t, 999.0, partial.Close)
	assert.Equal(t, 999.0, partial.High)
	assert.Equal(t, 6.0, partial.Volume)
}

func TestGetHistoryBaseFanOutCapped(t *testing.T) {
	store := &fakeStore{coinID: 7, candles: []models.Candle{minuteCandle(0, 1, 1, 1, 1, 1)}}

	// 1d over 2000 candles would need 2.88M base rows without the cap.
	_, err := newEngine(t, &fakeCache{}, store, &fakeLive{}, &fakeKlines{}).
		GetHistory(context.Background(), "BTCUSDT", domrepo.TF1d, 2000)
	require.NoError(t, err)
	assert.Equal(t, MaxBaseCandles, store.lastLimit)
}

func TestGetHistoryUnknownSymbolFallsThrough(t *testing.T) {
	store := &fakeStore{coinErr: models.ErrSymbolNotFound}
	klines := &fakeKlines{candles: []models.Candle{minuteCandle(0, 1, 1, 1, 1, 1)}}
	cache := &fakeCache{}

	resp, err := newEngine(t, cache, store, &fakeLive{}, klines).
		GetHistory(context.Background(), "NOPEUSDT", domrepo.TF1m, 10)
	require.NoError(t, err)
	require.Len(t, resp.Candles, 1)
	assert.Equal(t, 1, klines.calls, "upstream must be hit exactly once")
	assert.Equal(t, 1, cache.setCalls)
}

func TestGetHistoryEmptyStoreFallsThrough(t *testing.T) {
	store := &fakeStore{coinID: 7, candles: nil}
	klines := &fakeKlines{candles: []models.Candle{minuteCandle(0, 1, 1, 1, 1, 1)}}

	resp, err := newEngine(t, &fakeCache{}, store, &fakeLive{}, klines).
		GetHistory(context.Background(), "BTCUSDT", domrepo.TF1m, 10)
	require.NoError(t, err)
	assert.Len(t, resp.Candles, 1)
	assert.Equal(t, 1, klines.calls)
}

func TestGetHistoryUpstreamFailure(t *testing.T) {
	store := &fakeStore{queryErr: errors.New("connection refused")}
	klines := &fakeKlines{err: errors.New("503 from upstream")}
	cache := &fakeCache{}

	_, err := newEngine(t, cache, store, &fakeLive{}, klines).
		GetHistory(context.Background(), "BTCUSDT", domrepo.TF1m, 10)
	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
	assert.Zero(t, cache.setCalls, "failed resolutions must not be cached")
}

func TestGetHistoryUnsupportedTimeframe(t *testing.T) {
	store := &fakeStore{}
	klines := &fakeKlines{}
	cache := &fakeCache{getErr: errors.New("must not be called")}

	_, err := newEngine(t, cache, store, &fakeLive{}, klines).
		GetHistory(context.Background(), "BTCUSDT", domrepo.Timeframe("45m"), 10)
	assert.ErrorIs(t, err, models.ErrUnsupportedTimeframe)
	assert.Zero(t, store.recentCalls)
	assert.Zero(t, klines.calls)
}

func TestGetHistoryCacheReadFailureDegrades(t *testing.T) {
	cache := &fakeCache{getErr: errors.New("redis down")}
	store := &fakeStore{coinID: 7, candles: []models.Candle{minuteCandle(0, 1, 1, 1, 1, 1)}}

	resp, err := newEngine(t, cache, store, &fakeLive{}, &fakeKlines{}).
		GetHistory(context.Background(), "BTCUSDT", domrepo.TF1m, 10)
	require.NoError(t, err)
	assert.Len(t, resp.Candles, 1)
}

func TestGetHistoryDefaultAndCapLimit(t *testing.T) {
	store := &fakeStore{coinID: 7, candles: []models.Candle{minuteCandle(0, 1, 1, 1, 1, 1)}}

	eng := newEngine(t, &fakeCache{}, store, &fakeLive{}, &fakeKlines{})

	_, err := eng.GetHistory(context.Background(), "BTCUSDT", domrepo.TF1m, 0)
	require.NoError(t, err)
	assert.Equal(t, domrepo.DefaultLimit(domrepo.TF1m), store.lastLimit)

	_, err = eng.GetHistory(context.Background(), "BTCUSDT", domrepo.TF1m, 999999)
	require.NoError(t, err)
	assert.Equal(t, MaxHistoryLimit, store.lastLimit)
}

func TestGetHistoryAbandonedRequestSkipsCacheWrite(t *testing.T) {
	store := &fakeStore{coinID: 7, candles: []models.Candle{minuteCandle(0, 1, 1, 1, 1, 1)}}
	cache := &fakeCache{}
	eng := newEngine(t, cache, store, &fakeLive{}, &fakeKlines{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The canceled context reaches the write-back stage via fakes that ignore
	// ctx; the engine itself must notice and skip the write.
	_, _ = eng.GetHistory(ctx, "BTCUSDT", domrepo.TF1m, 10)
	assert.Zero(t, cache.setCalls)
}
