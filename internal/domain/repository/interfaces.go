package repository

import (
	"context"
	"time"

	"PriceGate/internal/domain/models"
)

// ResponseCache holds fully-formed history responses keyed by (symbol, timeframe).
type ResponseCache interface {
	Get(ctx context.Context, symbol string, tf Timeframe) (b []byte, ok bool, err error)
	Set(ctx context.Context, symbol string, tf Timeframe, value []byte, ttl time.Duration) error
}

// CandleStore is the durable store of closed 1m candles.
type CandleStore interface {
	// GetCoinID resolves a trading symbol to its internal id.
	// Returns models.ErrSymbolNotFound when the symbol is unknown.
	GetCoinID(ctx context.Context, symbol string) (int64, error)
	// GetRecent1m returns up to limit most recent closed 1m candles,
	// ascending by open time.
	GetRecent1m(ctx context.Context, coinID int64, limit int) ([]models.Candle, error)
	Health(ctx context.Context) error
	Close() error
}

// LiveCandleStore exposes the current, not-yet-closed 1m candle per symbol,
// owned and mutated by the external realtime aggregator. Read-only here.
type LiveCandleStore interface {
	GetCurrent(ctx context.Context, symbol string) (models.FreshCandle, bool, error)
}

// KlineClient fetches candles from the upstream market-data provider.
type KlineClient interface {
	FetchKlines(ctx context.Context, symbol string, tf Timeframe, limit int) ([]models.Candle, error)
}

// Metrics records resolution outcomes for observability.
type Metrics interface {
	RecordCacheHit(tf string)
	RecordCacheMiss(tf string)
	RecordResolution(path, tf string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
