package repository

import (
	"time"

	"PriceGate/internal/domain/models"
)

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF3m  Timeframe = "3m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF1h  Timeframe = "1h"
	TF2h  Timeframe = "2h"
	TF4h  Timeframe = "4h"
	TF6h  Timeframe = "6h"
	TF8h  Timeframe = "8h"
	TF12h Timeframe = "12h"
	TF1d  Timeframe = "1d"
	TF3d  Timeframe = "3d"
	TF1w  Timeframe = "1w"
	TF1M  Timeframe = "1M"
)

// BaseTimeframe is the only granularity persisted directly; everything
// coarser is derived from it.
const BaseTimeframe = TF1m

// tfSpec is one catalog row: bucket width, curated default history length,
// and how long a cached response stays fresh for that granularity.
type tfSpec struct {
	duration     time.Duration
	defaultLimit int
	cacheTTL     time.Duration
}

var catalog = map[Timeframe]tfSpec{
	TF1m:  {time.Minute, 1000, 5 * time.Second},
	TF3m:  {3 * time.Minute, 1000, 10 * time.Second},
	TF5m:  {5 * time.Minute, 1000, 15 * time.Second},
	TF15m: {15 * time.Minute, 1000, 30 * time.Second},
	TF30m: {30 * time.Minute, 800, 60 * time.Second},
	TF1h:  {time.Hour, 720, 120 * time.Second},
	TF2h:  {2 * time.Hour, 500, 240 * time.Second},
	TF4h:  {4 * time.Hour, 500, 300 * time.Second},
	TF6h:  {6 * time.Hour, 400, 420 * time.Second},
	TF8h:  {8 * time.Hour, 400, 600 * time.Second},
	TF12h: {12 * time.Hour, 365, 900 * time.Second},
	TF1d:  {24 * time.Hour, 365, 1200 * time.Second},
	TF3d:  {72 * time.Hour, 200, 1500 * time.Second},
	TF1w:  {7 * 24 * time.Hour, 156, 1800 * time.Second},
	TF1M:  {30 * 24 * time.Hour, 60, 3600 * time.Second},
}

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	_, ok := catalog[tf]
	return ok
}

// DurationOf returns the bucket width for tf.
func DurationOf(tf Timeframe) (time.Duration, error) {
	s, ok := catalog[tf]
	if !ok {
		return 0, models.ErrUnsupportedTimeframe
	}
	return s.duration, nil
}

// DefaultLimit returns the curated default history length for tf.
func DefaultLimit(tf Timeframe) int {
	if s, ok := catalog[tf]; ok {
		return s.defaultLimit
	}
	return 0
}

// CacheTTL returns the response cache freshness window for tf. The window
// grows with granularity: a 1m series goes stale in seconds, a weekly one
// can sit for half an hour.
func CacheTTL(tf Timeframe) time.Duration {
	if s, ok := catalog[tf]; ok {
		return s.cacheTTL
	}
	return 0
}
