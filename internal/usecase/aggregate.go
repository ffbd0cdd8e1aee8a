package usecase

import (
	"sort"

	"PriceGate/internal/domain/models"
	domrepo "PriceGate/internal/domain/repository"
)

// Aggregate collapses an ascending sequence of 1m candles into buckets of the
// target timeframe. The same function backs the on-demand query path and the
// fresh-candle merge, so both apply an identical bucketing rule.
//
// Bucket assignment works in unix seconds throughout:
// bucketStart = (openTime / width) * width. Missing base minutes are simply
// absent; buckets are never zero-filled, so gapped input yields sparser output.
func Aggregate(candles []models.Candle, tf domrepo.Timeframe, limit int) ([]models.Candle, error) {
	dur, err := domrepo.DurationOf(tf)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return []models.Candle{}, nil
	}

	width := int64(dur.Seconds())
	buckets := make(map[int64]*models.Candle, len(candles)/int(dur.Minutes())+1)

	for _, c := range candles {
		start := (c.OpenTime / width) * width
		b, ok := buckets[start]
		if !ok {
			buckets[start] = &models.Candle{
				OpenTime:  start,
				Open:      c.Open,
				High:      c.High,
				Low:       c.Low,
				Close:     c.Close,
				Volume:    c.Volume,
				CloseTime: start + width - 1,
			}
			continue
		}
		if c.High > b.High {
			b.High = c.High
		}
		if c.Low < b.Low {
			b.Low = c.Low
		}
		b.Close = c.Close // input is ascending, last write wins
		b.Volume += c.Volume
	}

	out := make([]models.Candle, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenTime < out[j].OpenTime })

	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// BucketStart returns the bucket open time for ts at the given width in seconds.
func BucketStart(ts, widthSec int64) int64 {
	return (ts / widthSec) * widthSec
}

// MergeFresh appends the still-open minute to an ascending 1m series, unless
// that minute is already closed in the series. It runs before aggregation so
// that coarser timeframes fold the live minute into their current partial
// bucket instead of losing it.
func MergeFresh(series []models.Candle, fresh models.FreshCandle) []models.Candle {
	baseDur, _ := domrepo.DurationOf(domrepo.BaseTimeframe)
	width := int64(baseDur.Seconds())
	start := BucketStart(fresh.Time, width)

	if n := len(series); n > 0 && series[n-1].OpenTime >= start {
		return series
	}
	return append(series, models.Candle{
		OpenTime:  start,
		Open:      fresh.Open,
		High:      fresh.High,
		Low:       fresh.Low,
		Close:     fresh.Close,
		Volume:    fresh.Volume,
		CloseTime: start + width - 1,
	})
}
