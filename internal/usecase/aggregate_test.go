package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceGate/internal/domain/models"
	domrepo "PriceGate/internal/domain/repository"
)

func minuteCandle(t int64, o, h, l, c, v float64) models.Candle {
	return models.Candle{OpenTime: t, Open: o, High: h, Low: l, Close: c, Volume: v, CloseTime: t + 59}
}

func TestAggregateThreeMinutes(t *testing.T) {
	in := []models.Candle{
		minuteCandle(0, 100, 105, 99, 103, 10),
		minuteCandle(60, 103, 108, 102, 107, 12),
		minuteCandle(120, 107, 107, 104, 105, 8),
	}

	out, err := Aggregate(in, domrepo.TF3m, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)

	b := out[0]
	assert.Equal(t, int64(0), b.OpenTime)
	assert.Equal(t, 100.0, b.Open)
	assert.Equal(t, 108.0, b.High)
	assert.Equal(t, 99.0, b.Low)
	assert.Equal(t, 105.0, b.Close)
	assert.Equal(t, 30.0, b.Volume)
	assert.Equal(t, int64(179), b.CloseTime)
}

func TestAggregateBucketBoundaries(t *testing.T) {
	// Two 1m candles straddling a 5m boundary land in separate buckets.
	in := []models.Candle{
		minuteCandle(240, 100, 101, 99, 100, 1),
		minuteCandle(300, 100, 102, 98, 101, 2),
	}

	out, err := Aggregate(in, domrepo.TF5m, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(0), out[0].OpenTime)
	assert.Equal(t, int64(299), out[0].CloseTime)
	assert.Equal(t, int64(300), out[1].OpenTime)
	assert.Equal(t, int64(599), out[1].CloseTime)
}

func TestAggregateGapsStayAbsent(t *testing.T) {
	// Minutes 1..4 of the first 5m bucket are missing; the bucket is still
	// built from what exists and no synthetic bucket appears in between.
	in := []models.Candle{
		minuteCandle(0, 100, 100, 100, 100, 1),
		minuteCandle(600, 200, 200, 200, 200, 1),
	}

	out, err := Aggregate(in, domrepo.TF5m, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(0), out[0].OpenTime)
	assert.Equal(t, int64(600), out[1].OpenTime)
}

func TestAggregateTrimsToLimit(t *testing.T) {
	in := make([]models.Candle, 0, 10)
	for i := int64(0); i < 10; i++ {
		in = append(in, minuteCandle(i*60, 1, 1, 1, 1, 1))
	}

	out, err := Aggregate(in, domrepo.TF1m, 3)
	require.NoError(t, err)
	require.Len(t, out, 3)
	// Most recent buckets survive the trim.
	assert.Equal(t, int64(420), out[0].OpenTime)
	assert.Equal(t, int64(540), out[2].OpenTime)
}

func TestAggregateDeterministic(t *testing.T) {
	in := []models.Candle{
		minuteCandle(0, 1, 2, 0.5, 1.5, 3),
		minuteCandle(60, 1.5, 3, 1, 2, 4),
		minuteCandle(180, 2, 2.5, 1.8, 2.2, 5),
	}

	first, err := Aggregate(in, domrepo.TF3m, 0)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Aggregate(in, domrepo.TF3m, 0)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	out, err := Aggregate(nil, domrepo.TF1h, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAggregateUnsupportedTimeframe(t *testing.T) {
	_, err := Aggregate([]models.Candle{minuteCandle(0, 1, 1, 1, 1, 1)}, domrepo.Timeframe("7m"), 0)
	assert.ErrorIs(t, err, models.ErrUnsupportedTimeframe)
}

func TestBucketStart(t *testing.T) {
	assert.Equal(t, int64(0), BucketStart(59, 60))
	assert.Equal(t, int64(60), BucketStart(60, 60))
	assert.Equal(t, int64(3600), BucketStart(3720, 3600))
}

func TestMergeFreshAppendsNewMinute(t *testing.T) {
	series := []models.Candle{minuteCandle(0, 1, 1, 1, 1, 1)}
	fresh := models.FreshCandle{Time: 65, Open: 2, High: 3, Low: 1.5, Close: 2.5, Volume: 7}

	out := MergeFresh(series, fresh)
	require.Len(t, out, 2)
	assert.Equal(t, int64(60), out[1].OpenTime)
	assert.Equal(t, int64(119), out[1].CloseTime)
	assert.Equal(t, 2.5, out[1].Close)
}

func TestMergeFreshSkipsClosedMinute(t *testing.T) {
	// The live snapshot covers a minute the series already holds closed, so
	// the merge is a no-op: folding it again would double-count volume.
	series := []models.Candle{
		minuteCandle(0, 1, 2, 1, 2, 5),
		minuteCandle(60, 2, 3, 2, 3, 4),
	}
	fresh := models.FreshCandle{Time: 90, Open: 2, High: 2, Low: 2, Close: 2, Volume: 1}

	out := MergeFresh(series, fresh)
	assert.Len(t, out, 2)
	assert.Equal(t, series, out)
}

func TestMergeFreshEmptySeries(t *testing.T) {
	fresh := models.FreshCandle{Time: 30, Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}
	out := MergeFresh(nil, fresh)
	require.Len(t, out, 1)
	assert.Equal(t, int64(0), out[0].OpenTime)
}

func TestMergeFreshFoldsIntoPartialBucket(t *testing.T) {
	// Closed minutes 0..3 plus the live minute at t=240: after aggregation to
	// 3m the second (partial) bucket must carry the live minute's close, high
	// and volume rather than only the closed minute 180.
	series := []models.Candle{
		minuteCandle(0, 100, 105, 99, 103, 10),
		minuteCandle(60, 103, 108, 102, 107, 12),
		minuteCandle(120, 107, 107, 104, 105, 8),
		minuteCandle(180, 105, 106, 102, 103, 5),
	}
	fresh := models.FreshCandle{Time: 240, Open: 103, High: 999, Low: 101, Close: 999, Volume: 1}

	out, err := Aggregate(MergeFresh(series, fresh), domrepo.TF3m, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)

	partial := out[1]
	assert.Equal(t, int64(180), partial.OpenTime)
	assert.Equal(t, 105.0, partial.Open)
	assert.Equal(t, 999.0, partial.High)
	assert.Equal(t, 101.0, partial.Low)
	assert.Equal(t, 999.0, partial.Close)
	assert.Equal(t, 6.0, partial.Volume)
}
