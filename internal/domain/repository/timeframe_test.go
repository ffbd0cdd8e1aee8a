package repository

import (
	"errors"
	"testing"
	"time"

	"PriceGate/internal/domain/models"
)

func TestCatalogCoversAllTimeframes(t *testing.T) {
	all := []Timeframe{
		TF1m, TF3m, TF5m, TF15m, TF30m,
		TF1h, TF2h, TF4h, TF6h, TF8h, TF12h,
		TF1d, TF3d, TF1w, TF1M,
	}
	for _, tf := range all {
		if !IsValidTimeframe(tf) {
			t.Fatalf("timeframe %s missing from catalog", tf)
		}
		d, err := DurationOf(tf)
		if err != nil {
			t.Fatalf("DurationOf(%s): %v", tf, err)
		}
		if d < time.Minute {
			t.Fatalf("duration for %s below base: %v", tf, d)
		}
		if DefaultLimit(tf) <= 0 {
			t.Fatalf("default limit for %s not positive", tf)
		}
		if CacheTTL(tf) <= 0 {
			t.Fatalf("cache ttl for %s not positive", tf)
		}
	}
}

func TestMinuteAndMonthAreDistinct(t *testing.T) {
	dm, err := DurationOf(TF1m)
	if err != nil {
		t.Fatalf("DurationOf(1m): %v", err)
	}
	dM, err := DurationOf(TF1M)
	if err != nil {
		t.Fatalf("DurationOf(1M): %v", err)
	}
	if dm == dM {
		t.Fatal("1m and 1M must not share a duration")
	}
	if dM != 30*24*time.Hour {
		t.Fatalf("unexpected 1M duration %v", dM)
	}
}

func TestUnknownTimeframe(t *testing.T) {
	for _, tf := range []Timeframe{"", "45m", "1y", "5S", "60"} {
		if IsValidTimeframe(tf) {
			t.Fatalf("%q should not validate", tf)
		}
		if _, err := DurationOf(tf); !errors.Is(err, models.ErrUnsupportedTimeframe) {
			t.Fatalf("DurationOf(%q): want ErrUnsupportedTimeframe, got %v", tf, err)
		}
	}
}

func TestCacheTTLGrowsWithWidth(t *testing.T) {
	if CacheTTL(TF1m) >= CacheTTL(TF1h) {
		t.Fatal("1m responses must expire faster than 1h responses")
	}
	if CacheTTL(TF1h) >= CacheTTL(TF1d) {
		t.Fatal("1h responses must expire faster than 1d responses")
	}
}
