package util

import "testing"

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("6380", 6379); got != 6380 {
		t.Fatalf("unexpected value %d", got)
	}
	if got := ParseIntDefault("", 6379); got != 6379 {
		t.Fatalf("empty input must yield default, got %d", got)
	}
	if got := ParseIntDefault("not-a-port", 6379); got != 6379 {
		t.Fatalf("invalid input must yield default, got %d", got)
	}
}
