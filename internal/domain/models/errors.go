package models

import "errors"

var (
	// ErrUnsupportedTimeframe is a caller input error; surfaced as 400.
	ErrUnsupportedTimeframe = errors.New("unsupported timeframe")

	// ErrUpstreamUnavailable means every resolution tier failed, including the
	// upstream fallback; surfaced as 502.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrSymbolNotFound is an internal store signal: the symbol has no coin id,
	// so the persistent path degrades to the upstream fallback.
	ErrSymbolNotFound = errors.New("symbol not found")
)
