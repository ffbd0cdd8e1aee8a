package models

// Candle is an OHLCV record for one time bucket. All timestamps are unix
// seconds; upstream milliseconds are converted at the client edge.
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"close_time"`
}

// HistoryResponse is the wire shape of a resolved candle series.
type HistoryResponse struct {
	Symbol   string   `json:"symbol"`
	Interval string   `json:"interval"`
	Candles  []Candle `json:"candles"`
}

// FreshCandle is the still-open 1m bar written by the realtime aggregator.
// Stored in Redis as JSON with a bare bucket timestamp; CloseTime is implied.
type FreshCandle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// MarketCap is the market-cap passthrough payload. MarketCap is nil when the
// symbol is unmapped or the provider is unavailable.
type MarketCap struct {
	Symbol    string   `json:"symbol"`
	MarketCap *float64 `json:"marketCap"`
}
