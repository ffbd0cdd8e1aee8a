package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"PriceGate/internal/domain/models"
	domrepo "PriceGate/internal/domain/repository"
	xhttp "PriceGate/pkg/http"
)

var (
	// ErrRateLimited is returned on HTTP 429 from the provider.
	ErrRateLimited = errors.New("binance: rate limited")
	// ErrBadStatus is returned on any other non-2xx status.
	ErrBadStatus = errors.New("binance: bad status")
)

// Client is the upstream fallback KlineClient backed by the Binance REST API.
// It carries a bounded timeout and no retry logic; retrying is a concern of
// callers or an intermediate proxy, not this client.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

// New creates a Binance klines client.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// FetchKlines fetches up to limit candles and normalizes them into the
// internal shape: prices from strings to float64, timestamps from
// milliseconds to unix seconds.
func (c *Client) FetchKlines(ctx context.Context, symbol string, tf domrepo.Timeframe, limit int) ([]models.Candle, error) {
	interval, err := intervalFor(tf)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {interval},
			"limit":    {strconv.Itoa(limit)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("binance klines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %d: %s", ErrBadStatus, resp.StatusCode, body)
	}

	var raw [][]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for i, k := range raw {
		c, err := normalizeKline(k)
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// intervalFor maps a catalog timeframe to the provider's interval vocabulary.
// The sets coincide today; the indirection keeps the coupling explicit.
func intervalFor(tf domrepo.Timeframe) (string, error) {
	if !domrepo.IsValidTimeframe(tf) {
		return "", fmt.Errorf("%w: %s", models.ErrUnsupportedTimeframe, tf)
	}
	return string(tf), nil
}

// normalizeKline converts one provider kline row:
// [openTime(ms), open, high, low, close, volume, closeTime(ms), ...]
func normalizeKline(k []interface{}) (models.Candle, error) {
	if len(k) < 7 {
		return models.Candle{}, fmt.Errorf("short kline row: %d fields", len(k))
	}
	openTime, err := asInt64(k[0])
	if err != nil {
		return models.Candle{}, fmt.Errorf("open_time: %w", err)
	}
	closeTime, err := asInt64(k[6])
	if err != nil {
		return models.Candle{}, fmt.Errorf("close_time: %w", err)
	}
	var prices [5]float64
	for i := 1; i <= 5; i++ {
		v, err := asFloat64(k[i])
		if err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		prices[i-1] = v
	}
	return models.Candle{
		OpenTime:  openTime / 1000,
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
		Volume:    prices[4],
		CloseTime: closeTime / 1000,
	}, nil
}

func asInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case json.Number:
		return t.Int64()
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func asFloat64(v interface{}) (float64, error) {
	switch t := v.(type) {
	case string:
		return strconv.ParseFloat(t, 64)
	case float64:
		return t, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

var _ domrepo.KlineClient = (*Client)(nil)
