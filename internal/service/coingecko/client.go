package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"PriceGate/internal/domain/models"
	"PriceGate/internal/service/ratelimit"
	pkgcache "PriceGate/pkg/cache"
	xhttp "PriceGate/pkg/http"
	applogger "PriceGate/pkg/logger"
)

// symbolMap resolves trading symbols to CoinGecko coin ids.
var symbolMap = map[string]string{
	"BTCUSDT": "bitcoin",
	"ETHUSDT": "ethereum",
	"BNBUSDT": "binancecoin",
	"SOLUSDT": "solana",
	"ADAUSDT": "cardano",
}

// Client is a thin market-cap passthrough with a Redis cache in front of the
// CoinGecko simple-price endpoint. Provider failures degrade to a null
// market cap instead of an error.
type Client struct {
	baseURL    string
	http       *xhttp.Client
	cache      pkgcache.Service
	cacheTTL   time.Duration
	maxRetries int
	limiter    *ratelimit.Limiter
	maxRPS     float64
	logger     *applogger.Logger
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration
	MaxRetries int
	MaxRPS     float64
}

func New(cfg Config, cache pkgcache.Service, logger *applogger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.MaxRPS <= 0 {
		cfg.MaxRPS = 0.5
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		http:       xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		cache:      cache,
		cacheTTL:   cfg.CacheTTL,
		maxRetries: cfg.MaxRetries,
		limiter:    ratelimit.New(),
		maxRPS:     cfg.MaxRPS,
		logger:     logger,
	}
}

type cachedCap struct {
	MarketCap *float64 `json:"marketCap"`
}

// GetMarketCap returns the market cap for symbol, or a null value when the
// symbol is unmapped or the provider stays unavailable.
func (c *Client) GetMarketCap(ctx context.Context, symbol string) (models.MarketCap, error) {
	out := models.MarketCap{Symbol: symbol}

	coinID, ok := symbolMap[symbol]
	if !ok {
		c.logger.Warn("market cap: unknown symbol", applogger.String("symbol", symbol))
		return out, nil
	}

	key := pkgcache.GenerateKey("market_cap", symbol)
	if b, hit, err := c.cache.GetBytes(ctx, key); err != nil {
		c.logger.Warn("market cap cache read failed", applogger.Error(err))
	} else if hit {
		var cc cachedCap
		if err := json.Unmarshal(b, &cc); err == nil {
			out.MarketCap = cc.MarketCap
			return out, nil
		}
	}

	mcap, err := c.fetch(ctx, coinID)
	if err != nil {
		c.logger.Error("market cap fetch failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return out, nil
	}
	out.MarketCap = mcap

	if mcap != nil {
		if b, err := json.Marshal(cachedCap{MarketCap: mcap}); err == nil {
			if err := c.cache.SetBytes(ctx, key, b, c.cacheTTL); err != nil {
				c.logger.Warn("market cap cache write failed", applogger.Error(err))
			}
		}
	}
	return out, nil
}

// fetch calls the provider, backing off on 429s up to maxRetries attempts.
func (c *Client) fetch(ctx context.Context, coinID string) (*float64, error) {
	if !c.limiter.Allow("coingecko", c.maxRPS*4, c.maxRPS) {
		return nil, fmt.Errorf("coingecko: local rate limit")
	}

	var mcap *float64
	attempt := func() error {
		resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    c.baseURL + "/simple/price",
			QueryParams: map[string][]string{
				"ids":                {coinID},
				"vs_currencies":      {"usd"},
				"include_market_cap": {"true"},
			},
		})
		if err != nil {
			return backoff.Permanent(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("coingecko: rate limited")
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("coingecko: status %d", resp.StatusCode))
		}

		var data map[string]map[string]float64
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return backoff.Permanent(fmt.Errorf("decode: %w", err))
		}
		if v, ok := data[coinID]["usd_market_cap"]; ok {
			mcap = &v
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(attempt, bo); err != nil {
		return nil, err
	}
	return mcap, nil
}
