package di

import (
	"context"
	"fmt"

	domrepo "PriceGate/internal/domain/repository"
	"PriceGate/internal/handler/api"
	internalrepo "PriceGate/internal/repository"
	"PriceGate/internal/service/binance"
	"PriceGate/internal/service/coingecko"
	"PriceGate/internal/usecase"
	pkgcache "PriceGate/pkg/cache"
	pkgch "PriceGate/pkg/clickhouse"
	"PriceGate/pkg/config"
	xhttp "PriceGate/pkg/http"
	applogger "PriceGate/pkg/logger"
	"PriceGate/pkg/metrics"
	pkgpg "PriceGate/pkg/postgres"
	"PriceGate/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lcfg := &applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if lcfg.Level == "" {
		lcfg.Level = "info"
	}
	if lcfg.Format == "" {
		lcfg.Format = "console"
	}
	if lcfg.Output == "" {
		lcfg.Output = "stdout"
	}
	return applogger.New(lcfg)
}

// ProvideRedisCache creates the shared Redis client.
func ProvideRedisCache(cfg *config.Config) (pkgcache.Service, error) {
	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideCandleStore creates the persistent candle store for the configured driver.
func ProvideCandleStore(cfg *config.Config, l *applogger.Logger) (domrepo.CandleStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		client, err := pkgpg.NewClient(context.Background(),
			pkgpg.WithHost(cfg.Postgres.Host),
			pkgpg.WithPort(cfg.Postgres.Port),
			pkgpg.WithDatabase(cfg.Postgres.Database),
			pkgpg.WithCredentials(cfg.Postgres.User, cfg.Postgres.Password),
			pkgpg.WithMaxConnections(cfg.Postgres.MaxConns, cfg.Postgres.MinConns),
			pkgpg.WithDialTimeout(cfg.Postgres.DialTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("postgres client: %w", err)
		}
		store := internalrepo.NewPGCandleStore(client, cfg.Postgres.QueryTimeout)
		store.SetLogger(l)
		return store, nil
	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store := internalrepo.NewCHCandleStore(client)
		store.SetLogger(l)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// ProvideResponseCache wraps the Redis client as the history response cache.
func ProvideResponseCache(cache pkgcache.Service) domrepo.ResponseCache {
	return internalrepo.NewRedisResponseCache(cache)
}

// ProvideLiveStore wraps the Redis client as the fresh-candle reader.
func ProvideLiveStore(cache pkgcache.Service) domrepo.LiveCandleStore {
	return internalrepo.NewRedisLiveStore(cache)
}

// ProvideKlineClient creates the Binance fallback client.
func ProvideKlineClient(cfg *config.Config) domrepo.KlineClient {
	return binance.New(cfg.Binance.BaseURL, cfg.Binance.Timeout)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideHistoryUseCase creates the candle resolution engine.
func ProvideHistoryUseCase(
	cache domrepo.ResponseCache,
	store domrepo.CandleStore,
	live domrepo.LiveCandleStore,
	klines domrepo.KlineClient,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(cache, store, live, klines, m, l)
}

// ProvideCoinGecko creates the market-cap client.
func ProvideCoinGecko(cfg *config.Config, cache pkgcache.Service, l *applogger.Logger) *coingecko.Client {
	return coingecko.New(coingecko.Config{
		BaseURL:    cfg.CoinGecko.BaseURL,
		Timeout:    cfg.CoinGecko.Timeout,
		CacheTTL:   cfg.CoinGecko.CacheTTL,
		MaxRetries: cfg.CoinGecko.MaxRetries,
		MaxRPS:     cfg.CoinGecko.MaxRPS,
	}, cache, l)
}

// ProvideHandler creates the prices HTTP handler.
func ProvideHandler(
	l *applogger.Logger,
	history *usecase.HistoryUseCase,
	marketCap *coingecko.Client,
	store domrepo.CandleStore,
	cache pkgcache.Service,
) xhttp.Handler {
	return api.NewPricesHandler(l, history, marketCap, store, cache)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	store domrepo.CandleStore,
	cache pkgcache.Service,
) *server.App {
	return server.New(cfg, l, handler, store, cache)
}
