//go:build wireinject
// +build wireinject

package di

import (
	"PriceGate/pkg/config"
	"PriceGate/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideCandleStore,

		// Repositories
		ProvideResponseCache,
		ProvideLiveStore,
		ProvideKlineClient,

		// Use cases and services
		ProvideHistoryUseCase,
		ProvideCoinGecko,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
