//go:build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"moonwatch/internal/config"
	"moonwatch/internal/gateway/binance"
	"moonwatch/internal/market"
)

var providerSet = wire.NewSet(
	provideCoins,
	provideGateway,
	wire.Bind(new(market.Gateway), new(*binance.Client)),
	provideEngine,
	providePriceWatcher,
	provideNotifier,
	provideRegistry,
	provideMetrics,
	NewApp,
)

// Build wires an App from a loaded config.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	wire.Build(providerSet)
	return nil, nil
}
