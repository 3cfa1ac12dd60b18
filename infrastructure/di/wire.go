//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"stackecho/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideMetrics,
	ProvideTracing,
	ProvideSnapshotStore,
	ProvideReadiness,
	ProvideDispatcher,
	ProvideHub,
	ProvideEventsServer,
	ProvideSessionManager,
	ProvideTokenService,
	ProvideAccounts,
	ProvideOAuthProviders,
	ProvideUserDirectory,
	ProvideTagDirectory,
	ProvideWatcher,
	ProvideHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The cleanup releases
// the snapshot store, tracer and logger in reverse order.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}
