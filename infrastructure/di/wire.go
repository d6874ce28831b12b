//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"refdata-backend/application/commands/bus"
	"refdata-backend/application/ports"
	querybus "refdata-backend/application/queries/bus"
	domaincfg "refdata-backend/domain/config"
	"refdata-backend/infrastructure/config"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	DomainConfig  *domaincfg.DomainConfig
	Logger        *zap.Logger
	Store         ports.Store
	Source        ports.Source
	Clock         ports.Clock
	Metrics       ports.Metrics
	EventBus      ports.EventBus
	ReferenceData ports.ReferenceData
	CommandBus    *bus.CommandBus
	QueryBus      *querybus.QueryBus
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideStore,
	ProvideSource,
	ProvideClock,
	ProvideMetrics,
	ProvideEventBus,
	ProvideReferenceData,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
