// Package main implements the scheduled Lambda that re-warms the
// reference-data cache. EventBridge triggers it once a day, shortly
// before the entries written the previous day expire.
package main

import (
	"context"
	"log"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"refdata-backend/application/commands"
	commandbus "refdata-backend/application/commands/bus"
	"refdata-backend/infrastructure/config"
	"refdata-backend/infrastructure/di"
)

// Global dependencies for Lambda performance optimization
var (
	commandBus *commandbus.CommandBus
	warmStates []string
	logger     *zap.Logger
)

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	commandBus = container.CommandBus
	warmStates = cfg.WarmStates
	logger = container.Logger

	log.Println("Warm-lookups handler initialized successfully")
}

// HandleScheduledWarmUp refreshes every lookup ahead of TTL expiry
func HandleScheduledWarmUp(ctx context.Context, event awsevents.CloudWatchEvent) error {
	logger.Info("Scheduled warm-up triggered",
		zap.String("source", event.Source),
		zap.Time("time", event.Time),
		zap.Strings("states", warmStates),
	)

	cmd := commands.WarmLookupsCommand{
		States:       warmStates,
		ForceRefresh: true,
	}
	if err := commandBus.Send(ctx, cmd); err != nil {
		logger.Error("Scheduled warm-up failed", zap.Error(err))
		return err
	}

	logger.Info("Scheduled warm-up complete")
	return nil
}

func main() {
	lambda.Start(HandleScheduledWarmUp)
}
