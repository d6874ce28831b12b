package di

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"refdata-backend/application/commands"
	"refdata-backend/application/commands/bus"
	commands_handlers "refdata-backend/application/commands/handlers"
	"refdata-backend/application/ports"
	"refdata-backend/application/queries"
	querybus "refdata-backend/application/queries/bus"
	queries_handlers "refdata-backend/application/queries/handlers"
	domaincfg "refdata-backend/domain/config"
	"refdata-backend/infrastructure/cache"
	"refdata-backend/infrastructure/config"
	"refdata-backend/infrastructure/messaging/eventbridge"
	dynamostore "refdata-backend/infrastructure/persistence/dynamodb"
	memorystore "refdata-backend/infrastructure/persistence/memory"
	redisstore "refdata-backend/infrastructure/persistence/redis"
	"refdata-backend/infrastructure/source/rest"
	"refdata-backend/pkg/observability"
	"refdata-backend/pkg/utils"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDomainConfig derives the cache business rules from the
// environment, with deployment overrides applied on top.
func ProvideDomainConfig(cfg *config.Config) (*domaincfg.DomainConfig, error) {
	dc := domaincfg.LoadDomainConfig(cfg.Environment)
	if cfg.CacheTTL > 0 {
		dc.EntryTTL = cfg.CacheTTL
	}
	if cfg.UpstreamTimeout > 0 {
		dc.UpstreamTimeout = cfg.UpstreamTimeout
	}
	dc.CoalesceRequests = cfg.CoalesceRequests
	if err := dc.Validate(); err != nil {
		return nil, err
	}
	return dc, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideStore selects the durable store backing the cache
func ProvideStore(cfg *config.Config, dynamoClient *awsdynamodb.Client, logger *zap.Logger) (ports.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return memorystore.NewStore(), nil
	case config.DriverDynamoDB:
		return dynamostore.NewStore(dynamoClient, cfg.DynamoDBTable, logger), nil
	case config.DriverRedis:
		return redisstore.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ProvideSource creates the upstream listing API client
func ProvideSource(cfg *config.Config, domainCfg *domaincfg.DomainConfig, logger *zap.Logger) ports.Source {
	httpClient := &http.Client{Timeout: domainCfg.UpstreamTimeout}
	client := rest.NewClient(httpClient, cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, logger)
	if cfg.EnableTracing {
		client = client.WithTracer(observability.NewTracer("refdata-backend"))
	}
	return client
}

// ProvideClock provides the wall clock
func ProvideClock() ports.Clock {
	return utils.SystemClock{}
}

// ProvideMetrics creates the metrics sink
func ProvideMetrics(cfg *config.Config, cwClient *awscloudwatch.Client, logger *zap.Logger) ports.Metrics {
	if !cfg.EnableMetrics {
		return observability.NoopMetrics{}
	}
	return observability.NewCloudWatchMetrics(cwClient, logger)
}

// ProvideEventBus creates the platform event publisher
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideReferenceData assembles the read-through cache
func ProvideReferenceData(
	store ports.Store,
	source ports.Source,
	clock ports.Clock,
	metrics ports.Metrics,
	domainCfg *domaincfg.DomainConfig,
	logger *zap.Logger,
) ports.ReferenceData {
	return cache.NewReferenceDataCache(store, source, clock, logger, metrics, cache.Config{
		TTL:              domainCfg.EntryTTL,
		CoalesceRequests: domainCfg.CoalesceRequests,
	})
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// commandLogger bridges zap's sugared logger to the bus logging middleware
type commandLogger struct {
	sugar *zap.SugaredLogger
}

func (l commandLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l commandLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	refData ports.ReferenceData,
	eventBus ports.EventBus,
	clock ports.Clock,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()
	pipeline := bus.NewPipeline(bus.LoggingMiddleware(commandLogger{sugar: logger.Sugar()}))

	warmHandler := commands_handlers.NewWarmLookupsHandler(refData, eventBus, clock, logger)
	commandBus.Register(commands.WarmLookupsCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			warmCmd, ok := cmd.(commands.WarmLookupsCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return warmHandler.Handle(ctx, warmCmd)
		},
	}))

	clearHandler := commands_handlers.NewClearReferenceDataHandler(refData, eventBus, clock, logger)
	commandBus.Register(commands.ClearReferenceDataCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			clearCmd, ok := cmd.(commands.ClearReferenceDataCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return clearHandler.Handle(ctx, clearCmd)
		},
	}))

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(refData ports.ReferenceData, metrics ports.Metrics, logger *zap.Logger) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()
	instrument := querybus.NewMetricsMiddleware(metrics)

	getLookupHandler := queries_handlers.NewGetLookupHandler(refData, logger)
	queryBus.Register(queries.GetLookupQuery{}, instrument.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetLookupQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getLookupHandler.Handle(ctx, getQuery)
		},
	}))

	return queryBus
}
