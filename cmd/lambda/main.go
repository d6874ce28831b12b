package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"refdata-backend/infrastructure/config"
	"refdata-backend/infrastructure/di"
	"refdata-backend/interfaces/http/rest"
	"refdata-backend/pkg/auth"
)

// Global variables for Lambda lifecycle management
var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambdaV2

	// container holds the dependency injection container
	container *di.Container

	// coldStart tracks whether this is a cold start invocation
	coldStart = true

	// coldStartTime records when the cold start began
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()
	log.Println("Lambda cold start initiated")

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	router := rest.NewRouter(
		container.CommandBus,
		container.QueryBus,
		cfg,
		container.Logger,
	)

	// Per-instance token buckets are useless behind Lambda's horizontal
	// scaling; count requests in the shared table instead.
	if cfg.StorageDriver == config.DriverDynamoDB {
		awsCfg, err := di.ProvideAWSConfig(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to load AWS configuration: %v", err)
		}
		dynamoClient := di.ProvideDynamoDBClient(awsCfg)
		router = router.WithRateLimiters(
			auth.NewDistributedIPRateLimiter(dynamoClient, cfg.DynamoDBTable, 300),
			auth.NewDistributedUserRateLimiter(dynamoClient, cfg.DynamoDBTable, 60),
		)
	}

	handler := router.Setup()

	// Create Lambda adapter - need to type assert to *chi.Mux
	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	log.Printf("Lambda cold start completed in %v", time.Since(coldStartTime))
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if container != nil && container.Logger != nil {
		container.Logger.Debug("Lambda received request",
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("request_id", req.RequestContext.RequestID),
		)
	}

	// The admin routes sit behind an API Gateway JWT authorizer. A
	// request that reached this function with a bearer token has
	// already been validated, so mark it for the auth middleware and
	// forward the authorizer's user claims.
	if req.Headers != nil && strings.HasPrefix(adminPath(req), "/api/v1/admin") {
		authHeader := req.Headers["authorization"]
		if authHeader == "" {
			authHeader = req.Headers["Authorization"]
		}
		_, viaGateway := req.Headers["x-amzn-trace-id"]

		if viaGateway && strings.HasPrefix(authHeader, "Bearer ") {
			req.Headers["X-API-Gateway-Authorized"] = "true"
			if jwt := req.RequestContext.Authorizer; jwt != nil && jwt.JWT != nil {
				if sub, ok := jwt.JWT.Claims["sub"]; ok {
					req.Headers["X-User-ID"] = sub
				}
				if email, ok := jwt.JWT.Claims["email"]; ok {
					req.Headers["X-User-Email"] = email
				}
				if roles, ok := jwt.JWT.Claims["roles"]; ok {
					req.Headers["X-User-Roles"] = roles
				}
			}
		}
	}

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}

	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}

	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	if container != nil && container.Logger != nil && resp.StatusCode >= 400 {
		container.Logger.Error("Lambda error response",
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", resp.Body),
		)
	}

	return resp, err
}

func adminPath(req events.APIGatewayV2HTTPRequest) string {
	if req.RequestContext.HTTP.Path != "" {
		return req.RequestContext.HTTP.Path
	}
	return req.RawPath
}

// main is the entry point for the Lambda function
func main() {
	lambda.Start(Handler)
}
