package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"refdata-backend/application/commands/bus"
	querybus "refdata-backend/application/queries/bus"
	"refdata-backend/infrastructure/config"
	"refdata-backend/interfaces/http/rest/handlers"
	"refdata-backend/interfaces/http/rest/middleware"
	"refdata-backend/pkg/auth"
	apperrors "refdata-backend/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	cfg          *config.Config
	ipLimiter    middleware.IPLimiter
	userLimiter  middleware.IPLimiter
	errorHandler *apperrors.ErrorHandler
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		cfg:          cfg,
		ipLimiter:    auth.NewIPRateLimiter(300),
		userLimiter:  auth.NewUserRateLimiter(60),
		errorHandler: apperrors.NewErrorHandler(logger, cfg.Environment == "development"),
		logger:       logger,
	}
}

// WithRateLimiters swaps the default in-process limiters for shared
// ones, used when requests fan out across multiple instances.
func (rt *Router) WithRateLimiters(ip, user middleware.IPLimiter) *Router {
	rt.ipLimiter = ip
	rt.userLimiter = user
	return rt
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.gharbhejo.in"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		// Lookup endpoints serve the public mobile clients; rate
		// limited by IP, no authentication
		r.Route("/lookups", func(r chi.Router) {
			r.Use(middleware.RateLimit(rt.ipLimiter, rt.logger))

			lookupHandler := handlers.NewLookupHandler(rt.queryBus, rt.logger)
			r.Get("/property-types", lookupHandler.GetPropertyTypes)
			r.Get("/amenities", lookupHandler.GetAmenities)
			r.Get("/states", lookupHandler.GetStates)
			r.Get("/states/{state}/cities", lookupHandler.GetCitiesByState)
			r.Get("/facing-directions", lookupHandler.GetFacingDirections)
		})

		// Admin endpoints need a valid token with the admin role
		r.Route("/admin", func(r chi.Router) {
			validator := rt.jwtValidator()
			r.Use(middleware.Authenticate(validator, rt.userLimiter, rt.logger))
			r.Use(middleware.RequireRole("admin"))

			adminHandler := handlers.NewAdminHandler(rt.commandBus, rt.logger)
			r.Post("/cache/clear", adminHandler.ClearCache)
			r.Post("/cache/warm", adminHandler.WarmCache)
		})
	})

	return router
}

func (rt *Router) jwtValidator() *auth.JWTValidator {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     rt.cfg.JWTSecret,
		Issuer:        rt.cfg.JWTIssuer,
		Audience:      []string{"refdata-api"},
	})
	if err != nil {
		rt.logger.Error("JWT validator unavailable, admin routes will reject all requests", zap.Error(err))
		return nil
	}
	return validator
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
