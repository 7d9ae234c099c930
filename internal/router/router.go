package router

import (
	"github.com/anonto42/publishare/backend/internal/handlers"
	"github.com/anonto42/publishare/backend/internal/metrics"
	"github.com/anonto42/publishare/backend/internal/middleware"
	"github.com/anonto42/publishare/backend/internal/services"
	"github.com/anonto42/publishare/backend/pkg/config"
	"github.com/anonto42/publishare/backend/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Services are the application services the routes call into.
type Services struct {
	Auth   *services.AuthService
	Users  *services.UserService
	Cards  *services.CardService
	Search *services.SearchService
}

// New builds a fully configured Echo instance.
func New(cfg *config.Config, log *zap.Logger, svc Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(log)
	e.Validator = validators.NewValidator()

	SetupMiddleware(e, cfg, log)
	SetupRoutes(e, svc)
	return e
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config, log *zap.Logger) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.HTTPMetrics())
	e.Use(middleware.RateLimit(rateLimitStore(cfg)))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	log.Info("global middleware configured",
		zap.String("rate_limit_strategy", cfg.RateLimitStrategy),
		zap.Int("rate_limit_requests", cfg.RateLimitRequests),
		zap.Duration("rate_limit_window", cfg.RateLimitWindow),
	)
}

func rateLimitStore(cfg *config.Config) echomw.RateLimiterStore {
	if cfg.RateLimitStrategy == config.RateLimitToken {
		return middleware.NewTokenBucketStore(cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	return middleware.NewFixedWindowStore(cfg.RateLimitRequests, cfg.RateLimitWindow)
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	})
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, svc Services) {
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// Groups carry no middleware so unknown paths under them stay a plain 404.
	// Everything except the auth routes needs a bearer token.
	jwtAuth := middleware.JWTAuthMiddleware(svc.Auth)

	users := e.Group("/users")
	handlers.NewAuthHandler(svc.Auth).RegisterAuthRoutes(users)
	handlers.NewUserHandler(svc.Users).RegisterUserRoutes(users, jwtAuth)

	cards := e.Group("/cards")
	handlers.NewCardHandler(svc.Cards).RegisterCardRoutes(cards, jwtAuth)
	handlers.NewLikeHandler(svc.Cards).RegisterLikeRoutes(cards, jwtAuth)
	handlers.NewCommentHandler(svc.Cards).RegisterCommentRoutes(cards, jwtAuth)

	handlers.NewSearchHandler(svc.Search).RegisterSearchRoutes(e.Group("/search"), jwtAuth)
}
