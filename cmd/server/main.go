package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/publishare/backend/internal/auth"
	"github.com/anonto42/publishare/backend/internal/metrics"
	"github.com/anonto42/publishare/backend/internal/repositories"
	"github.com/anonto42/publishare/backend/internal/router"
	"github.com/anonto42/publishare/backend/internal/services"
	"github.com/anonto42/publishare/backend/pkg/config"
	"github.com/anonto42/publishare/backend/pkg/firebase"
	"github.com/anonto42/publishare/backend/pkg/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	cfg.WarnInsecureDefaults(zl)

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	users, cards, err := openRepositories(ctx, cfg, db)
	if err != nil {
		return err
	}

	// Firebase login is optional
	var verifier services.IdentityVerifier
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return err
		}
		verifier = app
	} else {
		zl.Info("firebase login disabled, FIREBASE_CREDENTIALS_PATH not set")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	svc := router.Services{
		Auth: services.NewAuthService(users, tokens, verifier, services.AuthConfig{
			MaxFailedLogins: cfg.AuthMaxFailedLogins,
			LockDuration:    cfg.AuthLockDuration,
			DefaultImage:    cfg.DefaultProfileImage,
		}),
		Users:  services.NewUserService(users, cfg.DefaultProfileImage),
		Cards:  services.NewCardService(cards, users),
		Search: services.NewSearchService(users, cards),
	}

	e := router.New(cfg, zl, svc)

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openRepositories builds the repositories for the configured store and prepares its schema.
func openRepositories(ctx context.Context, cfg *config.Config, db *config.DB) (repositories.UserRepository, repositories.CardRepository, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		if err := repositories.EnsureMongoIndexes(ctx, db.MongoDB); err != nil {
			return nil, nil, err
		}
		return repositories.NewMongoUserRepository(db.MongoDB), repositories.NewMongoCardRepository(db.MongoDB), nil
	case config.DriverPostgres:
		if err := repositories.MigratePostgres(db.Postgres); err != nil {
			return nil, nil, err
		}
		return repositories.NewPostgresUserRepository(db.Postgres), repositories.NewPostgresCardRepository(db.Postgres), nil
	default:
		users := repositories.NewMemoryUserRepository()
		return users, repositories.NewMemoryCardRepository(users), nil
	}
}
