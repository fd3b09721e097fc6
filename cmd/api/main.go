package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/diagnosis/wedding-rsvp/internal/http/handlers"
	"github.com/diagnosis/wedding-rsvp/internal/http/middleware"
	"github.com/diagnosis/wedding-rsvp/internal/repository"
	"github.com/diagnosis/wedding-rsvp/internal/service"
	"github.com/diagnosis/wedding-rsvp/pkg/auth"
	"github.com/diagnosis/wedding-rsvp/pkg/config"
	"github.com/diagnosis/wedding-rsvp/pkg/database"
	"github.com/diagnosis/wedding-rsvp/pkg/logger"
	mw "github.com/diagnosis/wedding-rsvp/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to read .env file", "error", err)
	}

	cfg := config.Load()
	logger.Configure(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		logger.Error("RSVP service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("RSVP service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Connect to the record store
	repo, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	// Initialize services
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AdminTokenTTL)
	rsvpService := service.NewRSVPService(repo)
	authService := service.NewAuthService(cfg.Auth.AdminPassword, cfg.Auth.AdminPasswordHash, tokens)

	opts := handlers.Options{Message: cfg.Server.Message}
	if cfg.RateLimitEnabled() {
		rdb, err := database.ConnectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		limiter := middleware.NewRateLimiter(middleware.NewRedisCounter(rdb), middleware.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		})
		opts.SubmitLimiter = limiter.Middleware()
		logger.Info("Submission rate limit enabled", "requests", cfg.RateLimit.Requests, "window", cfg.RateLimit.Window)
	}

	h := handlers.New(rsvpService, authService, tokens, opts)

	// Setup router
	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("rsvp"))
	r.Use(mw.Logging)
	r.Use(mw.Recoverer)
	r.Use(mw.CORS(cfg.CORS.AllowedOrigins))
	r.Use(mw.Health(repo))

	r.Mount(cfg.Server.Prefix, h.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting RSVP service", "port", cfg.Server.Port, "prefix", cfg.Server.Prefix, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down RSVP service...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openStore connects the configured backend and prepares its indexes or schema.
// The returned close func releases the connection.
func openStore(ctx context.Context, cfg config.StoreConfig) (repository.RSVPRepository, func(), error) {
	switch cfg.Driver {
	case config.StorePostgres:
		pool, err := database.ConnectPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("Connected to postgres")
		return repository.NewPostgresRSVPRepository(pool, cfg.Timeout), pool.Close, nil

	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("Failed to disconnect mongo", "error", err)
			}
		}
		db := client.Database(cfg.Name)
		if err := repository.EnsureMongoIndexes(ctx, db, cfg.Collection); err != nil {
			closeFn()
			return nil, nil, err
		}
		logger.Info("Connected to mongo", "database", cfg.Name, "collection", cfg.Collection)
		return repository.NewMongoRSVPRepository(db, cfg.Collection, cfg.Timeout), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
