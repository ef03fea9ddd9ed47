package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/esypg/pg-marketplace/docs"
	"github.com/esypg/pg-marketplace/internal/api"
	"github.com/esypg/pg-marketplace/internal/api/handler"
	"github.com/esypg/pg-marketplace/internal/core/ports"
	mongostore "github.com/esypg/pg-marketplace/internal/infrastructure/db/mongo"
	redisstore "github.com/esypg/pg-marketplace/internal/infrastructure/db/redis"
	s3store "github.com/esypg/pg-marketplace/internal/infrastructure/storage/s3"
	"github.com/esypg/pg-marketplace/internal/pkg/config"
	"github.com/esypg/pg-marketplace/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

//	@title			PG Marketplace API
//	@version		1.0
//	@description	Listings, bookings and accounts for paying-guest accommodation.
//	@BasePath		/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server exited gracefully")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	accounts := mongostore.NewAccountRepository(db)
	listings := mongostore.NewListingRepository(db)
	bookings := mongostore.NewBookingRepository(db)
	if err := mongostore.EnsureIndexes(ctx, accounts, listings, bookings); err != nil {
		return err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	images, err := newImageStore(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	log.Info().Str("backend", images.Backend()).Msg("image storage ready")

	e := api.NewRouter(api.Options{
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.Auth.TokenTTL,
		BcryptCost:    cfg.Auth.BcryptCost,
		MaxImageBytes: cfg.Storage.MaxImageBytes,
	}, api.Dependencies{
		Accounts:     accounts,
		Listings:     listings,
		Bookings:     bookings,
		Images:       images,
		Idempotency:  redisstore.NewIdempotencyStore(rdb, cfg.Auth.IdempotencyTTL),
		LoginLimiter: redisstore.NewRateLimiter(rdb, cfg.Auth.LoginRateLimit, time.Minute),
		Checks: map[string]handler.DependencyCheck{
			"mongodb": mongostore.Ping(mongoClient),
			"redis":   redisstore.Ping(rdb),
		},
	}, log)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newImageStore(ctx context.Context, cfg *config.Config, db *mongo.Database, log zerolog.Logger) (ports.ImageStore, error) {
	if cfg.Storage.Backend != config.StorageS3 {
		store, err := mongostore.NewGridFSImageStore(db)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := s3store.NewImageStore(ctx, s3store.Config{
		Endpoint:     cfg.Storage.S3Endpoint,
		Region:       cfg.Storage.S3Region,
		Bucket:       cfg.Storage.S3Bucket,
		AccessKey:    cfg.Storage.S3AccessKey,
		SecretKey:    cfg.Storage.S3SecretKey,
		UsePathStyle: cfg.Storage.S3UsePathStyle,
	}, log)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
