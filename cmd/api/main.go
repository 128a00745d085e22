package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-stock-ledger/internal/config"
	"go-stock-ledger/internal/logger"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/router"
	"go-stock-ledger/internal/service"
	"go-stock-ledger/internal/ws"
	"go-stock-ledger/pkg/cache"
	"go-stock-ledger/pkg/database"
	"go-stock-ledger/pkg/jwt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db, err := database.ConnectDB(database.Options{
		DSN:          cfg.DSN(),
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		LogLevel:     cfg.DBLogLevel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// 3. Optional Redis
	var rdb *cache.RedisClient
	if cfg.RedisURL != "" {
		rdb, err = cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
	}

	// 4. First operator
	bootstrapAdmin(ctx, cfg, db)

	// 5. WebSocket Hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	app, err := router.New(cfg, db, rdb, hub)
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info().Str("addr", addr).Str("stock_guard", cfg.StockGuard).Msg("server listening")
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}

func bootstrapAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) {
	auth := service.NewAuthService(repository.NewUserRepo(db), jwt.NewManager(cfg.JWTSecret, cfg.JWTExpirationHours))
	created, err := auth.EnsureAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword, cfg.BootstrapAdminName)
	if err != nil {
		if cfg.BootstrapAdminEmail == "" {
			log.Warn().Err(err).Msg("no admin operator, nobody can log in")
			return
		}
		log.Fatal().Err(err).Msg("bootstrap admin failed")
	}
	if created {
		log.Info().Str("email", cfg.BootstrapAdminEmail).Msg("bootstrap admin created")
	}
}
