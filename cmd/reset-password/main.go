package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go-stock-ledger/internal/config"
	"go-stock-ledger/internal/logger"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	email := flag.String("email", "", "operator email")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	if *email == "" || len(*password) < 6 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.ConnectDB(database.Options{DSN: cfg.DSN(), LogLevel: cfg.DBLogLevel})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	ctx := context.Background()
	users := repository.NewUserRepo(db)
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatal().Err(err).Str("email", *email).Msg("operator not found")
	}

	if err := user.SetPassword(*password); err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}
	if err := users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		log.Fatal().Err(err).Msg("failed to update password")
	}
	// the old session must not survive a reset
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		log.Fatal().Err(err).Msg("failed to revoke session")
	}

	log.Info().Str("email", user.Email).Msg("password reset")
}
