// Command seed loads the sample catalogue used in demos and manual testing.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go-stock-ledger/internal/config"
	"go-stock-ledger/internal/logger"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/database"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var samples = []model.Product{
	{Code: "LAP001", Name: "Laptop 14 inch", Description: "Business laptop", Unit: "pcs", Price: decimal.RequireFromString("850.00"), MinimumStock: 5},
	{Code: "MOU001", Name: "Wireless Mouse", Description: "2.4 GHz optical mouse", Unit: "pcs", Price: decimal.RequireFromString("12.50"), MinimumStock: 20},
	{Code: "KEL001", Name: "Mechanical Keyboard", Description: "US layout", Unit: "pcs", Price: decimal.RequireFromString("45.00"), MinimumStock: 10},
	{Code: "CAB001", Name: "HDMI Cable 2m", Description: "HDMI 2.0", Unit: "pcs", Price: decimal.RequireFromString("4.75"), MinimumStock: 30},
}

func main() {
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
	if err := repository.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	ctx := context.Background()
	products := repository.NewProductRepo(db)
	stock := repository.NewStockRepo(db)

	for i := range samples {
		p := samples[i]
		p.IsActive = true
		existing, err := products.FindByCode(ctx, p.Code)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			if err := products.Create(ctx, &p); err != nil {
				log.Fatal().Err(err).Str("code", p.Code).Msg("seed product failed")
			}
			log.Info().Str("code", p.Code).Msg("product created")
		case err != nil:
			log.Fatal().Err(err).Str("code", p.Code).Msg("lookup failed")
		default:
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			if err := products.Update(ctx, &p); err != nil {
				log.Fatal().Err(err).Str("code", p.Code).Msg("seed product failed")
			}
			log.Info().Str("code", p.Code).Msg("product updated")
		}

		qty, err := stock.CurrentStock(ctx, p.ID)
		if err != nil {
			log.Fatal().Err(err).Str("code", p.Code).Msg("stock lookup failed")
		}
		fmt.Printf("%-8s %-22s stock=%-5d status=%s\n", p.Code, p.Name, qty, model.ClassifyStock(qty, p.MinimumStock))
	}
}
