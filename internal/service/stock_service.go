package service

import (
	"context"
	"time"

	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"

	"github.com/google/uuid"
)

// StockService exposes the derived stock figures. Every call re-reads the
// ledger, so a committed movement is visible to the next read.
type StockService interface {
	CurrentStock(ctx context.Context, productID uuid.UUID) (int64, error)
	CurrentStockBulk(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	StockAsOf(ctx context.Context, productID uuid.UUID, at time.Time) (int64, error)
	StockStatus(ctx context.Context, product *model.Product) (model.StockStatus, error)
	Level(ctx context.Context, product *model.Product, at *time.Time) (*dto.StockLevel, error)
}

type stockService struct {
	stock repository.StockRepository
}

func NewStockService(stock repository.StockRepository) StockService {
	return &stockService{stock: stock}
}

func (s *stockService) CurrentStock(ctx context.Context, productID uuid.UUID) (int64, error) {
	return s.stock.CurrentStock(ctx, productID)
}

func (s *stockService) CurrentStockBulk(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return s.stock.CurrentStockBulk(ctx, productIDs)
}

func (s *stockService) StockAsOf(ctx context.Context, productID uuid.UUID, at time.Time) (int64, error) {
	return s.stock.StockAsOf(ctx, productID, at)
}

func (s *stockService) StockStatus(ctx context.Context, product *model.Product) (model.StockStatus, error) {
	stock, err := s.stock.CurrentStock(ctx, product.ID)
	if err != nil {
		return "", err
	}
	return model.ClassifyStock(stock, product.MinimumStock), nil
}

// Level reports stock now, or at a point in time when at is set.
func (s *stockService) Level(ctx context.Context, product *model.Product, at *time.Time) (*dto.StockLevel, error) {
	var (
		stock int64
		err   error
	)
	if at != nil {
		stock, err = s.stock.StockAsOf(ctx, product.ID, *at)
	} else {
		stock, err = s.stock.CurrentStock(ctx, product.ID)
	}
	if err != nil {
		return nil, err
	}
	return &dto.StockLevel{
		ProductID:    product.ID,
		ProductCode:  product.Code,
		CurrentStock: stock,
		MinimumStock: product.MinimumStock,
		Status:       model.ClassifyStock(stock, product.MinimumStock),
		AsOf:         at,
	}, nil
}
