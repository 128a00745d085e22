package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-stock-ledger/internal/apierror"
	"go-stock-ledger/internal/config"
	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var ctx = context.Background()

var clerk = Actor{UserID: "u-1", Name: "Clerk", Email: "clerk@example.com"}

type fakePublisher struct {
	mu     sync.Mutex
	events []StockEvent
}

func (f *fakePublisher) Publish(event interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev, ok := event.(StockEvent); ok {
		f.events = append(f.events, ev)
	}
}

func (f *fakePublisher) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Action
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	products  repository.ProductRepository
	stockRepo repository.StockRepository
	txns      repository.TransactionRepository
	stock     StockService
	events    *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:        db,
		products:  repository.NewProductRepo(db),
		stockRepo: repository.NewStockRepo(db),
		txns:      repository.NewTransactionRepo(db),
		events:    &fakePublisher{},
	}
	f.stock = NewStockService(f.stockRepo)
	return f
}

func (f *fixture) movements(guard StockGuard) *movementService {
	svc := NewMovementService(f.db, f.products, f.stockRepo, f.txns, guard, f.events).(*movementService)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func (f *fixture) rowMovements() *movementService {
	return f.movements(NewStockGuard(config.GuardRow, nil, time.Second))
}

func item(productID, qty, price string) dto.StockMovementItem {
	return dto.StockMovementItem{
		ProductID: productID,
		Quantity:  dto.NewScalar(qty),
		UnitPrice: dto.NewScalar(price),
	}
}

func request(id, txType string, items ...dto.StockMovementItem) *dto.StockMovementRequest {
	return &dto.StockMovementRequest{
		TransactionID:   id,
		TransactionType: txType,
		Items:           items,
	}
}

func requireValidation(t *testing.T, err error, kind apierror.Kind) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	require.Equal(t, kind, verr.Kind, verr.Error())
	return verr
}
