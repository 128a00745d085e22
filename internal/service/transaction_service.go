package service

import (
	"context"
	"errors"
	"fmt"

	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type TransactionService interface {
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]dto.TransactionSummary, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*dto.TransactionDetail, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID, actor Actor) error
}

type transactionService struct {
	txns   repository.TransactionRepository
	stock  StockService
	events EventPublisher
}

func NewTransactionService(txns repository.TransactionRepository, stock StockService, events EventPublisher) TransactionService {
	if events == nil {
		events = nopPublisher{}
	}
	return &transactionService{txns: txns, stock: stock, events: events}
}

func (s *transactionService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]dto.TransactionSummary, error) {
	txns, err := s.txns.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionSummary, len(txns))
	for i := range txns {
		out[i] = dto.NewTransactionSummary(&txns[i])
	}
	return out, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*dto.TransactionDetail, error) {
	txn, err := s.txns.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	detail := dto.NewTransactionDetail(txn)
	return &detail, nil
}

// DeleteTransaction removes a header together with its lines, which
// rewrites the stock of every product it touched.
func (s *transactionService) DeleteTransaction(ctx context.Context, id uuid.UUID, actor Actor) error {
	txn, err := s.txns.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}
	if err := s.txns.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}

	log.Info().Str("transaction_id", txn.TransactionID).Str("by", actor.Identifier()).Msg("stock movement deleted")
	ev := newStockEvent(ActionMovementDeleted, actor, fmt.Sprintf("%s deleted %s", actor.Name, txn.TransactionID))
	ev.TransactionID = txn.TransactionID
	ev.TransactionType = txn.Type
	ids := make([]uuid.UUID, len(txn.Lines))
	for i, l := range txn.Lines {
		ids[i] = l.ProductID
	}
	levels, err := s.stock.CurrentStockBulk(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Str("transaction_id", txn.TransactionID).Msg("skipping stock event")
		return nil
	}
	for _, l := range txn.Lines {
		es := EventStock{ProductID: l.ProductID, CurrentStock: levels[l.ProductID]}
		if l.Product != nil {
			es.ProductCode = l.Product.Code
			es.Status = model.ClassifyStock(es.CurrentStock, l.Product.MinimumStock)
		}
		ev.Products = append(ev.Products, es)
	}
	s.events.Publish(ev)
	return nil
}
