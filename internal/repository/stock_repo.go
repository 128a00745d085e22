package repository

import (
	"context"
	"time"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockRepository derives stock levels from the persisted lines. Nothing is
// cached: every call re-aggregates the ledger.
type StockRepository interface {
	WithTx(tx *gorm.DB) StockRepository
	CurrentStock(ctx context.Context, productID uuid.UUID) (int64, error)
	CurrentStockBulk(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	StockAsOf(ctx context.Context, productID uuid.UUID, at time.Time) (int64, error)
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) WithTx(tx *gorm.DB) StockRepository {
	return &stockRepo{tx}
}

type stockSum struct {
	ProductID uuid.UUID
	TxType    model.TransactionType
	Qty       int64
}

// sums groups line quantities by product and header type. ADJ headers are
// excluded from stock.
func (r *stockRepo) sums(ctx context.Context, productIDs []uuid.UUID, at *time.Time) (map[uuid.UUID]int64, error) {
	var rows []stockSum
	q := r.db.WithContext(ctx).
		Table("stock_transaction_lines AS l").
		Select("l.product_id AS product_id, t.transaction_type AS tx_type, COALESCE(SUM(l.quantity), 0) AS qty").
		Joins("JOIN stock_transactions t ON t.id = l.transaction_ref").
		Where("t.transaction_type IN ?", []model.TransactionType{model.TxIn, model.TxOut}).
		Where("l.product_id IN ?", productIDs).
		Group("l.product_id, t.transaction_type")
	if at != nil {
		q = q.Where("t.transaction_date <= ?", at.UTC())
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, wrap("stock aggregate", err)
	}

	out := make(map[uuid.UUID]int64, len(productIDs))
	for _, id := range productIDs {
		out[id] = 0
	}
	for _, row := range rows {
		switch row.TxType {
		case model.TxIn:
			out[row.ProductID] += row.Qty
		case model.TxOut:
			out[row.ProductID] -= row.Qty
		}
	}
	return out, nil
}

func (r *stockRepo) CurrentStock(ctx context.Context, productID uuid.UUID) (int64, error) {
	m, err := r.sums(ctx, []uuid.UUID{productID}, nil)
	if err != nil {
		return 0, err
	}
	return m[productID], nil
}

func (r *stockRepo) CurrentStockBulk(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID]int64{}, nil
	}
	return r.sums(ctx, productIDs, nil)
}

// StockAsOf counts only headers dated at or before at.
func (r *stockRepo) StockAsOf(ctx context.Context, productID uuid.UUID, at time.Time) (int64, error) {
	m, err := r.sums(ctx, []uuid.UUID{productID}, &at)
	if err != nil {
		return 0, err
	}
	return m[productID], nil
}
