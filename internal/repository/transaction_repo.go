package repository

import (
	"context"
	"time"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionFilter struct {
	Type     *model.TransactionType
	DateFrom *time.Time // inclusive
	DateTo   *time.Time // exclusive
	Limit    int
}

// ProductMovement is one ledger line of a product with its header fields.
type ProductMovement struct {
	LineID          uuid.UUID             `json:"id"`
	TransactionRef  uuid.UUID             `json:"transaction_ref"`
	TransactionID   string                `json:"transaction_id"`
	TransactionDate time.Time             `json:"transaction_date"`
	TransactionType model.TransactionType `json:"transaction_type"`
	ProductID       uuid.UUID             `json:"product_id"`
	ProductCode     string                `json:"product_code"`
	ProductName     string                `json:"product_name"`
	Quantity        int64                 `json:"quantity"`
	UnitPrice       decimal.Decimal       `json:"unit_price"`
	BatchNumber     string                `json:"batch_number"`
	ExpiryDate      *time.Time            `json:"expiry_date"`
	Remarks         string                `json:"remarks"`
	CreatedAt       time.Time             `json:"created_at"`
}

type TransactionRepository interface {
	WithTx(tx *gorm.DB) TransactionRepository
	Create(ctx context.Context, txn *model.Transaction) error
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)
	FindAll(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindMovementsByProduct(ctx context.Context, productID uuid.UUID) ([]ProductMovement, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) WithTx(tx *gorm.DB) TransactionRepository {
	return &transactionRepo{tx}
}

// Create inserts the header and its lines. Callers wrap it in a transaction
// so a failing line rolls the header back.
func (r *transactionRepo) Create(ctx context.Context, txn *model.Transaction) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(txn).Error; err != nil {
		return wrap("transaction create", err)
	}
	if len(txn.Lines) == 0 {
		return nil
	}
	for i := range txn.Lines {
		txn.Lines[i].TransactionRef = txn.ID
		txn.Lines[i].Position = i
	}
	return wrap("transaction create lines", db.Create(&txn.Lines).Error)
}

func (r *transactionRepo) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error
	return count > 0, wrap("transaction exists", err)
}

func (r *transactionRepo) FindAll(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("transaction_date DESC").
		Order("created_at DESC")
	if filter.Type != nil {
		q = q.Where("transaction_type = ?", *filter.Type)
	}
	if filter.DateFrom != nil {
		q = q.Where("transaction_date >= ?", filter.DateFrom.UTC())
	}
	if filter.DateTo != nil {
		q = q.Where("transaction_date < ?", filter.DateTo.UTC())
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	err := q.Find(&transactions).Error
	return transactions, wrap("transaction list", err)
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Lines.Product").
		First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, wrap("transaction find", err)
	}
	return &transaction, nil
}

// Delete removes the lines and then the header in one database transaction.
func (r *transactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_ref = ?", id).Delete(&model.TransactionLine{}).Error; err != nil {
			return wrap("transaction delete lines", err)
		}
		res := tx.Where("id = ?", id).Delete(&model.Transaction{})
		if res.Error != nil {
			return wrap("transaction delete", res.Error)
		}
		if res.RowsAffected == 0 {
			return wrap("transaction delete", ErrNotFound)
		}
		return nil
	})
}

// FindMovementsByProduct lists every line of a product, newest header first.
func (r *transactionRepo) FindMovementsByProduct(ctx context.Context, productID uuid.UUID) ([]ProductMovement, error) {
	var rows []ProductMovement
	err := r.db.WithContext(ctx).
		Table("stock_transaction_lines AS l").
		Select(`l.id AS line_id, l.transaction_ref AS transaction_ref, t.transaction_id AS transaction_id,
			t.transaction_date AS transaction_date, t.transaction_type AS transaction_type,
			l.product_id AS product_id, p.code AS product_code, p.name AS product_name,
			l.quantity AS quantity, l.unit_price AS unit_price, l.batch_number AS batch_number,
			l.expiry_date AS expiry_date, l.remarks AS remarks, l.created_at AS created_at`).
		Joins("JOIN stock_transactions t ON t.id = l.transaction_ref").
		Joins("JOIN products p ON p.id = l.product_id").
		Where("l.product_id = ?", productID).
		Order("t.transaction_date DESC").
		Order("l.created_at DESC").
		Order("l.position ASC").
		Scan(&rows).Error
	return rows, wrap("product movements", err)
}
