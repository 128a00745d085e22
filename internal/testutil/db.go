// Package testutil opens throwaway databases and seeds ledger fixtures for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database in a temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "ledger.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewSQLX shares the GORM pool with sqlx.
func NewSQLX(t *testing.T, db *gorm.DB) *sqlx.DB {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	return sqlx.NewDb(sqlDB, "sqlite3")
}

// CreateProduct inserts an active product with minimum stock 0.
func CreateProduct(t *testing.T, db *gorm.DB, code, price string) *model.Product {
	t.Helper()
	p := &model.Product{
		Code:     code,
		Name:     "Product " + code,
		Unit:     "pcs",
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Line is a shorthand for seeding a movement line.
type Line struct {
	Product *model.Product
	Qty     int64
	Price   string
}

// RecordMovement writes a header with lines directly, bypassing validation.
func RecordMovement(t *testing.T, db *gorm.DB, txType model.TransactionType, date time.Time, lines ...Line) *model.Transaction {
	t.Helper()
	txn := &model.Transaction{
		TransactionID:   "TXN-" + uuid.NewString()[:8],
		TransactionDate: date.UTC(),
		Type:            txType,
		CreatedBy:       "fixture",
	}
	for _, l := range lines {
		price := l.Price
		if price == "" {
			price = "1.00"
		}
		txn.Lines = append(txn.Lines, model.TransactionLine{
			ProductID: l.Product.ID,
			Quantity:  l.Qty,
			UnitPrice: decimal.RequireFromString(price),
		})
	}
	require.NoError(t, repository.NewTransactionRepo(db).Create(context.Background(), txn))
	return txn
}

// CreateUser inserts an active operator with the given role.
func CreateUser(t *testing.T, db *gorm.DB, email, password, role string) *model.User {
	t.Helper()
	u := &model.User{
		Email:    email,
		FullName: "Operator " + role,
		RoleCode: role,
		IsActive: true,
	}
	require.NoError(t, u.SetPassword(password))
	require.NoError(t, db.Create(u).Error)
	return u
}
