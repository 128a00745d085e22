package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxIn  TransactionType = "IN"
	TxOut TransactionType = "OUT"
	TxAdj TransactionType = "ADJ"
)

func (t TransactionType) Valid() bool {
	return t == TxIn || t == TxOut || t == TxAdj
}

// Transaction is a stock movement header. Its lines are the ledger.
type Transaction struct {
	BaseModel
	TransactionID   string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"transaction_id"`
	TransactionDate time.Time         `gorm:"index;not null" json:"transaction_date"`
	Type            TransactionType   `gorm:"column:transaction_type;type:varchar(3);not null" json:"transaction_type"`
	ReferenceNumber string            `gorm:"type:varchar(100)" json:"reference_number"`
	Remarks         string            `gorm:"type:text" json:"remarks"`
	CreatedBy       string            `gorm:"type:varchar(100);not null" json:"created_by"`
	Lines           []TransactionLine `gorm:"foreignKey:TransactionRef;constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

func (Transaction) TableName() string { return "stock_transactions" }

func (t *Transaction) TotalItems() int {
	return len(t.Lines)
}

func (t *Transaction) TotalQuantity() int64 {
	var total int64
	for _, l := range t.Lines {
		total += l.Quantity
	}
	return total
}

// TransactionLine is one product row of a movement. A product appears at
// most once per transaction.
type TransactionLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionRef uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_line_txn_product" json:"-"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_line_txn_product;index" json:"product_id"`
	Product        *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity       int64           `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	BatchNumber    string          `gorm:"type:varchar(50)" json:"batch_number"`
	ExpiryDate     *time.Time      `gorm:"type:date" json:"expiry_date"`
	Remarks        string          `gorm:"type:text" json:"remarks"`
	Position       int             `gorm:"not null;default:0" json:"-"` // order within the request
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
}

func (TransactionLine) TableName() string { return "stock_transaction_lines" }

func (l *TransactionLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TotalValue is quantity times the unit price at the time of the movement.
func (l *TransactionLine) TotalValue() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}
