package dto

import (
	"time"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StockMovementResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id"`
}

type TransactionSummary struct {
	ID              uuid.UUID             `json:"id"`
	TransactionID   string                `json:"transaction_id"`
	TransactionDate time.Time             `json:"transaction_date"`
	TransactionType model.TransactionType `json:"transaction_type"`
	ReferenceNumber string                `json:"reference_number"`
	Remarks         string                `json:"remarks"`
	CreatedBy       string                `json:"created_by"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	TotalItems      int                   `json:"total_items"`
	TotalQuantity   int64                 `json:"total_quantity"`
}

type TransactionLineDetail struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalValue  decimal.Decimal `json:"total_value"`
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
	Remarks     string          `json:"remarks"`
	CreatedAt   time.Time       `json:"created_at"`
}

type TransactionDetail struct {
	TransactionSummary
	Details []TransactionLineDetail `json:"details"`
}

func NewTransactionSummary(t *model.Transaction) TransactionSummary {
	return TransactionSummary{
		ID:              t.ID,
		TransactionID:   t.TransactionID,
		TransactionDate: t.TransactionDate,
		TransactionType: t.Type,
		ReferenceNumber: t.ReferenceNumber,
		Remarks:         t.Remarks,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		TotalItems:      t.TotalItems(),
		TotalQuantity:   t.TotalQuantity(),
	}
}

func NewTransactionDetail(t *model.Transaction) TransactionDetail {
	d := TransactionDetail{
		TransactionSummary: NewTransactionSummary(t),
		Details:            make([]TransactionLineDetail, 0, len(t.Lines)),
	}
	for i := range t.Lines {
		l := &t.Lines[i]
		line := TransactionLineDetail{
			ID:          l.ID,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalValue:  l.TotalValue(),
			BatchNumber: l.BatchNumber,
			ExpiryDate:  l.ExpiryDate,
			Remarks:     l.Remarks,
			CreatedAt:   l.CreatedAt,
		}
		if l.Product != nil {
			line.ProductCode = l.Product.Code
			line.ProductName = l.Product.Name
		}
		d.Details = append(d.Details, line)
	}
	return d
}

// InventoryReportRow is one line of the stock snapshot.
type InventoryReportRow struct {
	ProductID        uuid.UUID         `json:"product_id"`
	ProductCode      string            `json:"product_code"`
	ProductName      string            `json:"product_name"`
	Unit             string            `json:"unit"`
	CurrentStock     int64             `json:"current_stock"`
	MinimumStock     int64             `json:"minimum_stock"`
	Status           model.StockStatus `json:"status"`
	LastMovementDate *time.Time        `json:"last_movement_date"`
}

type InventoryReport struct {
	GeneratedAt time.Time            `json:"generated_at"`
	AsOf        *time.Time           `json:"as_of,omitempty"`
	Items       []InventoryReportRow `json:"items"`
}

type Dashboard struct {
	TotalProducts      int                  `json:"total_products"`
	LowStockCount      int                  `json:"low_stock_count"`
	OutOfStockCount    int                  `json:"out_of_stock_count"`
	LowStockProducts   []InventoryReportRow `json:"low_stock_products"`
	OutOfStockProducts []InventoryReportRow `json:"out_of_stock_products"`
	RecentTransactions []TransactionSummary `json:"recent_transactions"`
}

// StockLevel answers "how many of this product, at what time".
type StockLevel struct {
	ProductID    uuid.UUID         `json:"product_id"`
	ProductCode  string            `json:"product_code"`
	CurrentStock int64             `json:"current_stock"`
	MinimumStock int64             `json:"minimum_stock"`
	Status       model.StockStatus `json:"status"`
	AsOf         *time.Time        `json:"as_of,omitempty"`
}

// StockMovementData is one day of the inbound/outbound chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int64  `json:"inbound"`
	Outbound int64  `json:"outbound"`
}
