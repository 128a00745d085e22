package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type StockStatus string

const (
	StatusOutOfStock StockStatus = "Out of Stock"
	StatusLowStock   StockStatus = "Low Stock"
	StatusInStock    StockStatus = "In Stock"
)

// ClassifyStock maps a stock level against the product minimum.
// Stock equal to the minimum is already low.
func ClassifyStock(stock, minimum int64) StockStatus {
	switch {
	case stock <= 0:
		return StatusOutOfStock
	case stock <= minimum:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

type Product struct {
	BaseModel
	Code         string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"product_code"`
	Name         string          `gorm:"type:varchar(200);not null" json:"product_name"`
	Description  string          `gorm:"type:text" json:"description"`
	Unit         string          `gorm:"type:varchar(20);not null" json:"unit"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	MinimumStock int64           `gorm:"not null;default:0" json:"minimum_stock"`
	IsActive     bool            `gorm:"not null" json:"is_active"`
}

// NormalizeCode trims and upper-cases a product code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ProductWithStock is a product enriched with its derived stock figures.
type ProductWithStock struct {
	Product
	CurrentStock int64       `json:"current_stock"`
	StockStatus  StockStatus `json:"stock_status"`
}

func NewProductWithStock(p Product, stock int64) ProductWithStock {
	return ProductWithStock{
		Product:      p,
		CurrentStock: stock,
		StockStatus:  ClassifyStock(stock, p.MinimumStock),
	}
}
