package dto

import (
	"github.com/shopspring/decimal"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,max=255"`
	Role     string `json:"role" validate:"required"`
}

type UpdateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName string  `json:"full_name" validate:"required,max=255"`
	Role     string  `json:"role" validate:"required"`
	IsActive *bool   `json:"is_active"`
}

type ValidateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// ProductRequest is the body of product create and update.
type ProductRequest struct {
	ProductCode  string          `json:"product_code" validate:"required,max=50"`
	ProductName  string          `json:"product_name" validate:"required,max=200"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit" validate:"required,max=20"`
	Price        decimal.Decimal `json:"price" validate:"gt=0,lt=100000000"`
	MinimumStock *int64          `json:"minimum_stock" validate:"omitempty,gte=0"`
	IsActive     *bool           `json:"is_active"`
}

// StockMovementRequest creates one IN or OUT transaction with its lines.
type StockMovementRequest struct {
	TransactionID   string              `json:"transaction_id"`
	TransactionType string              `json:"transaction_type"`
	TransactionDate string              `json:"transaction_date"`
	ReferenceNumber string              `json:"reference_number"`
	Remarks         string              `json:"remarks"`
	CreatedBy       string              `json:"created_by"`
	Items           []StockMovementItem `json:"items"`
}

type StockMovementItem struct {
	ProductID   string `json:"product_id"`
	Quantity    Scalar `json:"quantity"`
	UnitPrice   Scalar `json:"unit_price"`
	BatchNumber string `json:"batch_number"`
	ExpiryDate  string `json:"expiry_date"`
	Remarks     string `json:"remarks"`
}
