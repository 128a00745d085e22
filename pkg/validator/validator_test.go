package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priced struct {
	Code  string          `json:"product_code" validate:"required,max=5"`
	Price decimal.Decimal `json:"price" validate:"gt=0"`
}

func TestValidateStruct_Decimal(t *testing.T) {
	errs := ValidateStruct(&priced{Code: "A", Price: decimal.RequireFromString("0.01")})
	assert.Empty(t, errs)

	errs = ValidateStruct(&priced{Code: "A", Price: decimal.Zero})
	require.Len(t, errs, 1)
	assert.Equal(t, "price", errs[0].FailedField)
	assert.Equal(t, "gt", errs[0].Tag)
}

func TestValidateStruct_ReportsJSONNames(t *testing.T) {
	errs := ValidateStruct(&priced{Code: "TOOLONG", Price: decimal.NewFromInt(1)})
	require.Len(t, errs, 1)
	assert.Equal(t, "product_code", errs[0].FailedField)
	assert.Equal(t, "max", errs[0].Tag)
	assert.Equal(t, "5", errs[0].Value)
}
