package report

import (
	"bytes"
	"testing"
	"time"

	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteInventoryPDF(t *testing.T) {
	last := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rep := dto.InventoryReport{
		GeneratedAt: time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC),
		Items: []dto.InventoryReportRow{
			{ProductCode: "CAB001", ProductName: "HDMI Cable", Unit: "pcs", CurrentStock: 0, MinimumStock: 10, Status: model.StatusOutOfStock},
			{ProductCode: "LAP001", ProductName: "Laptop with a remarkably long marketing name that needs truncating", Unit: "pcs", CurrentStock: 12, MinimumStock: 5, Status: model.StatusInStock, LastMovementDate: &last},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteInventoryPDF(&buf, rep))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestWriteInventoryPDF_Empty(t *testing.T) {
	asOf := time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, WriteInventoryPDF(&buf, dto.InventoryReport{GeneratedAt: time.Now(), AsOf: &asOf}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
