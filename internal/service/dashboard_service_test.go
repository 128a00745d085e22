package service

import (
	"testing"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) dashboard(t *testing.T) *dashboardService {
	t.Helper()
	reports := NewReportService(repository.NewReportRepo(testutil.NewSQLX(t, f.db)))
	svc := NewDashboardService(reports, f.txns).(*dashboardService)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboardService_Stats(t *testing.T) {
	f := newFixture(t)
	svc := f.dashboard(t)

	in := testutil.CreateProduct(t, f.db, "IN", "1.00")
	low := testutil.CreateProduct(t, f.db, "LOW", "1.00")
	testutil.CreateProduct(t, f.db, "OUT", "1.00")
	require.NoError(t, f.products.Update(ctx, withMinimum(low, 5)))
	for i := 0; i < 12; i++ {
		testutil.RecordMovement(t, f.db, model.TxIn, time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC),
			testutil.Line{Product: in, Qty: 1})
	}
	testutil.RecordMovement(t, f.db, model.TxIn, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		testutil.Line{Product: low, Qty: 5})

	d, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalProducts)
	assert.Equal(t, 1, d.LowStockCount)
	assert.Equal(t, 1, d.OutOfStockCount)
	assert.Equal(t, "LOW", d.LowStockProducts[0].ProductCode)
	assert.Equal(t, "OUT", d.OutOfStockProducts[0].ProductCode)
	require.Len(t, d.RecentTransactions, 10)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), d.RecentTransactions[0].TransactionDate.UTC())
}

func TestDashboardService_StatsEmpty(t *testing.T) {
	f := newFixture(t)

	d, err := f.dashboard(t).GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, d.TotalProducts)
	assert.NotNil(t, d.LowStockProducts)
	assert.NotNil(t, d.OutOfStockProducts)
	assert.Empty(t, d.RecentTransactions)
}

func TestDashboardService_StockMovement(t *testing.T) {
	f := newFixture(t)
	svc := f.dashboard(t)
	p := testutil.CreateProduct(t, f.db, "P", "1.00")

	testutil.RecordMovement(t, f.db, model.TxIn, time.Date(2025, 5, 30, 8, 0, 0, 0, time.UTC),
		testutil.Line{Product: p, Qty: 3})
	testutil.RecordMovement(t, f.db, model.TxIn, time.Date(2025, 5, 30, 15, 0, 0, 0, time.UTC),
		testutil.Line{Product: p, Qty: 2})
	testutil.RecordMovement(t, f.db, model.TxOut, time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		testutil.Line{Product: p, Qty: 1})
	testutil.RecordMovement(t, f.db, model.TxAdj, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		testutil.Line{Product: p, Qty: 4})
	// outside the window
	testutil.RecordMovement(t, f.db, model.TxIn, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		testutil.Line{Product: p, Qty: 50})

	data, err := svc.GetStockMovement(ctx, 3)
	require.NoError(t, err)
	require.Len(t, data, 3)

	assert.Equal(t, "2025-05-30", data[0].Date)
	assert.Equal(t, int64(5), data[0].Inbound)
	assert.Zero(t, data[0].Outbound)

	assert.Equal(t, "2025-05-31", data[1].Date)
	assert.Zero(t, data[1].Inbound)
	assert.Zero(t, data[1].Outbound)

	assert.Equal(t, "2025-06-01", data[2].Date)
	assert.Zero(t, data[2].Inbound)
	assert.Equal(t, int64(1), data[2].Outbound)
}

func TestDashboardService_StockMovementWindow(t *testing.T) {
	f := newFixture(t)
	svc := f.dashboard(t)

	data, err := svc.GetStockMovement(ctx, 0)
	require.NoError(t, err)
	require.Len(t, data, 7)
	assert.Equal(t, "2025-05-26", data[0].Date)
	assert.Equal(t, "2025-06-01", data[6].Date)

	data, err = svc.GetStockMovement(ctx, 5000)
	require.NoError(t, err)
	assert.Len(t, data, maxMovementDays)
}
