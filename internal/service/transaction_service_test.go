package service

import (
	"testing"
	"time"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionService_DetailTotals(t *testing.T) {
	f := newFixture(t)
	svc := NewTransactionService(f.txns, f.stock, f.events)
	a := testutil.CreateProduct(t, f.db, "A", "1.00")
	b := testutil.CreateProduct(t, f.db, "B", "1.00")
	txn := testutil.RecordMovement(t, f.db, model.TxIn, time.Now(),
		testutil.Line{Product: a, Qty: 3, Price: "2.50"},
		testutil.Line{Product: b, Qty: 4, Price: "1.25"})

	detail, err := svc.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.TotalItems)
	assert.Equal(t, int64(7), detail.TotalQuantity)
	require.Len(t, detail.Details, 2)

	values := map[string]string{}
	for _, d := range detail.Details {
		values[d.ProductCode] = d.TotalValue.StringFixed(2)
	}
	assert.Equal(t, map[string]string{"A": "7.50", "B": "5.00"}, values)

	_, err = svc.GetTransaction(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestTransactionService_ListFilters(t *testing.T) {
	f := newFixture(t)
	svc := NewTransactionService(f.txns, f.stock, f.events)
	p := testutil.CreateProduct(t, f.db, "P", "1.00")
	testutil.RecordMovement(t, f.db, model.TxIn, time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), testutil.Line{Product: p, Qty: 5})
	testutil.RecordMovement(t, f.db, model.TxOut, time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC), testutil.Line{Product: p, Qty: 1})
	testutil.RecordMovement(t, f.db, model.TxIn, time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC), testutil.Line{Product: p, Qty: 1})

	all, err := svc.ListTransactions(ctx, repository.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].TransactionDate.After(all[1].TransactionDate))

	in := model.TxIn
	from := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	filtered, err := svc.ListTransactions(ctx, repository.TransactionFilter{Type: &in, DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(1), filtered[0].TotalQuantity)
}

func TestTransactionService_DeleteRestoresStock(t *testing.T) {
	f := newFixture(t)
	svc := NewTransactionService(f.txns, f.stock, f.events)
	p := testutil.CreateProduct(t, f.db, "P", "1.00")
	testutil.RecordMovement(t, f.db, model.TxIn, time.Now(), testutil.Line{Product: p, Qty: 5})
	out := testutil.RecordMovement(t, f.db, model.TxOut, time.Now(), testutil.Line{Product: p, Qty: 2})

	require.NoError(t, svc.DeleteTransaction(ctx, out.ID, clerk))
	stock, err := f.stock.CurrentStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stock)

	require.Len(t, f.events.events, 1)
	ev := f.events.events[0]
	assert.Equal(t, ActionMovementDeleted, ev.Action)
	require.Len(t, ev.Products, 1)
	assert.Equal(t, int64(5), ev.Products[0].CurrentStock)

	assert.ErrorIs(t, svc.DeleteTransaction(ctx, out.ID, clerk), ErrTransactionNotFound)
}
