package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStock(t *testing.T) {
	cases := []struct {
		name    string
		stock   int64
		minimum int64
		want    StockStatus
	}{
		{"negative", -3, 5, StatusOutOfStock},
		{"zero", 0, 5, StatusOutOfStock},
		{"zero with zero minimum", 0, 0, StatusOutOfStock},
		{"one above zero", 1, 5, StatusLowStock},
		{"equal to minimum", 5, 5, StatusLowStock},
		{"one above minimum", 6, 5, StatusInStock},
		{"positive with zero minimum", 1, 0, StatusInStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyStock(tc.stock, tc.minimum))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "LAP001", NormalizeCode("  lap001 "))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestTransactionTotals(t *testing.T) {
	txn := Transaction{Lines: []TransactionLine{
		{Quantity: 3, UnitPrice: decimal.RequireFromString("10.50")},
		{Quantity: 2, UnitPrice: decimal.RequireFromString("0.25")},
	}}

	assert.Equal(t, 2, txn.TotalItems())
	assert.Equal(t, int64(5), txn.TotalQuantity())
	assert.True(t, decimal.RequireFromString("31.50").Equal(txn.Lines[0].TotalValue()))
	assert.True(t, decimal.RequireFromString("0.50").Equal(txn.Lines[1].TotalValue()))
}

func TestTransactionType_Valid(t *testing.T) {
	assert.True(t, TxIn.Valid())
	assert.True(t, TxOut.Valid())
	assert.True(t, TxAdj.Valid())
	assert.False(t, TransactionType("MOVE").Valid())
}

func TestRolePrivileges(t *testing.T) {
	admin := User{RoleCode: RoleAdmin}
	clerk := User{RoleCode: RoleClerk}
	viewer := User{RoleCode: RoleViewer}
	ghost := User{RoleCode: "GHOST"}

	assert.ElementsMatch(t, AllPrivileges, admin.Privileges())
	assert.True(t, clerk.HasPrivilege(PrivTransactionCreate))
	assert.False(t, clerk.HasPrivilege(PrivTransactionDelete))
	assert.False(t, viewer.HasPrivilege(PrivTransactionCreate))
	assert.Empty(t, ghost.Privileges())
	assert.False(t, ValidRole("GHOST"))

	// callers cannot mutate the role table through the returned slice
	privs := admin.Privileges()
	privs[0] = "tampered"
	assert.Equal(t, PrivProductView, PrivilegesFor(RoleAdmin)[0])
}

func TestUserPassword(t *testing.T) {
	u := User{}
	assert.NoError(t, u.SetPassword("s3cret!"))
	assert.NotEqual(t, "s3cret!", u.Password)
	assert.True(t, u.CheckPassword("s3cret!"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestRoles(t *testing.T) {
	roles := Roles()
	require.Len(t, roles, 3)
	assert.Equal(t, RoleAdmin, roles[0].Code)
	assert.Contains(t, roles[0].Privileges, PrivUserManage)
	for _, r := range roles[1:] {
		assert.True(t, ValidRole(r.Code))
		assert.NotContains(t, r.Privileges, PrivUserManage)
	}
}
