package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-stock-ledger/internal/config"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/testutil"
	"go-stock-ledger/internal/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testAPI struct {
	t   *testing.T
	app *fiber.App
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "admin@example.com", "secret123", model.RoleAdmin)
	testutil.CreateUser(t, db, "viewer@example.com", "secret123", model.RoleViewer)

	app, err := New(testConfig(), db, nil, ws.NewHub())
	require.NoError(t, err)
	return &testAPI{t: t, app: app}
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		StockGuard:         config.GuardRow,
		StockLockTTL:       time.Second,
	}
}

func (a *testAPI) do(method, path, token string, body interface{}) (int, []byte) {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, out
}

func (a *testAPI) login(email string) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	require.Equal(a.t, http.StatusOK, status, string(body))
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(body, &resp))
	require.NotEmpty(a.t, resp.Token)
	return resp.Token
}

func (a *testAPI) createProduct(token, code string, minimum int64) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"product_code":  code,
		"product_name":  "Product " + code,
		"unit":          "pcs",
		"price":         "12.50",
		"minimum_stock": minimum,
	})
	require.Equal(a.t, http.StatusCreated, status, string(body))
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(a.t, json.Unmarshal(body, &resp))
	return resp.Data.ID
}

type errorEnvelope struct {
	Success bool `json:"success"`
	Errors  []struct {
		Kind    string `json:"kind"`
		Field   string `json:"field"`
		Item    *int   `json:"item"`
		Message string `json:"message"`
	} `json:"errors"`
}

func decodeErrors(t *testing.T, body []byte) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	require.NotEmpty(t, env.Errors, string(body))
	return env
}

func movement(id, txType, productID string, qty interface{}) map[string]interface{} {
	return map[string]interface{}{
		"transaction_id":   id,
		"transaction_type": txType,
		"items": []map[string]interface{}{
			{"product_id": productID, "quantity": qty, "unit_price": "12.50"},
		},
	}
}

// brokenPool is a connection pool gorm cannot unwrap into a *sql.DB.
type brokenPool struct{ gorm.ConnPool }

func TestNewFailsWithoutSQLHandle(t *testing.T) {
	db := &gorm.DB{Config: &gorm.Config{ConnPool: brokenPool{}}}
	app, err := New(testConfig(), db, nil, ws.NewHub())
	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestMalformedIDIsBadRequest(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("admin@example.com")

	cases := []struct {
		method, path, msg string
	}{
		{http.MethodGet, "/api/v1/products/not-a-uuid", "Invalid product ID"},
		{http.MethodDelete, "/api/v1/products/not-a-uuid", "Invalid product ID"},
		{http.MethodPatch, "/api/v1/products/not-a-uuid/activate", "Invalid product ID"},
		{http.MethodGet, "/api/v1/transactions/not-a-uuid", "Invalid transaction ID"},
		{http.MethodDelete, "/api/v1/transactions/not-a-uuid", "Invalid transaction ID"},
		{http.MethodGet, "/api/v1/users/not-a-uuid", "Invalid user ID"},
		{http.MethodDelete, "/api/v1/users/not-a-uuid", "Invalid user ID"},
	}
	for _, tc := range cases {
		status, body := api.do(tc.method, tc.path, token, nil)
		assert.Equal(t, http.StatusBadRequest, status, tc.method+" "+tc.path)
		assert.Contains(t, string(body), tc.msg, tc.method+" "+tc.path)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	api := newTestAPI(t)
	status, body := api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "admin@example.com", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "invalid email or password")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	api := newTestAPI(t)
	status, _ := api.do(http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestNewLoginReplacesSession(t *testing.T) {
	api := newTestAPI(t)
	first := api.login("admin@example.com")
	second := api.login("admin@example.com")

	status, body := api.do(http.MethodGet, "/api/v1/products", first, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "Session expired")

	status, _ = api.do(http.MethodGet, "/api/v1/products", second, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestViewerCannotRecordMovements(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com")
	viewer := api.login("viewer@example.com")
	pid := api.createProduct(admin, "LAP001", 0)

	status, _ := api.do(http.MethodPost, "/api/v1/stock-movements", viewer, movement("TXN-1", "IN", pid, 5))
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(http.MethodGet, "/api/v1/products/"+pid, viewer, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestStockMovementLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("admin@example.com")
	pid := api.createProduct(token, "MOU001", 5)

	// receive 10
	status, body := api.do(http.MethodPost, "/api/v1/stock-movements", token, movement("TXN-1", "IN", pid, 10))
	require.Equal(t, http.StatusCreated, status, string(body))
	var created struct {
		Success       bool   `json:"success"`
		Message       string `json:"message"`
		TransactionID string `json:"transaction_id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.True(t, created.Success)
	assert.Equal(t, "Stock movement created successfully", created.Message)
	assert.Equal(t, "TXN-1", created.TransactionID)

	// issue more than on hand
	status, body = api.do(http.MethodPost, "/api/v1/stock-movements", token, movement("TXN-2", "OUT", pid, 11))
	assert.Equal(t, http.StatusBadRequest, status)
	env := decodeErrors(t, body)
	assert.False(t, env.Success)
	assert.Equal(t, "insufficient_stock", env.Errors[0].Kind)
	require.NotNil(t, env.Errors[0].Item)
	assert.Equal(t, 0, *env.Errors[0].Item)

	// same transaction id again
	status, body = api.do(http.MethodPost, "/api/v1/stock-movements", token, movement("TXN-1", "IN", pid, 1))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "duplicate", decodeErrors(t, body).Errors[0].Kind)

	// malformed quantity
	status, body = api.do(http.MethodPost, "/api/v1/stock-movements", token, movement("TXN-3", "OUT", pid, "many"))
	assert.Equal(t, http.StatusBadRequest, status)
	env = decodeErrors(t, body)
	assert.Equal(t, "invalid", env.Errors[0].Kind)
	assert.Equal(t, "quantity", env.Errors[0].Field)

	// issue 7 of 10, leaving 3 which is below minimum 5
	status, body = api.do(http.MethodPost, "/api/v1/stock-movements", token, movement("TXN-4", "OUT", pid, 7))
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = api.do(http.MethodGet, "/api/v1/products/"+pid, token, nil)
	require.Equal(t, http.StatusOK, status)
	var product struct {
		CurrentStock int64  `json:"current_stock"`
		StockStatus  string `json:"stock_status"`
	}
	require.NoError(t, json.Unmarshal(body, &product))
	assert.Equal(t, int64(3), product.CurrentStock)
	assert.Equal(t, "Low Stock", product.StockStatus)

	status, body = api.do(http.MethodGet, "/api/v1/transactions?transaction_type=OUT", token, nil)
	require.Equal(t, http.StatusOK, status)
	var txns []struct {
		TransactionID string `json:"transaction_id"`
		TotalQuantity int64  `json:"total_quantity"`
	}
	require.NoError(t, json.Unmarshal(body, &txns))
	require.Len(t, txns, 1)
	assert.Equal(t, "TXN-4", txns[0].TransactionID)
	assert.Equal(t, int64(7), txns[0].TotalQuantity)
}

func TestUnknownProductIsReferentialError(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("admin@example.com")

	status, body := api.do(http.MethodPost, "/api/v1/stock-movements", token,
		movement("TXN-9", "IN", "6f1c7a52-1b1e-4a59-9d65-0d5b3b8f7a10", 1))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "not_found", decodeErrors(t, body).Errors[0].Kind)
}

func TestDuplicateProductCode(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("admin@example.com")
	api.createProduct(token, "KEL001", 0)

	status, body := api.do(http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"product_code": " kel001 ",
		"product_name": "Keyboard",
		"unit":         "pcs",
		"price":        25,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "duplicate", decodeErrors(t, body).Errors[0].Kind)
}

func TestReports(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("admin@example.com")
	pid := api.createProduct(token, "CAB001", 10)
	status, _ := api.do(http.MethodPost, "/api/v1/stock-movements", token, movement("TXN-1", "IN", pid, 4))
	require.Equal(t, http.StatusCreated, status)

	status, body := api.do(http.MethodGet, "/api/v1/reports/inventory", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var rep struct {
		Items []struct {
			ProductCode  string `json:"product_code"`
			CurrentStock int64  `json:"current_stock"`
			Status       string `json:"status"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(body, &rep))
	require.Len(t, rep.Items, 1)
	assert.Equal(t, "CAB001", rep.Items[0].ProductCode)
	assert.Equal(t, int64(4), rep.Items[0].CurrentStock)
	assert.Equal(t, "Low Stock", rep.Items[0].Status)

	status, body = api.do(http.MethodGet, "/api/v1/reports/historical?as_of=2000-01-01", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &rep))
	require.Len(t, rep.Items, 1)
	assert.Zero(t, rep.Items[0].CurrentStock)

	status, _ = api.do(http.MethodGet, "/api/v1/reports/historical", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/inventory.pdf", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	status, body = api.do(http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status)
	var dash struct {
		TotalProducts      int `json:"total_products"`
		LowStockCount      int `json:"low_stock_count"`
		RecentTransactions []struct {
			TransactionID string `json:"transaction_id"`
		} `json:"recent_transactions"`
	}
	require.NoError(t, json.Unmarshal(body, &dash))
	assert.Equal(t, 1, dash.TotalProducts)
	assert.Equal(t, 1, dash.LowStockCount)
	require.Len(t, dash.RecentTransactions, 1)

	status, body = api.do(http.MethodGet, "/api/v1/dashboard/stock-movement?days=3", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var chart struct {
		Period int `json:"period"`
		Data   []struct {
			Date    string `json:"date"`
			Inbound int64  `json:"inbound"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &chart))
	assert.Equal(t, 3, chart.Period)
	require.Len(t, chart.Data, 3)
	var inbound int64
	for _, d := range chart.Data {
		inbound += d.Inbound
	}
	assert.Equal(t, int64(4), inbound)
}

func TestOperatorManagement(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com")
	viewer := api.login("viewer@example.com")

	status, _ := api.do(http.MethodGet, "/api/v1/users", viewer, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := api.do(http.MethodPost, "/api/v1/users", admin, map[string]string{
		"email": "clerk@example.com", "password": "secret123", "full_name": "Clerk", "role": "CLERK",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var created struct {
		Data struct {
			ID         string   `json:"id"`
			Privileges []string `json:"privileges"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Contains(t, created.Data.Privileges, model.PrivTransactionCreate)
	assert.NotContains(t, created.Data.Privileges, model.PrivUserManage)

	status, _ = api.do(http.MethodPost, "/api/v1/users", admin, map[string]string{
		"email": "clerk@example.com", "password": "secret123", "full_name": "Clerk", "role": "CLERK",
	})
	assert.Equal(t, http.StatusConflict, status)

	clerk := api.login("clerk@example.com")
	status, _ = api.do(http.MethodGet, "/api/v1/roles", clerk, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = api.do(http.MethodGet, "/api/v1/roles", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var roles []struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &roles))
	require.Len(t, roles, 3)
	assert.Equal(t, "ADMIN", roles[0].Code)

	status, body = api.do(http.MethodGet, "/api/v1/users", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var users []struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(body, &users))
	assert.Len(t, users, 3)

	// demoting ends the clerk's session
	status, body = api.do(http.MethodPut, "/api/v1/users/"+created.Data.ID, admin, map[string]string{
		"email": "clerk@example.com", "full_name": "Clerk", "role": "VIEWER",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	status, _ = api.do(http.MethodGet, "/api/v1/products", clerk, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(http.MethodDelete, "/api/v1/users/"+created.Data.ID, admin, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodGet, "/api/v1/users/"+created.Data.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	status, body := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true,"db":"connected","redis":"disabled"}`, string(body))
}
