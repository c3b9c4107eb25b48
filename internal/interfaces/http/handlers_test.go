package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/warehouse-api/internal/application/analytics"
	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/ledger"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/warehouse-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fakeStatement struct{}

func (fakeStatement) GenerateStatement(_ context.Context, tx *entity.Transaction, _ time.Time) ([]byte, error) {
	return []byte("%PDF-" + tx.Number), nil
}

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	rec := ledger.NewReconciler(store)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:     usecase.NewProductUseCase(store, store.Products(), store.Movements()),
		TransactionUC: usecase.NewTransactionUseCase(rec, store.Transactions()),
		StatementUC:   usecase.NewStatementUseCase(store.Transactions(), fakeStatement{}),
		DashboardUC:   appanalytics.NewDashboardUseCase(store.Products(), store.Transactions(), 5),
		JWTSecret:     testJWTSecret,
	})
	return &apiFixture{app: app, store: store}
}

// call envía la petición autenticada con el rol indicado y devuelve estado y cuerpo.
func (f *apiFixture) call(t *testing.T, role, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (f *apiFixture) createProduct(t *testing.T, name string, qty, price int64) dto.ProductResponse {
	t.Helper()
	status, body := f.call(t, "admin", http.MethodPost, "/api/products", map[string]any{
		"name": name, "quantity": qty, "price": price,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &p))
	return p
}

func (f *apiFixture) stock(t *testing.T, id string) int64 {
	t.Helper()
	status, body := f.call(t, "admin", http.MethodGet, "/api/products/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(body, &p))
	return p.Quantity
}

func decodeError(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e
}

func line(name string, qty, returned int64) map[string]any {
	return map[string]any{"product_name": name, "quantity": qty, "returned": returned}
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos
// ──────────────────────────────────────────────────────────────────────────────

func TestOrders_CicloCompletoAjustaStock(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "Cemento", 100, 2500)

	status, body := f.call(t, "vendedor", http.MethodPost, "/api/orders", map[string]any{
		"customer_name": "Ferretería Central",
		"items":         []any{line("Cemento", 30, 0)},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, "001", order.OrderNumber)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(75000)))
	assert.Equal(t, int64(70), f.stock(t, p.ID))

	status, body = f.call(t, "vendedor", http.MethodPut, "/api/orders/"+order.ID, map[string]any{
		"customer_name": "Ferretería Central",
		"items":         []any{line("Cemento", 20, 5)},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, int64(85), f.stock(t, p.ID))

	status, _ = f.call(t, "vendedor", http.MethodDelete, "/api/orders/"+order.ID, nil)
	require.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, int64(100), f.stock(t, p.ID))

	status, _ = f.call(t, "vendedor", http.MethodGet, "/api/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = f.call(t, "vendedor", http.MethodDelete, "/api/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = f.call(t, "admin", http.MethodGet, "/api/products/"+p.ID+"/movements", nil)
	require.Equal(t, http.StatusOK, status)
	var movements dto.StockMovementListResponse
	require.NoError(t, json.Unmarshal(body, &movements))
	assert.Len(t, movements.Items, 3)
}

func TestOrders_StockInsuficienteDevuelveDetalle(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "Arena", 10, 100)

	status, body := f.call(t, "vendedor", http.MethodPost, "/api/orders", map[string]any{
		"customer_name": "Obra",
		"items":         []any{line("Arena", 15, 0)},
	})

	assert.Equal(t, http.StatusConflict, status)
	e := decodeError(t, body)
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	assert.Equal(t, "Arena", e.Details["product"])
	assert.EqualValues(t, 10, e.Details["available"])
	assert.EqualValues(t, 15, e.Details["required"])
	assert.Equal(t, int64(10), f.stock(t, p.ID))
}

func TestOrders_ProductoInexistente(t *testing.T) {
	f := newAPI(t)

	status, body := f.call(t, "vendedor", http.MethodPost, "/api/orders", map[string]any{
		"customer_name": "Obra",
		"items":         []any{line("Fantasma", 1, 0)},
	})

	assert.Equal(t, http.StatusNotFound, status)
	e := decodeError(t, body)
	assert.Equal(t, "PRODUCT_NOT_FOUND", e.Code)
	assert.Equal(t, "Fantasma", e.Details["product"])
}

func TestOrders_ValidacionDelCuerpo(t *testing.T) {
	f := newAPI(t)

	status, body := f.call(t, "vendedor", http.MethodPost, "/api/orders", map[string]any{
		"customer_name": "Obra",
		"items":         []any{},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	e := decodeError(t, body)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Details, "items")

	status, body = f.call(t, "vendedor", http.MethodPost, "/api/orders", map[string]any{
		"customer_name": "Obra",
		"items":         []any{line("Arena", 2, 3)},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decodeError(t, body).Details, "items[0].returned")
}

func TestOrders_StatementPDF(t *testing.T) {
	f := newAPI(t)
	f.createProduct(t, "Cal", 5, 1000)
	_, body := f.call(t, "vendedor", http.MethodPost, "/api/orders", map[string]any{
		"customer_name": "Obra", "items": []any{line("Cal", 1, 0)},
	})
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID+"/statement", nil)
	req.Header.Set("Authorization", tokenForRole(t, "vendedor"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "pedido_001.pdf")
}

// ──────────────────────────────────────────────────────────────────────────────
// Créditos
// ──────────────────────────────────────────────────────────────────────────────

func TestCredits_AbonosHastaPagado(t *testing.T) {
	f := newAPI(t)
	f.createProduct(t, "Varilla", 50, 85000)

	status, body := f.call(t, "vendedor", http.MethodPost, "/api/credits", map[string]any{
		"customer_name": "Constructora",
		"due_date":      time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"items":         []any{line("Varilla", 10, 0)},
		"paid_amount":   400000,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var credit dto.CreditResponse
	require.NoError(t, json.Unmarshal(body, &credit))
	assert.True(t, credit.RemainingAmount.Equal(decimal.NewFromInt(450000)))
	assert.Equal(t, entity.CreditStatusActive, credit.Status)

	status, body = f.call(t, "vendedor", http.MethodPost, "/api/credits/"+credit.ID+"/payment", map[string]any{"amount": 500000})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_PAYMENT", decodeError(t, body).Code)

	status, body = f.call(t, "vendedor", http.MethodPost, "/api/credits/"+credit.ID+"/payment", map[string]any{"amount": 450000})
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &credit))
	assert.Equal(t, entity.CreditStatusPaid, credit.Status)
	assert.True(t, credit.RemainingAmount.IsZero())
	assert.Len(t, credit.Payments, 2)
}

func TestCredits_PagoAPedidoEsNotFound(t *testing.T) {
	f := newAPI(t)
	f.createProduct(t, "Cal", 5, 1000)
	_, body := f.call(t, "vendedor", http.MethodPost, "/api/orders", map[string]any{
		"customer_name": "Obra", "items": []any{line("Cal", 1, 0)},
	})
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))

	status, _ := f.call(t, "vendedor", http.MethodPost, "/api/credits/"+order.ID+"/payment", map[string]any{"amount": 100})
	assert.Equal(t, http.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos y dashboard
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_NombreDuplicado(t *testing.T) {
	f := newAPI(t)
	f.createProduct(t, "Teja", 3, 9000)

	status, body := f.call(t, "admin", http.MethodPost, "/api/products", map[string]any{"name": "Teja", "quantity": 1, "price": 1})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", decodeError(t, body).Code)
}

func TestProducts_PrecioConMasDeDosDecimales(t *testing.T) {
	f := newAPI(t)

	status, body := f.call(t, "admin", http.MethodPost, "/api/products", map[string]any{"name": "Clavo", "quantity": 1, "price": "19.999"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", decodeError(t, body).Code)

	p := f.createProduct(t, "Clavo", 1, 20)
	status, body = f.call(t, "admin", http.MethodPut, "/api/products/"+p.ID, map[string]any{"price": "0.001"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", decodeError(t, body).Code)
}

func TestDashboard_Resumen(t *testing.T) {
	f := newAPI(t)
	f.createProduct(t, "Teja", 3, 9000)
	f.createProduct(t, "Bloque", 300, 1200)

	status, body := f.call(t, "bodeguero", http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, status)
	var summary dto.DashboardSummaryDTO
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, int64(2), summary.ProductCount)
	require.Len(t, summary.LowStock, 1)
	assert.Equal(t, "Teja", summary.LowStock[0].ProductName)
}

