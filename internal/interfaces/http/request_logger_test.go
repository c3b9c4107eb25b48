package http_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/warehouse-api/internal/application/analytics"
	"github.com/jhoicas/warehouse-api/internal/application/ledger"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/warehouse-api/internal/interfaces/http"
)

const driverFailure = "dial tcp 10.0.0.7:5432: connect: connection refused"

type brokenProducts struct {
	repository.ProductRepository
}

func (brokenProducts) GetByID(context.Context, string) (*entity.Product, error) {
	return nil, errors.New(driverFailure)
}

type httpObservation struct {
	method, path string
	status       int
}

type recordingHTTP struct {
	mu   sync.Mutex
	seen []httpObservation
}

func (r *recordingHTTP) RecordHTTPRequest(method, path string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, httpObservation{method, path, status})
}

func newLoggedAPI(t *testing.T, products repository.ProductRepository) (*fiber.App, *bytes.Buffer, *recordingHTTP) {
	t.Helper()
	store := memory.NewStore()
	if products == nil {
		products = store.Products()
	}
	var buf bytes.Buffer
	rec := &recordingHTTP{}
	app := fiber.New()
	app.Use(apphttp.RequestLogger(zerolog.New(&buf), rec))
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:     usecase.NewProductUseCase(store, products, store.Movements()),
		TransactionUC: usecase.NewTransactionUseCase(ledger.NewReconciler(store), store.Transactions()),
		StatementUC:   usecase.NewStatementUseCase(store.Transactions(), fakeStatement{}),
		DashboardUC:   appanalytics.NewDashboardUseCase(store.Products(), store.Transactions(), 5),
		JWTSecret:     testJWTSecret,
	})
	return app, &buf, rec
}

func TestRequestLogger_ErrorInternoNoSeExpone(t *testing.T) {
	app, logs, rec := newLoggedAPI(t, brokenProducts{})

	req := httptest.NewRequest(http.MethodGet, "/api/products/abc", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	e := decodeError(t, body)
	assert.Equal(t, "INTERNAL", e.Code)
	assert.NotContains(t, string(body), "10.0.0.7", "el cliente no ve el error del driver")

	assert.Contains(t, logs.String(), driverFailure, "el error completo queda en el log")
	assert.Contains(t, logs.String(), `"status":500`)
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))

	require.Len(t, rec.seen, 1)
	assert.Equal(t, httpObservation{http.MethodGet, "/api/products/:id", http.StatusInternalServerError}, rec.seen[0])
}

func TestRequestLogger_RespetaRequestIDDelCliente(t *testing.T) {
	app, logs, _ := newLoggedAPI(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	req.Header.Set(apphttp.HeaderRequestID, "req-42")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-42", resp.Header.Get(apphttp.HeaderRequestID))
	assert.Contains(t, logs.String(), `"request_id":"req-42"`)
}
