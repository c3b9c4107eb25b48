package ledger

import (
	"context"
	"errors"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

// Repos repositorios atados a una misma unidad atómica (transacción SQL, sesión Mongo o snapshot en memoria).
type Repos struct {
	Products     repository.ProductRepository
	Transactions repository.TransactionRepository
	Sequences    repository.SequenceRepository
	Movements    repository.StockMovementRepository
}

// TxRunner ejecuta fn dentro de una transacción y hace Commit si fn retorna nil, Rollback en otro caso.
// El ctx recibido por fn es el que deben usar los repositorios (lleva la sesión en Mongo).
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// Operaciones del conciliador (etiquetas de métricas y logs).
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpPayment = "payment"
)

// Metrics observa el resultado de cada operación del conciliador.
type Metrics interface {
	ObserveOperation(operation string, kind entity.TransactionKind, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, entity.TransactionKind, string) {}

// Outcome clasifica un error del conciliador para métricas.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidPayment):
		return "invalid"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	default:
		return "error"
	}
}
