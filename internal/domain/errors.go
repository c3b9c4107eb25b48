package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidPayment      = errors.New("pago inválido")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente la operación")
)

// ProductNotFoundError una línea referencia un producto que no existe.
type ProductNotFoundError struct {
	Name string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto %q no encontrado", e.Name)
}

// Is permite errors.Is(err, ErrNotFound).
func (e *ProductNotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError la operación dejaría el stock del producto en negativo.
type InsufficientStockError struct {
	ProductName string
	Available   int64
	Required    int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s. Disponible: %d, Requerido: %d", e.ProductName, e.Available, e.Required)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidPaymentError monto no positivo o mayor al saldo pendiente.
type InvalidPaymentError struct {
	Reason string
}

func (e *InvalidPaymentError) Error() string {
	return "pago inválido: " + e.Reason
}

func (e *InvalidPaymentError) Is(target error) bool { return target == ErrInvalidPayment }

// TransactionNotFoundError update/delete/pago contra un pedido o crédito inexistente.
type TransactionNotFoundError struct {
	ID string
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("registro %s no encontrado", e.ID)
}

func (e *TransactionNotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidInputf envuelve ErrInvalidInput con un detalle legible.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
