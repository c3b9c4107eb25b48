package entity

import "time"

// Motivos de un movimiento de stock generado por la conciliación.
const (
	MovementReasonCreate = "CREATE"
	MovementReasonUpdate = "UPDATE"
	MovementReasonDelete = "DELETE"
)

// StockMovement registro de auditoría: un cambio efectivo en Product.Quantity
// causado por un pedido o crédito. Delta negativo = unidades que salen del stock.
type StockMovement struct {
	ID              string
	TransactionID   string
	TransactionKind TransactionKind
	ProductID       string
	ProductName     string
	Delta           int64
	Reason          string
	CreatedAt       time.Time
	CreatedBy       string
}
