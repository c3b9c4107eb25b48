package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distingue pedidos de créditos (misma forma para la conciliación de stock).
type TransactionKind string

const (
	KindOrder  TransactionKind = "ORDER"
	KindCredit TransactionKind = "CREDIT"
)

// Valid indica si el tipo es conocido.
func (k TransactionKind) Valid() bool {
	return k == KindOrder || k == KindCredit
}

// Estados de un crédito. Siempre derivados de (saldo, vencimiento, ahora).
const (
	CreditStatusActive  = "Active"
	CreditStatusPaid    = "Paid"
	CreditStatusOverdue = "Overdue"
)

// LineItem línea embebida en un pedido o crédito. Guarda una copia del nombre y precio
// del producto al momento de la operación.
type LineItem struct {
	ProductID   string
	ProductName string
	Quantity    int64 // unidades que salieron del stock
	Returned    int64 // unidades devueltas (siempre 0 en créditos)
	UnitPrice   decimal.Decimal
}

// NetQuantity unidades que la línea retira del stock de forma permanente.
func (li LineItem) NetQuantity() int64 {
	return li.Quantity - li.Returned
}

// Subtotal precio unitario por cantidad neta.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(li.NetQuantity()))
}

// Payment abono a un crédito. Solo se agregan, nunca se modifican.
type Payment struct {
	ID     string
	Amount decimal.Decimal
	Date   time.Time
	Notes  string
}

// Transaction pedido (ORDER) o crédito (CREDIT). TotalAmount y, para créditos,
// PaidAmount/RemainingAmount/Status se recalculan en el servidor en cada escritura.
type Transaction struct {
	ID               string
	Kind             TransactionKind
	Number           string // consecutivo con ceros a la izquierda ("001")
	CounterpartyName string
	Phone            string
	Date             time.Time
	DueDate          *time.Time
	Notes            string
	Items            []LineItem
	TotalAmount      decimal.Decimal
	PaidAmount       decimal.Decimal
	RemainingAmount  decimal.Decimal
	Status           string
	Payments         []Payment
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsCredit indica si el registro es un crédito.
func (t *Transaction) IsCredit() bool {
	return t.Kind == KindCredit
}
