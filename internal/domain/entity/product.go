package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del almacén. Name es único: las líneas de pedidos y
// créditos lo referencian por nombre. Quantity es el stock disponible y nunca es negativo.
type Product struct {
	ID          string
	Name        string
	Description string
	Quantity    int64
	Price       decimal.Decimal // precio de venta vigente
	Version     int64           // se incrementa en cada escritura de Quantity
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
