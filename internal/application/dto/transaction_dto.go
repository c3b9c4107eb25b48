package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemRequest línea de un pedido o crédito. Sin unit_price se usa el precio vigente del producto.
type LineItemRequest struct {
	ProductName string           `json:"product_name" validate:"required,min=1,max=200"`
	Quantity    int64            `json:"quantity" validate:"min=0"`
	Returned    int64            `json:"returned" validate:"min=0,ltefield=Quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest entrada para POST /api/orders. Los totales del cliente se ignoran.
type CreateOrderRequest struct {
	CustomerName string            `json:"customer_name" validate:"required,min=1,max=200"`
	Phone        string            `json:"phone" validate:"max=50"`
	OrderDate    *time.Time        `json:"order_date"`
	Notes        string            `json:"notes" validate:"max=1000"`
	Items        []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest entrada para PUT /api/orders/:id. Reemplaza cabecera y líneas.
type UpdateOrderRequest = CreateOrderRequest

// CreateCreditRequest entrada para POST /api/credits.
type CreateCreditRequest struct {
	CustomerName string            `json:"customer_name" validate:"required,min=1,max=200"`
	Phone        string            `json:"phone" validate:"max=50"`
	CreditDate   *time.Time        `json:"credit_date"`
	DueDate      *time.Time        `json:"due_date"`
	Notes        string            `json:"notes" validate:"max=1000"`
	Items        []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	PaidAmount   decimal.Decimal   `json:"paid_amount"`
}

// UpdateCreditRequest entrada para PUT /api/credits/:id. Los abonos solo se agregan vía /payment.
type UpdateCreditRequest struct {
	CustomerName string            `json:"customer_name" validate:"required,min=1,max=200"`
	Phone        string            `json:"phone" validate:"max=50"`
	CreditDate   *time.Time        `json:"credit_date"`
	DueDate      *time.Time        `json:"due_date"`
	Notes        string            `json:"notes" validate:"max=1000"`
	Items        []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

// AddPaymentRequest entrada para POST /api/credits/:id/payment.
type AddPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
	Notes       string          `json:"notes" validate:"max=500"`
}

// LineItemResponse línea persistida con el precio congelado al momento de la operación.
type LineItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Returned    int64           `json:"returned"`
	NetQuantity int64           `json:"net_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PaymentResponse abono registrado.
type PaymentResponse struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"payment_date"`
	Notes  string          `json:"notes,omitempty"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID           string             `json:"id"`
	OrderNumber  string             `json:"order_number"`
	CustomerName string             `json:"customer_name"`
	Phone        string             `json:"phone,omitempty"`
	OrderDate    time.Time          `json:"order_date"`
	Notes        string             `json:"notes,omitempty"`
	Items        []LineItemResponse `json:"items"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// CreditResponse salida de un crédito con saldo y estado derivados.
type CreditResponse struct {
	ID              string             `json:"id"`
	CreditNumber    string             `json:"credit_number"`
	CustomerName    string             `json:"customer_name"`
	Phone           string             `json:"phone,omitempty"`
	CreditDate      time.Time          `json:"credit_date"`
	DueDate         *time.Time         `json:"due_date,omitempty"`
	Notes           string             `json:"notes,omitempty"`
	Items           []LineItemResponse `json:"items"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	PaidAmount      decimal.Decimal    `json:"paid_amount"`
	RemainingAmount decimal.Decimal    `json:"remaining_amount"`
	Status          string             `json:"status"`
	Payments        []PaymentResponse  `json:"payments"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// CreditListResponse lista paginada de créditos.
type CreditListResponse struct {
	Items []CreditResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
