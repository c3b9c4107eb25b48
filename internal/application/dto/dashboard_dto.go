package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard.
type DashboardSummaryDTO struct {
	ProductCount int64 `json:"product_count"`
	OrderCount   int64 `json:"order_count"`
	CreditCount  int64 `json:"credit_count"`

	// Créditos por estado, derivado al momento de la consulta
	CreditsActive  int `json:"credits_active"`
	CreditsOverdue int `json:"credits_overdue"`

	OutstandingReceivables decimal.Decimal `json:"outstanding_receivables"` // Σ saldo pendiente de créditos abiertos

	LowStock          []LowStockDTO `json:"low_stock"`
	LowStockThreshold int64         `json:"low_stock_threshold"`

	DateLabel string `json:"date_label"` // ej: "Mayo 2026"
}

// LowStockDTO producto con stock en o por debajo del umbral.
type LowStockDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}
