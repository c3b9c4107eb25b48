package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

func TestMoney_SeparadorDeMiles(t *testing.T) {
	g := NewMarotoPDFGenerator("Almacén")
	assert.Equal(t, "$850.000", g.money(decimal.NewFromInt(850000)))
	assert.Equal(t, "$999", g.money(decimal.NewFromInt(999)))
}

func TestGenerateStatement_Credito(t *testing.T) {
	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	tx := &entity.Transaction{
		Kind:             entity.KindCredit,
		Number:           "007",
		CounterpartyName: "Distribuidora Norte",
		Date:             time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		DueDate:          &due,
		Items: []entity.LineItem{
			{ProductName: "Cemento", Quantity: 10, UnitPrice: decimal.NewFromInt(30000)},
		},
		TotalAmount:     decimal.NewFromInt(300000),
		PaidAmount:      decimal.NewFromInt(100000),
		RemainingAmount: decimal.NewFromInt(200000),
		Status:          entity.CreditStatusActive,
		Payments:        []entity.Payment{{Amount: decimal.NewFromInt(100000), Date: due, Notes: "pago inicial"}},
	}

	out, err := NewMarotoPDFGenerator("Almacén").GenerateStatement(context.Background(), tx, time.Now())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
