package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

func TestItemsJSONB(t *testing.T) {
	items := []entity.LineItem{
		{ProductID: "p1", ProductName: "Cemento", Quantity: 10, Returned: 2, UnitPrice: decimal.RequireFromString("30000.50")},
	}

	raw, err := encodeItems(items)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"product_name":"Cemento"`)

	decoded, err := decodeItems(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, int64(8), decoded[0].NetQuantity())
	assert.True(t, decoded[0].UnitPrice.Equal(items[0].UnitPrice))
}

func TestPaymentsJSONB_ListaVacia(t *testing.T) {
	raw, err := encodePayments(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	payments, err := decodePayments([]byte(`[{"id":"x","amount":"100","date":"2026-05-01T00:00:00Z"}]`))
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, payments[0].Date.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
}
