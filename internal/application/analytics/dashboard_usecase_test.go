package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-api/internal/application/ledger"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/memory"
)

func TestGetSummary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	for _, p := range []*entity.Product{
		{ID: "p1", Name: "Cemento", Quantity: 40, Price: decimal.NewFromInt(30000)},
		{ID: "p2", Name: "Arena", Quantity: 3, Price: decimal.NewFromInt(5000)},
	} {
		require.NoError(t, store.Products().Create(ctx, p))
	}
	rec := ledger.NewReconciler(store, ledger.WithClock(func() time.Time { return now }))

	_, err := rec.ApplyCreate(ctx, entity.KindOrder, ledger.CreateInput{
		CounterpartyName: "Obra 1",
		Items:            []ledger.LineInput{{ProductName: "Cemento", Quantity: 2}},
	})
	require.NoError(t, err)
	past := now.Add(-48 * time.Hour)
	_, err = rec.ApplyCreate(ctx, entity.KindCredit, ledger.CreateInput{
		CounterpartyName: "Obra 2",
		DueDate:          &past,
		Items:            []ledger.LineInput{{ProductName: "Cemento", Quantity: 5}},
		PaidAmount:       decimal.NewFromInt(50000),
	})
	require.NoError(t, err)
	_, err = rec.ApplyCreate(ctx, entity.KindCredit, ledger.CreateInput{
		CounterpartyName: "Obra 3",
		Items:            []ledger.LineInput{{ProductName: "Arena", Quantity: 1}},
	})
	require.NoError(t, err)

	uc := NewDashboardUseCase(store.Products(), store.Transactions(), 5)
	uc.now = func() time.Time { return now }

	summary, err := uc.GetSummary(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.ProductCount)
	assert.Equal(t, int64(1), summary.OrderCount)
	assert.Equal(t, int64(2), summary.CreditCount)
	assert.Equal(t, 1, summary.CreditsActive)
	assert.Equal(t, 1, summary.CreditsOverdue)
	assert.True(t, summary.OutstandingReceivables.Equal(decimal.NewFromInt(105000)), summary.OutstandingReceivables.String())
	require.Len(t, summary.LowStock, 1)
	assert.Equal(t, "Arena", summary.LowStock[0].ProductName)
	assert.Equal(t, int64(2), summary.LowStock[0].Quantity)
	assert.Equal(t, "Mayo 2026", summary.DateLabel)
}
