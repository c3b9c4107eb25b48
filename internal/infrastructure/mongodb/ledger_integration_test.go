//go:build integration

package mongodb_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/jhoicas/warehouse-api/internal/application/ledger"
	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/warehouse-api/pkg/config"
)

// setupClient levanta un mongo con replica set de un nodo: las transacciones lo requieren.
func setupClient(t *testing.T) *mongodb.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcmongo.Run(ctx, "mongo:6", tcmongo.WithReplicaSet("rs0"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	sep := "/?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}

	client, err := mongodb.NewClient(ctx, config.MongoConfig{
		URI:      uri + sep + "directConnection=true",
		Database: "warehouse_test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close(ctx) })
	return client
}

func seedProduct(t *testing.T, client *mongodb.Client, name string, qty int64) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, client.Products().Create(context.Background(), &entity.Product{
		ID: uuid.NewString(), Name: name, Quantity: qty, Price: decimal.NewFromInt(1000),
		CreatedAt: now, UpdatedAt: now,
	}))
}

func stockOf(t *testing.T, client *mongodb.Client, name string) int64 {
	t.Helper()
	p, err := client.Products().FindByName(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func TestLedger_Mongo_CicloCompleto(t *testing.T) {
	client := setupClient(t)
	rec := ledger.NewReconciler(client)
	ctx := context.Background()
	seedProduct(t, client, "Cemento", 100)

	order, err := rec.ApplyCreate(ctx, entity.KindOrder, ledger.CreateInput{
		CounterpartyName: "Obra Norte",
		Items:            []ledger.LineInput{{ProductName: "Cemento", Quantity: 30}},
	})
	require.NoError(t, err)
	assert.Equal(t, "001", order.Number)
	assert.Equal(t, int64(70), stockOf(t, client, "Cemento"))

	_, err = rec.ApplyUpdate(ctx, entity.KindOrder, order.ID, ledger.UpdateInput{
		CounterpartyName: "Obra Norte",
		Items:            []ledger.LineInput{{ProductName: "Cemento", Quantity: 15}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(85), stockOf(t, client, "Cemento"))

	_, err = rec.ApplyCreate(ctx, entity.KindOrder, ledger.CreateInput{
		CounterpartyName: "Obra Sur",
		Items:            []ledger.LineInput{{ProductName: "Cemento", Quantity: 86}},
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(85), stockErr.Available)
	assert.Equal(t, int64(85), stockOf(t, client, "Cemento"))

	require.NoError(t, rec.ApplyDelete(ctx, entity.KindOrder, order.ID))
	assert.Equal(t, int64(100), stockOf(t, client, "Cemento"))
	assert.ErrorIs(t, rec.ApplyDelete(ctx, entity.KindOrder, order.ID), domain.ErrNotFound)

	movements, err := client.Movements().ListByTransaction(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, movements, 3)
	assert.Equal(t, []int64{-30, 15, 15}, []int64{movements[0].Delta, movements[1].Delta, movements[2].Delta})
}

func TestLedger_Mongo_ConcurrenciaNoSobregira(t *testing.T) {
	client := setupClient(t)
	rec := ledger.NewReconciler(client)
	ctx := context.Background()
	seedProduct(t, client, "Arena", 5)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		numbers = map[string]bool{}
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := rec.ApplyCreate(ctx, entity.KindOrder, ledger.CreateInput{
				CounterpartyName: "x",
				Items:            []ledger.LineInput{{ProductName: "Arena", Quantity: 1}},
			})
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			ok++
			numbers[order.Number] = true
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, ok, 5)
	assert.Len(t, numbers, ok, "consecutivos únicos")
	assert.Equal(t, int64(5-ok), stockOf(t, client, "Arena"))
}
