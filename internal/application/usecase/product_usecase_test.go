package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/ledger"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/memory"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

// interleavingRunner ejecuta afterGet justo después de la primera lectura sin bloqueo del producto,
// como lo haría un pedido que confirma entre la lectura y el SELECT ... FOR UPDATE.
type interleavingRunner struct {
	inner    ledger.TxRunner
	afterGet func(ctx context.Context, repos ledger.Repos, p *entity.Product) error
}

func (r *interleavingRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ledger.Repos) error) error {
	return r.inner.Run(ctx, func(ctx context.Context, repos ledger.Repos) error {
		inner := repos
		repos.Products = &interleavedProducts{ProductRepository: repos.Products, afterGet: func(ctx context.Context, p *entity.Product) error {
			return r.afterGet(ctx, inner, p)
		}}
		return fn(ctx, repos)
	})
}

type interleavedProducts struct {
	repository.ProductRepository
	afterGet func(ctx context.Context, p *entity.Product) error
}

func (p *interleavedProducts) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := p.ProductRepository.GetByID(ctx, id)
	if err != nil || product == nil || p.afterGet == nil {
		return product, err
	}
	hook := p.afterGet
	p.afterGet = nil
	if err := hook(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func seedProduct(t *testing.T, store *memory.Store, name string, qty int64) *dto.ProductResponse {
	t.Helper()
	uc := usecase.NewProductUseCase(store, store.Products(), store.Movements())
	p, err := uc.Create(context.Background(), dto.CreateProductRequest{Name: name, Quantity: qty, Price: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	return p
}

func stockOf(t *testing.T, store *memory.Store, id string) int64 {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func strPtr(s string) *string { return &s }

// ── Update ───────────────────────────────────────────────────────────────────

func TestProductUpdate_EdicionDeDescripcionNoPisaStockDeUnPedido(t *testing.T) {
	store := memory.NewStore()
	p := seedProduct(t, store, "Cemento", 100)

	runner := &interleavingRunner{
		inner: store,
		afterGet: func(ctx context.Context, repos ledger.Repos, read *entity.Product) error {
			// un pedido de 30 unidades confirma después de la lectura
			return repos.Products.SaveQuantity(ctx, read.ID, read.Quantity-30)
		},
	}
	uc := usecase.NewProductUseCase(runner, store.Products(), store.Movements())

	out, err := uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Description: strPtr("bulto 50kg")})

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "bulto 50kg", out.Description)
	assert.Equal(t, int64(70), out.Quantity)
	assert.Equal(t, int64(70), stockOf(t, store, p.ID))
}

func TestProductUpdate_EdicionesConcurrentesConservanElStock(t *testing.T) {
	store := memory.NewStore()
	p := seedProduct(t, store, "Arena", 100)
	uc := usecase.NewProductUseCase(store, store.Products(), store.Movements())
	rec := ledger.NewReconciler(store)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := rec.ApplyCreate(context.Background(), entity.KindOrder, ledger.CreateInput{
				CounterpartyName: "Obra",
				Items:            []ledger.LineInput{{ProductName: "Arena", Quantity: 1}},
			})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			price := decimal.NewFromInt(1200)
			_, err := uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Price: &price})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(100-n), stockOf(t, store, p.ID))
}

func TestProductUpdate_AjusteManualDeStock(t *testing.T) {
	store := memory.NewStore()
	p := seedProduct(t, store, "Varilla", 10)
	uc := usecase.NewProductUseCase(store, store.Products(), store.Movements())
	qty := int64(42)

	out, err := uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Name: strPtr(" Varilla 3/8 "), Quantity: &qty})

	require.NoError(t, err)
	assert.Equal(t, "Varilla 3/8", out.Name)
	assert.Equal(t, int64(42), stockOf(t, store, p.ID))
}

func TestProductUpdate_ProductoInexistente(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewProductUseCase(store, store.Products(), store.Movements())

	out, err := uc.Update(context.Background(), "no-existe", dto.UpdateProductRequest{Description: strPtr("x")})

	require.NoError(t, err)
	assert.Nil(t, out)
}
