package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/ledger"
	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/inventory"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock lo mueve la conciliación de pedidos
// y créditos; la edición manual de Quantity es un ajuste administrativo sin movimiento.
type ProductUseCase struct {
	tx        ledger.TxRunner
	repo      repository.ProductRepository
	movements repository.StockMovementRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(tx ledger.TxRunner, repo repository.ProductRepository, movements repository.StockMovementRepository) *ProductUseCase {
	return &ProductUseCase{tx: tx, repo: repo, movements: movements}
}

// Create crea un nuevo producto. El nombre es único.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.InvalidInputf("nombre requerido")
	}
	if in.Price.IsNegative() {
		return nil, domain.InvalidInputf("precio negativo")
	}
	if !inventory.ValidAmount(in.Price) {
		return nil, domain.InvalidInputf("el precio admite máximo %d decimales", inventory.MoneyScale)
	}
	if in.Quantity < 0 {
		return nil, domain.InvalidInputf("stock negativo")
	}
	existing, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		Quantity:    in.Quantity,
		Price:       in.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. Renombrar no reescribe las líneas históricas, que guardan el nombre anterior.
// Corre en una transacción con el producto bloqueado; el stock solo se escribe si viene en la petición.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.Price != nil && in.Price.IsNegative() {
		return nil, domain.InvalidInputf("precio negativo")
	}
	if in.Price != nil && !inventory.ValidAmount(*in.Price) {
		return nil, domain.InvalidInputf("el precio admite máximo %d decimales", inventory.MoneyScale)
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, domain.InvalidInputf("stock negativo")
	}
	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.InvalidInputf("nombre requerido")
		}
	}

	var product *entity.Product
	err := uc.tx.Run(ctx, func(ctx context.Context, repos ledger.Repos) error {
		product = nil
		current, err := repos.Products.GetByID(ctx, id)
		if err != nil || current == nil {
			return err
		}
		locked, err := repos.Products.FindByNameForUpdate(ctx, current.Name)
		if err != nil {
			return err
		}
		if locked == nil || locked.ID != id {
			// renombrado o borrado entre la lectura y el bloqueo
			return domain.ErrConcurrencyConflict
		}

		if in.Name != nil && name != locked.Name {
			other, err := repos.Products.FindByName(ctx, name)
			if err != nil {
				return err
			}
			if other != nil {
				return domain.ErrDuplicate
			}
			locked.Name = name
		}
		if in.Description != nil {
			locked.Description = *in.Description
		}
		if in.Price != nil {
			locked.Price = *in.Price
		}
		locked.UpdatedAt = time.Now()
		if err := repos.Products.Update(ctx, locked); err != nil {
			return err
		}
		if in.Quantity != nil && *in.Quantity != locked.Quantity {
			if err := repos.Products.SaveQuantity(ctx, id, *in.Quantity); err != nil {
				return err
			}
			locked.Quantity = *in.Quantity
			locked.Version++
		}
		product = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Delete elimina un producto por ID. Los pedidos que lo referencian se conservan.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// Movements historial de cambios de stock del producto, del más reciente al más antiguo.
func (uc *ProductUseCase) Movements(ctx context.Context, productID string, limit, offset int) (*dto.StockMovementListResponse, error) {
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.movements.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.StockMovementResponse{
			ID:              m.ID,
			TransactionID:   m.TransactionID,
			TransactionKind: string(m.TransactionKind),
			ProductID:       m.ProductID,
			ProductName:     m.ProductName,
			Delta:           m.Delta,
			Reason:          m.Reason,
			CreatedAt:       m.CreatedAt,
			CreatedBy:       m.CreatedBy,
		})
	}
	return &dto.StockMovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Quantity:    p.Quantity,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
