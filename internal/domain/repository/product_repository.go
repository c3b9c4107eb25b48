package repository

import (
	"context"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los métodos de lectura devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	FindByName(ctx context.Context, name string) (*entity.Product, error)
	// FindByNameForUpdate lee el producto y lo bloquea hasta el fin de la transacción en curso.
	FindByNameForUpdate(ctx context.Context, name string) (*entity.Product, error)
	// SaveQuantity escribe el stock del producto (usado solo por la conciliación).
	SaveQuantity(ctx context.Context, id string, quantity int64) error
	// Update actualiza nombre, descripción y precio. El stock solo cambia con SaveQuantity.
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Count(ctx context.Context) (int64, error)
	// ListLowStock productos con Quantity <= threshold, de menor a mayor stock.
	ListLowStock(ctx context.Context, threshold int64, limit int) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
