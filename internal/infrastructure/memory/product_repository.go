package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	v view
}

func findByName(st *state, name string) *entity.Product {
	for _, p := range st.products {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		if findByName(st, product.Name) != nil {
			return domain.ErrDuplicate
		}
		st.products[product.ID] = cloneProduct(product)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		out = cloneProduct(st.products[id])
		return nil
	})
	return out, err
}

func (r *ProductRepo) FindByName(_ context.Context, name string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do(func(st *state) error {
		out = cloneProduct(findByName(st, name))
		return nil
	})
	return out, err
}

// FindByNameForUpdate no necesita bloqueo adicional: Run ya serializa las transacciones.
func (r *ProductRepo) FindByNameForUpdate(ctx context.Context, name string) (*entity.Product, error) {
	return r.FindByName(ctx, name)
}

func (r *ProductRepo) SaveQuantity(_ context.Context, id string, quantity int64) error {
	return r.v.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		if quantity < 0 {
			return domain.InvalidInputf("stock negativo para %s", p.Name)
		}
		p.Quantity = quantity
		p.Version++
		return nil
	})
}

// Update actualiza nombre, descripción y precio; conserva el stock y la versión guardados.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.v.do(func(st *state) error {
		p, ok := st.products[product.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if other := findByName(st, product.Name); other != nil && other.ID != product.ID {
			return domain.ErrDuplicate
		}
		p.Name = product.Name
		p.Description = product.Description
		p.Price = product.Price
		p.UpdatedAt = product.UpdatedAt
		product.Quantity = p.Quantity
		product.Version = p.Version
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.do(func(st *state) error {
		all := sortedProducts(st, func(a, b *entity.Product) bool { return a.Name < b.Name })
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *ProductRepo) Count(_ context.Context) (int64, error) {
	var n int64
	err := r.v.do(func(st *state) error {
		n = int64(len(st.products))
		return nil
	})
	return n, err
}

func (r *ProductRepo) ListLowStock(_ context.Context, threshold int64, limit int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.do(func(st *state) error {
		all := sortedProducts(st, func(a, b *entity.Product) bool {
			if a.Quantity != b.Quantity {
				return a.Quantity < b.Quantity
			}
			return a.Name < b.Name
		})
		for _, p := range all {
			if p.Quantity <= threshold {
				out = append(out, p)
			}
		}
		out = page(out, limit, 0)
		return nil
	})
	return out, err
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.products, id)
		return nil
	})
}

func sortedProducts(st *state, less func(a, b *entity.Product) bool) []*entity.Product {
	all := make([]*entity.Product, 0, len(st.products))
	for _, p := range st.products {
		all = append(all, cloneProduct(p))
	}
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
	return all
}

// page aplica limit/offset; limit <= 0 devuelve todo desde offset.
func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
