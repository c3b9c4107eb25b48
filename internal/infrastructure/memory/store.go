// Package memory implementa los puertos de persistencia en memoria. Se usa en desarrollo
// (STORE_DRIVER=memory) y en los tests del conciliador y de los handlers.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/warehouse-api/internal/application/ledger"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

var _ ledger.TxRunner = (*Store)(nil)

type state struct {
	products     map[string]*entity.Product // por ID
	transactions map[string]*entity.Transaction
	sequences    map[entity.TransactionKind]int64
	movements    []*entity.StockMovement
}

func newState() *state {
	return &state{
		products:     make(map[string]*entity.Product),
		transactions: make(map[string]*entity.Transaction),
		sequences:    make(map[entity.TransactionKind]int64),
	}
}

func (s *state) clone() *state {
	out := &state{
		products:     make(map[string]*entity.Product, len(s.products)),
		transactions: make(map[string]*entity.Transaction, len(s.transactions)),
		sequences:    make(map[entity.TransactionKind]int64, len(s.sequences)),
		movements:    make([]*entity.StockMovement, len(s.movements)),
	}
	for id, p := range s.products {
		out.products[id] = cloneProduct(p)
	}
	for id, t := range s.transactions {
		out.transactions[id] = cloneTransaction(t)
	}
	for k, v := range s.sequences {
		out.sequences[k] = v
	}
	copy(out.movements, s.movements)
	return out
}

// Store base de datos en memoria. Run serializa las transacciones con un único mutex y
// trabaja sobre una copia del estado: si fn falla la copia se descarta.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run ejecuta fn con repositorios atados a una copia del estado y la publica solo si fn retorna nil.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos ledger.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	v := view{store: s, st: work}
	repos := ledger.Repos{
		Products:     &ProductRepo{v: v},
		Transactions: &TransactionRepo{v: v},
		Sequences:    &SequenceRepo{v: v},
		Movements:    &StockMovementRepo{v: v},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{v: view{store: s}} }

// Transactions repositorio de pedidos y créditos fuera de transacción.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{v: view{store: s}} }

// Movements repositorio de movimientos de stock fuera de transacción.
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{v: view{store: s}} }

// view da acceso al estado: el de la transacción en curso o, fuera de ella, el publicado bajo el mutex.
type view struct {
	store *Store
	st    *state
}

func (v view) do(fn func(st *state) error) error {
	if v.st != nil {
		return fn(v.st)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

func cloneProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func cloneTransaction(t *entity.Transaction) *entity.Transaction {
	if t == nil {
		return nil
	}
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.Items = append([]entity.LineItem(nil), t.Items...)
	c.Payments = append([]entity.Payment(nil), t.Payments...)
	return &c
}
