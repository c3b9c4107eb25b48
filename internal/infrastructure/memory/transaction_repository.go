package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var (
	_ repository.TransactionRepository   = (*TransactionRepo)(nil)
	_ repository.SequenceRepository      = (*SequenceRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// TransactionRepo implementación en memoria de TransactionRepository.
type TransactionRepo struct {
	v view
}

func (r *TransactionRepo) FindByID(_ context.Context, id string) (*entity.Transaction, error) {
	var out *entity.Transaction
	err := r.v.do(func(st *state) error {
		out = cloneTransaction(st.transactions[id])
		return nil
	})
	return out, err
}

func (r *TransactionRepo) FindByIDForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.FindByID(ctx, id)
}

func (r *TransactionRepo) Insert(_ context.Context, tx *entity.Transaction) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.transactions[tx.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, t := range st.transactions {
			if t.Kind == tx.Kind && t.Number == tx.Number {
				return domain.ErrDuplicate
			}
		}
		st.transactions[tx.ID] = cloneTransaction(tx)
		return nil
	})
}

func (r *TransactionRepo) Update(_ context.Context, tx *entity.Transaction) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.transactions[tx.ID]; !ok {
			return domain.ErrNotFound
		}
		st.transactions[tx.ID] = cloneTransaction(tx)
		return nil
	})
}

func (r *TransactionRepo) DeleteByID(_ context.Context, id string) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.transactions[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.transactions, id)
		return nil
	})
}

func (r *TransactionRepo) List(_ context.Context, kind entity.TransactionKind, limit, offset int) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	err := r.v.do(func(st *state) error {
		out = page(filterTransactions(st, func(t *entity.Transaction) bool { return t.Kind == kind }), limit, offset)
		return nil
	})
	return out, err
}

func (r *TransactionRepo) CountByKind(_ context.Context, kind entity.TransactionKind) (int64, error) {
	var n int64
	err := r.v.do(func(st *state) error {
		for _, t := range st.transactions {
			if t.Kind == kind {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *TransactionRepo) ListOpenCredits(_ context.Context) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	err := r.v.do(func(st *state) error {
		out = filterTransactions(st, func(t *entity.Transaction) bool {
			return t.Kind == entity.KindCredit && t.RemainingAmount.IsPositive()
		})
		return nil
	})
	return out, err
}

// filterTransactions devuelve copias, de la más reciente a la más antigua.
func filterTransactions(st *state, keep func(*entity.Transaction) bool) []*entity.Transaction {
	out := make([]*entity.Transaction, 0)
	for _, t := range st.transactions {
		if keep(t) {
			out = append(out, cloneTransaction(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Number > out[j].Number
	})
	return out
}

// SequenceRepo consecutivos en memoria.
type SequenceRepo struct {
	v view
}

func (r *SequenceRepo) Next(_ context.Context, kind entity.TransactionKind) (int64, error) {
	var n int64
	err := r.v.do(func(st *state) error {
		st.sequences[kind]++
		n = st.sequences[kind]
		return nil
	})
	return n, err
}

// StockMovementRepo auditoría de stock en memoria.
type StockMovementRepo struct {
	v view
}

func (r *StockMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	return r.v.do(func(st *state) error {
		m := *movement
		st.movements = append(st.movements, &m)
		return nil
	})
}

func (r *StockMovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.v.do(func(st *state) error {
		matched := make([]*entity.StockMovement, 0)
		for i := len(st.movements) - 1; i >= 0; i-- {
			if st.movements[i].ProductID == productID {
				m := *st.movements[i]
				matched = append(matched, &m)
			}
		}
		out = page(matched, limit, offset)
		return nil
	})
	return out, err
}

func (r *StockMovementRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.v.do(func(st *state) error {
		out = make([]*entity.StockMovement, 0)
		for _, m := range st.movements {
			if m.TransactionID == transactionID {
				c := *m
				out = append(out, &c)
			}
		}
		return nil
	})
	return out, err
}
