package repository

import (
	"context"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

// TransactionRepository define el puerto de persistencia para pedidos y créditos.
// Las líneas y pagos viajan embebidos en el registro.
type TransactionRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Transaction, error)
	// FindByIDForUpdate lee el registro y lo bloquea hasta el fin de la transacción en curso.
	FindByIDForUpdate(ctx context.Context, id string) (*entity.Transaction, error)
	Insert(ctx context.Context, tx *entity.Transaction) error
	// Update reemplaza cabecera, líneas, pagos y totales del registro.
	Update(ctx context.Context, tx *entity.Transaction) error
	// DeleteByID devuelve ErrNotFound si el registro no existe.
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context, kind entity.TransactionKind, limit, offset int) ([]*entity.Transaction, error)
	CountByKind(ctx context.Context, kind entity.TransactionKind) (int64, error)
	// ListOpenCredits créditos con saldo pendiente mayor a cero.
	ListOpenCredits(ctx context.Context) ([]*entity.Transaction, error)
}

// SequenceRepository asigna consecutivos atómicos por tipo de registro.
type SequenceRepository interface {
	Next(ctx context.Context, kind entity.TransactionKind) (int64, error)
}
