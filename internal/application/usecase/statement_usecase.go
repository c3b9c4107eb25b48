package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/inventory"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

// StatementGenerator puerto para generar el estado de cuenta de un pedido o crédito (PDF).
type StatementGenerator interface {
	GenerateStatement(ctx context.Context, tx *entity.Transaction, issuedAt time.Time) ([]byte, error)
}

// StatementUseCase genera el estado de cuenta descargable de un registro.
type StatementUseCase struct {
	repo      repository.TransactionRepository
	generator StatementGenerator
	now       func() time.Time
}

// NewStatementUseCase construye el caso de uso.
func NewStatementUseCase(repo repository.TransactionRepository, generator StatementGenerator) *StatementUseCase {
	return &StatementUseCase{repo: repo, generator: generator, now: time.Now}
}

// Download devuelve el PDF y su nombre de archivo.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si el registro no existe o es de otro tipo.
func (uc *StatementUseCase) Download(ctx context.Context, kind entity.TransactionKind, id string) (pdfBytes []byte, filename string, err error) {
	tx, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("estado de cuenta: obtener registro: %w", err)
	}
	if tx == nil || tx.Kind != kind {
		return nil, "", &domain.TransactionNotFoundError{ID: id}
	}
	now := uc.now()
	inventory.Recompute(tx, now)

	pdfBytes, err = uc.generator.GenerateStatement(ctx, tx, now)
	if err != nil {
		return nil, "", fmt.Errorf("estado de cuenta: generación fallida: %w", err)
	}
	prefix := "pedido"
	if tx.IsCredit() {
		prefix = "credito"
	}
	return pdfBytes, fmt.Sprintf("%s_%s.pdf", prefix, tx.Number), nil
}
