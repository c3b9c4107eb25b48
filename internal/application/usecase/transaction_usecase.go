package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/warehouse-api/internal/application/dto"
	"github.com/jhoicas/warehouse-api/internal/application/ledger"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/inventory"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

// TransactionUseCase casos de uso de pedidos y créditos. Las escrituras pasan por el
// conciliador de stock; las lecturas van directo al repositorio.
type TransactionUseCase struct {
	reconciler *ledger.Reconciler
	repo       repository.TransactionRepository
	now        func() time.Time
}

// NewTransactionUseCase construye el caso de uso.
func NewTransactionUseCase(reconciler *ledger.Reconciler, repo repository.TransactionRepository) *TransactionUseCase {
	return &TransactionUseCase{reconciler: reconciler, repo: repo, now: time.Now}
}

// ── Pedidos ───────────────────────────────────────────────────────────────────

// CreateOrder registra un pedido y descuenta el stock de sus líneas.
func (uc *TransactionUseCase) CreateOrder(ctx context.Context, userID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	tx, err := uc.reconciler.ApplyCreate(ctx, entity.KindOrder, ledger.CreateInput{
		CounterpartyName: in.CustomerName,
		Phone:            in.Phone,
		Date:             in.OrderDate,
		Notes:            in.Notes,
		Items:            toLineInputs(in.Items),
		UserID:           userID,
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(tx), nil
}

// UpdateOrder reemplaza las líneas del pedido ajustando el stock por diferencia.
func (uc *TransactionUseCase) UpdateOrder(ctx context.Context, userID, id string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	tx, err := uc.reconciler.ApplyUpdate(ctx, entity.KindOrder, id, ledger.UpdateInput{
		CounterpartyName: in.CustomerName,
		Phone:            in.Phone,
		Date:             in.OrderDate,
		Notes:            in.Notes,
		Items:            toLineInputs(in.Items),
		UserID:           userID,
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(tx), nil
}

// DeleteOrder elimina el pedido y devuelve su stock.
func (uc *TransactionUseCase) DeleteOrder(ctx context.Context, id string) error {
	return uc.reconciler.ApplyDelete(ctx, entity.KindOrder, id)
}

// GetOrder obtiene un pedido por ID. (nil, nil) si no existe.
func (uc *TransactionUseCase) GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error) {
	tx, err := uc.find(ctx, entity.KindOrder, id)
	if err != nil || tx == nil {
		return nil, err
	}
	return toOrderResponse(tx), nil
}

// ListOrders lista pedidos del más reciente al más antiguo.
func (uc *TransactionUseCase) ListOrders(ctx context.Context, limit, offset int) (*dto.OrderListResponse, error) {
	list, total, err := uc.list(ctx, entity.KindOrder, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, tx := range list {
		items = append(items, *toOrderResponse(tx))
	}
	return &dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset, Total: total}}, nil
}

// ── Créditos ──────────────────────────────────────────────────────────────────

// CreateCredit registra un crédito, descuenta el stock y aplica el abono inicial si lo hay.
func (uc *TransactionUseCase) CreateCredit(ctx context.Context, userID string, in dto.CreateCreditRequest) (*dto.CreditResponse, error) {
	tx, err := uc.reconciler.ApplyCreate(ctx, entity.KindCredit, ledger.CreateInput{
		CounterpartyName: in.CustomerName,
		Phone:            in.Phone,
		Date:             in.CreditDate,
		DueDate:          in.DueDate,
		Notes:            in.Notes,
		Items:            toLineInputs(in.Items),
		PaidAmount:       in.PaidAmount,
		UserID:           userID,
	})
	if err != nil {
		return nil, err
	}
	return toCreditResponse(tx), nil
}

// UpdateCredit reemplaza cabecera y líneas del crédito. Los abonos existentes se conservan.
func (uc *TransactionUseCase) UpdateCredit(ctx context.Context, userID, id string, in dto.UpdateCreditRequest) (*dto.CreditResponse, error) {
	tx, err := uc.reconciler.ApplyUpdate(ctx, entity.KindCredit, id, ledger.UpdateInput{
		CounterpartyName: in.CustomerName,
		Phone:            in.Phone,
		Date:             in.CreditDate,
		DueDate:          in.DueDate,
		Notes:            in.Notes,
		Items:            toLineInputs(in.Items),
		UserID:           userID,
	})
	if err != nil {
		return nil, err
	}
	return toCreditResponse(tx), nil
}

// DeleteCredit elimina el crédito y devuelve su stock.
func (uc *TransactionUseCase) DeleteCredit(ctx context.Context, id string) error {
	return uc.reconciler.ApplyDelete(ctx, entity.KindCredit, id)
}

// AddPayment registra un abono al crédito.
func (uc *TransactionUseCase) AddPayment(ctx context.Context, id string, in dto.AddPaymentRequest) (*dto.CreditResponse, error) {
	tx, err := uc.reconciler.AddPayment(ctx, id, ledger.PaymentInput{
		Amount: in.Amount,
		Date:   in.PaymentDate,
		Notes:  in.Notes,
	})
	if err != nil {
		return nil, err
	}
	return toCreditResponse(tx), nil
}

// GetCredit obtiene un crédito por ID con el estado derivado a la fecha actual.
func (uc *TransactionUseCase) GetCredit(ctx context.Context, id string) (*dto.CreditResponse, error) {
	tx, err := uc.find(ctx, entity.KindCredit, id)
	if err != nil || tx == nil {
		return nil, err
	}
	return toCreditResponse(tx), nil
}

// ListCredits lista créditos del más reciente al más antiguo.
func (uc *TransactionUseCase) ListCredits(ctx context.Context, limit, offset int) (*dto.CreditListResponse, error) {
	list, total, err := uc.list(ctx, entity.KindCredit, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CreditResponse, 0, len(list))
	for _, tx := range list {
		items = append(items, *toCreditResponse(tx))
	}
	return &dto.CreditListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset, Total: total}}, nil
}

// find lee el registro y recalcula los derivados: Overdue depende de la fecha de consulta.
func (uc *TransactionUseCase) find(ctx context.Context, kind entity.TransactionKind, id string) (*entity.Transaction, error) {
	tx, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil || tx.Kind != kind {
		return nil, nil
	}
	inventory.Recompute(tx, uc.now())
	return tx, nil
}

func (uc *TransactionUseCase) list(ctx context.Context, kind entity.TransactionKind, limit, offset int) ([]*entity.Transaction, int64, error) {
	list, err := uc.repo.List(ctx, kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.repo.CountByKind(ctx, kind)
	if err != nil {
		return nil, 0, err
	}
	now := uc.now()
	for _, tx := range list {
		inventory.Recompute(tx, now)
	}
	return list, total, nil
}

func toLineInputs(in []dto.LineItemRequest) []ledger.LineInput {
	out := make([]ledger.LineInput, 0, len(in))
	for _, l := range in {
		out = append(out, ledger.LineInput{
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Returned:    l.Returned,
			UnitPrice:   l.UnitPrice,
		})
	}
	return out
}

func toLineItemResponses(items []entity.LineItem) []dto.LineItemResponse {
	out := make([]dto.LineItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LineItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Returned:    it.Returned,
			NetQuantity: it.NetQuantity(),
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		})
	}
	return out
}

func toOrderResponse(tx *entity.Transaction) *dto.OrderResponse {
	return &dto.OrderResponse{
		ID:           tx.ID,
		OrderNumber:  tx.Number,
		CustomerName: tx.CounterpartyName,
		Phone:        tx.Phone,
		OrderDate:    tx.Date,
		Notes:        tx.Notes,
		Items:        toLineItemResponses(tx.Items),
		TotalAmount:  tx.TotalAmount,
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
}

func toCreditResponse(tx *entity.Transaction) *dto.CreditResponse {
	payments := make([]dto.PaymentResponse, 0, len(tx.Payments))
	for _, p := range tx.Payments {
		payments = append(payments, dto.PaymentResponse{ID: p.ID, Amount: p.Amount, Date: p.Date, Notes: p.Notes})
	}
	return &dto.CreditResponse{
		ID:              tx.ID,
		CreditNumber:    tx.Number,
		CustomerName:    tx.CounterpartyName,
		Phone:           tx.Phone,
		CreditDate:      tx.Date,
		DueDate:         tx.DueDate,
		Notes:           tx.Notes,
		Items:           toLineItemResponses(tx.Items),
		TotalAmount:     tx.TotalAmount,
		PaidAmount:      tx.PaidAmount,
		RemainingAmount: tx.RemainingAmount,
		Status:          tx.Status,
		Payments:        payments,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
}
