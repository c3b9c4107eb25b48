package ledger

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/inventory"
)

// LineInput línea tal como llega del cliente. UnitPrice nil = precio vigente del producto.
type LineInput struct {
	ProductName string
	Quantity    int64
	Returned    int64
	UnitPrice   *decimal.Decimal
}

// CreateInput datos para crear un pedido o crédito.
type CreateInput struct {
	CounterpartyName string
	Phone            string
	Date             *time.Time
	DueDate          *time.Time
	Notes            string
	Items            []LineInput
	// PaidAmount abono inicial (solo créditos).
	PaidAmount decimal.Decimal
	UserID     string
}

// UpdateInput reemplazo completo de cabecera y líneas. Date y DueDate nil conservan el valor actual.
type UpdateInput struct {
	CounterpartyName string
	Phone            string
	Date             *time.Time
	DueDate          *time.Time
	Notes            string
	Items            []LineInput
	UserID           string
}

// PaymentInput abono a un crédito.
type PaymentInput struct {
	Amount decimal.Decimal
	Date   *time.Time
	Notes  string
}

// Reconciler mantiene el stock de productos consistente con las líneas de pedidos y créditos.
// Cada operación corre en una sola unidad atómica: o se aplican todos los cambios o ninguno.
type Reconciler struct {
	txRunner TxRunner
	metrics  Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// Option configura el Reconciler.
type Option func(*Reconciler)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithMetrics registra un observador de métricas.
func WithMetrics(m Metrics) Option {
	return func(r *Reconciler) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithLogger asigna el logger del conciliador.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reconciler) { r.log = l }
}

// NewReconciler construye el conciliador sobre un TxRunner.
func NewReconciler(txRunner TxRunner, opts ...Option) *Reconciler {
	r := &Reconciler{
		txRunner: txRunner,
		metrics:  nopMetrics{},
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ApplyCreate descuenta el stock de cada línea y persiste el registro con el siguiente consecutivo.
// Si algún producto no existe o no alcanza el stock no se modifica nada.
func (r *Reconciler) ApplyCreate(ctx context.Context, kind entity.TransactionKind, in CreateInput) (created *entity.Transaction, err error) {
	defer func() { r.metrics.ObserveOperation(OpCreate, kind, Outcome(err)) }()

	if !kind.Valid() {
		return nil, domain.InvalidInputf("tipo de registro desconocido %q", kind)
	}
	if strings.TrimSpace(in.CounterpartyName) == "" {
		return nil, domain.InvalidInputf("nombre del cliente requerido")
	}
	items := toLineItems(in.Items)
	if err := inventory.ValidateItems(kind, items); err != nil {
		return nil, err
	}
	if in.PaidAmount.IsNegative() {
		return nil, domain.InvalidInputf("el abono inicial no puede ser negativo")
	}
	if !inventory.ValidAmount(in.PaidAmount) {
		return nil, domain.InvalidInputf("el abono admite máximo %d decimales", inventory.MoneyScale)
	}
	if kind != entity.KindCredit && !in.PaidAmount.IsZero() {
		return nil, domain.InvalidInputf("los pedidos no admiten abonos")
	}

	now := r.now()
	date := now
	if in.Date != nil {
		date = *in.Date
	}

	err = r.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		tx := &entity.Transaction{
			ID:               uuid.New().String(),
			Kind:             kind,
			CounterpartyName: strings.TrimSpace(in.CounterpartyName),
			Phone:            in.Phone,
			Date:             date,
			Notes:            in.Notes,
			CreatedBy:        in.UserID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if kind == entity.KindCredit {
			tx.DueDate = in.DueDate
		}

		products, err := r.reconcile(ctx, repos, movementContext{
			transactionID: tx.ID,
			kind:          kind,
			reason:        entity.MovementReasonCreate,
			userID:        in.UserID,
			now:           now,
		}, nil, items)
		if err != nil {
			return err
		}
		resolveItems(items, in.Items, products)
		tx.Items = items

		if !in.PaidAmount.IsZero() {
			tx.Payments = []entity.Payment{{
				ID:     uuid.New().String(),
				Amount: in.PaidAmount,
				Date:   now,
				Notes:  "pago inicial",
			}}
		}
		inventory.Recompute(tx, now)
		if tx.RemainingAmount.IsNegative() {
			return domain.InvalidInputf("el abono inicial supera el total")
		}

		seq, err := repos.Sequences.Next(ctx, kind)
		if err != nil {
			return fmt.Errorf("consecutivo: %w", err)
		}
		tx.Number = inventory.FormatNumber(seq)

		if err := repos.Transactions.Insert(ctx, tx); err != nil {
			return err
		}
		created = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Str("op", OpCreate).
		Str("kind", string(kind)).
		Str("id", created.ID).
		Str("number", created.Number).
		Int("lines", len(created.Items)).
		Msg("registro creado")
	return created, nil
}

// ApplyUpdate reemplaza las líneas del registro y ajusta el stock solo por la diferencia neta
// de cada producto. Productos sin cambio neto no se escriben.
func (r *Reconciler) ApplyUpdate(ctx context.Context, kind entity.TransactionKind, id string, in UpdateInput) (updated *entity.Transaction, err error) {
	defer func() { r.metrics.ObserveOperation(OpUpdate, kind, Outcome(err)) }()

	if strings.TrimSpace(in.CounterpartyName) == "" {
		return nil, domain.InvalidInputf("nombre del cliente requerido")
	}
	items := toLineItems(in.Items)
	if err := inventory.ValidateItems(kind, items); err != nil {
		return nil, err
	}
	now := r.now()

	err = r.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		current, err := repos.Transactions.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil || current.Kind != kind {
			return &domain.TransactionNotFoundError{ID: id}
		}

		products, err := r.reconcile(ctx, repos, movementContext{
			transactionID: current.ID,
			kind:          kind,
			reason:        entity.MovementReasonUpdate,
			userID:        in.UserID,
			now:           now,
		}, current.Items, items)
		if err != nil {
			return err
		}
		resolveItems(items, in.Items, products)

		current.CounterpartyName = strings.TrimSpace(in.CounterpartyName)
		current.Phone = in.Phone
		current.Notes = in.Notes
		current.Items = items
		current.UpdatedAt = now
		if in.Date != nil {
			current.Date = *in.Date
		}
		if kind == entity.KindCredit && in.DueDate != nil {
			current.DueDate = in.DueDate
		}
		inventory.Recompute(current, now)
		if current.RemainingAmount.IsNegative() {
			return domain.InvalidInputf("el nuevo total (%s) es menor a lo ya abonado (%s)", current.TotalAmount, current.PaidAmount)
		}

		if err := repos.Transactions.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Str("op", OpUpdate).
		Str("kind", string(kind)).
		Str("id", updated.ID).
		Str("number", updated.Number).
		Msg("registro actualizado")
	return updated, nil
}

// ApplyDelete devuelve al stock la cantidad neta de cada línea y elimina el registro.
// Las líneas de productos que ya no existen se omiten.
func (r *Reconciler) ApplyDelete(ctx context.Context, kind entity.TransactionKind, id string) (err error) {
	defer func() { r.metrics.ObserveOperation(OpDelete, kind, Outcome(err)) }()

	now := r.now()
	err = r.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		current, err := repos.Transactions.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil || current.Kind != kind {
			return &domain.TransactionNotFoundError{ID: id}
		}
		if _, err := r.reconcile(ctx, repos, movementContext{
			transactionID: current.ID,
			kind:          kind,
			reason:        entity.MovementReasonDelete,
			now:           now,
		}, current.Items, nil); err != nil {
			return err
		}
		return repos.Transactions.DeleteByID(ctx, current.ID)
	})
	if err != nil {
		return err
	}

	r.log.Info().Str("op", OpDelete).Str("kind", string(kind)).Str("id", id).Msg("registro eliminado")
	return nil
}

// AddPayment agrega un abono a un crédito. El monto debe ser positivo y no superar el saldo.
func (r *Reconciler) AddPayment(ctx context.Context, id string, in PaymentInput) (updated *entity.Transaction, err error) {
	defer func() { r.metrics.ObserveOperation(OpPayment, entity.KindCredit, Outcome(err)) }()

	if !in.Amount.IsPositive() {
		return nil, &domain.InvalidPaymentError{Reason: "el monto debe ser mayor a cero"}
	}
	if !inventory.ValidAmount(in.Amount) {
		return nil, &domain.InvalidPaymentError{Reason: fmt.Sprintf("el monto admite máximo %d decimales", inventory.MoneyScale)}
	}
	now := r.now()
	date := now
	if in.Date != nil {
		date = *in.Date
	}

	err = r.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		current, err := repos.Transactions.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil || !current.IsCredit() {
			return &domain.TransactionNotFoundError{ID: id}
		}
		inventory.Recompute(current, now)
		if in.Amount.GreaterThan(current.RemainingAmount) {
			return &domain.InvalidPaymentError{
				Reason: fmt.Sprintf("el monto %s supera el saldo pendiente %s", in.Amount, current.RemainingAmount),
			}
		}
		current.Payments = append(current.Payments, entity.Payment{
			ID:     uuid.New().String(),
			Amount: in.Amount,
			Date:   date,
			Notes:  in.Notes,
		})
		current.UpdatedAt = now
		inventory.Recompute(current, now)

		if err := repos.Transactions.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Str("op", OpPayment).
		Str("id", updated.ID).
		Str("amount", in.Amount.String()).
		Str("remaining", updated.RemainingAmount.String()).
		Str("status", updated.Status).
		Msg("abono registrado")
	return updated, nil
}

type movementContext struct {
	transactionID string
	kind          entity.TransactionKind
	reason        string
	userID        string
	now           time.Time
}

// reconcile bloquea los productos de la unión de ambas listas (en orden de nombre), valida
// existencia y disponibilidad de todos y solo después escribe el stock y los movimientos.
// Devuelve los productos bloqueados indexados por nombre.
func (r *Reconciler) reconcile(ctx context.Context, repos Repos, mc movementContext, oldItems, newItems []entity.LineItem) (map[string]*entity.Product, error) {
	deltas := inventory.Diff(oldItems, newItems)
	required := inventory.NetByProduct(newItems)
	locked := make(map[string]*entity.Product, len(deltas))

	for _, d := range deltas {
		p, err := repos.Products.FindByNameForUpdate(ctx, d.ProductName)
		if err != nil {
			return nil, err
		}
		if p == nil {
			if _, inNew := required[d.ProductName]; inNew {
				return nil, &domain.ProductNotFoundError{Name: d.ProductName}
			}
			r.log.Warn().
				Str("transaction_id", mc.transactionID).
				Str("product", d.ProductName).
				Int64("units", d.OldNet).
				Msg("producto eliminado, no se devuelve stock")
			continue
		}
		if d.Delta() > p.Quantity {
			available, ok := inventory.AddQuantities(p.Quantity, d.OldNet)
			if !ok {
				available = math.MaxInt64
			}
			return nil, &domain.InsufficientStockError{
				ProductName: p.Name,
				Available:   available,
				Required:    d.NewNet,
			}
		}
		if d.Delta() < 0 {
			if _, ok := inventory.AddQuantities(p.Quantity, -d.Delta()); !ok {
				return nil, domain.InvalidInputf("el stock de %s quedaría fuera de rango", p.Name)
			}
		}
		locked[d.ProductName] = p
	}

	for _, d := range deltas {
		p, ok := locked[d.ProductName]
		if !ok || d.Delta() == 0 {
			continue
		}
		quantity := p.Quantity - d.Delta()
		if err := repos.Products.SaveQuantity(ctx, p.ID, quantity); err != nil {
			return nil, err
		}
		p.Quantity = quantity
		if err := repos.Movements.Create(ctx, &entity.StockMovement{
			ID:              uuid.New().String(),
			TransactionID:   mc.transactionID,
			TransactionKind: mc.kind,
			ProductID:       p.ID,
			ProductName:     p.Name,
			Delta:           -d.Delta(),
			Reason:          mc.reason,
			CreatedAt:       mc.now,
			CreatedBy:       mc.userID,
		}); err != nil {
			return nil, err
		}
	}
	return locked, nil
}

func toLineItems(in []LineInput) []entity.LineItem {
	out := make([]entity.LineItem, len(in))
	for i, l := range in {
		out[i] = entity.LineItem{
			ProductName: strings.TrimSpace(l.ProductName),
			Quantity:    l.Quantity,
			Returned:    l.Returned,
		}
		if l.UnitPrice != nil {
			out[i].UnitPrice = *l.UnitPrice
		}
	}
	return out
}

// resolveItems completa ProductID y, si el cliente no envió precio, toma el precio vigente del producto.
func resolveItems(items []entity.LineItem, in []LineInput, products map[string]*entity.Product) {
	for i := range items {
		p, ok := products[items[i].ProductName]
		if !ok {
			continue
		}
		items[i].ProductID = p.ID
		items[i].ProductName = p.Name
		if in[i].UnitPrice == nil {
			items[i].UnitPrice = p.Price
		}
	}
}
