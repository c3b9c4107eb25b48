package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var (
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
	_ repository.SequenceRepository    = (*SequenceRepo)(nil)
)

const transactionColumns = `id, kind, number, counterparty_name, phone, date, due_date, notes, items, payments,
	total_amount, paid_amount, remaining_amount, status, created_by, created_at, updated_at`

// itemRow y paymentRow: forma JSONB de las líneas y abonos embebidos.
type itemRow struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Returned    int64           `json:"returned"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type paymentRow struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Notes  string          `json:"notes,omitempty"`
}

func encodeItems(items []entity.LineItem) ([]byte, error) {
	rows := make([]itemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, itemRow(it))
	}
	return json.Marshal(rows)
}

func decodeItems(raw []byte) ([]entity.LineItem, error) {
	var rows []itemRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	items := make([]entity.LineItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, entity.LineItem(r))
	}
	return items, nil
}

func encodePayments(payments []entity.Payment) ([]byte, error) {
	rows := make([]paymentRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, paymentRow(p))
	}
	return json.Marshal(rows)
}

func decodePayments(raw []byte) ([]entity.Payment, error) {
	var rows []paymentRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	payments := make([]entity.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, entity.Payment(r))
	}
	return payments, nil
}

// TransactionRepo implementación del puerto TransactionRepository sobre PostgreSQL.
// Pedidos y créditos comparten la tabla transactions; las líneas y abonos van en columnas JSONB.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var (
		t                 entity.Transaction
		kind              string
		rawItems, rawPays []byte
	)
	if err := row.Scan(
		&t.ID, &kind, &t.Number, &t.CounterpartyName, &t.Phone, &t.Date, &t.DueDate, &t.Notes,
		&rawItems, &rawPays, &t.TotalAmount, &t.PaidAmount, &t.RemainingAmount, &t.Status,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Kind = entity.TransactionKind(kind)
	var err error
	if t.Items, err = decodeItems(rawItems); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if t.Payments, err = decodePayments(rawPays); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	return &t, nil
}

// FindByID obtiene un pedido o crédito por ID.
func (r *TransactionRepo) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.getOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
}

// FindByIDForUpdate obtiene el registro y bloquea la fila hasta el fin de la tx.
func (r *TransactionRepo) FindByIDForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.getOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransactionRepo) getOne(ctx context.Context, query, id string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// Insert persiste un nuevo registro. (kind, number) es único.
func (r *TransactionRepo) Insert(ctx context.Context, tx *entity.Transaction) error {
	items, err := encodeItems(tx.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	payments, err := encodePayments(tx.Payments)
	if err != nil {
		return fmt.Errorf("encode payments: %w", err)
	}
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = r.q.Exec(ctx, query,
		tx.ID, string(tx.Kind), tx.Number, tx.CounterpartyName, tx.Phone, tx.Date, tx.DueDate, tx.Notes,
		items, payments, tx.TotalAmount, tx.PaidAmount, tx.RemainingAmount, tx.Status,
		tx.CreatedBy, tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Update reemplaza cabecera, líneas, abonos y totales.
func (r *TransactionRepo) Update(ctx context.Context, tx *entity.Transaction) error {
	items, err := encodeItems(tx.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	payments, err := encodePayments(tx.Payments)
	if err != nil {
		return fmt.Errorf("encode payments: %w", err)
	}
	query := `
		UPDATE transactions
		SET counterparty_name = $2, phone = $3, date = $4, due_date = $5, notes = $6,
		    items = $7, payments = $8, total_amount = $9, paid_amount = $10,
		    remaining_amount = $11, status = $12, updated_at = $13
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		tx.ID, tx.CounterpartyName, tx.Phone, tx.Date, tx.DueDate, tx.Notes,
		items, payments, tx.TotalAmount, tx.PaidAmount, tx.RemainingAmount, tx.Status, tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByID elimina el registro. ErrNotFound si no existe.
func (r *TransactionRepo) DeleteByID(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista registros de un tipo, del más reciente al más antiguo. limit 0 = sin límite.
func (r *TransactionRepo) List(ctx context.Context, kind entity.TransactionKind, limit, offset int) ([]*entity.Transaction, error) {
	return r.list(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE kind = $1 ORDER BY created_at DESC, number DESC
		LIMIT NULLIF($2, 0) OFFSET $3`,
		string(kind), limit, offset,
	)
}

// CountByKind total de registros de un tipo.
func (r *TransactionRepo) CountByKind(ctx context.Context, kind entity.TransactionKind) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE kind = $1`, string(kind)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// ListOpenCredits créditos con saldo pendiente.
func (r *TransactionRepo) ListOpenCredits(ctx context.Context) ([]*entity.Transaction, error) {
	return r.list(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE kind = $1 AND remaining_amount > 0
		ORDER BY created_at DESC`,
		string(entity.KindCredit),
	)
}

func (r *TransactionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Transaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// SequenceRepo consecutivos atómicos por tipo sobre la tabla transaction_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el consecutivo del tipo. El UPSERT bloquea la fila del contador
// hasta el fin de la tx, así que dos creaciones concurrentes nunca obtienen el mismo número.
func (r *SequenceRepo) Next(ctx context.Context, kind entity.TransactionKind) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO transaction_sequences (kind, last_value) VALUES ($1, 1)
		ON CONFLICT (kind) DO UPDATE SET last_value = transaction_sequences.last_value + 1
		RETURNING last_value`,
		string(kind),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return n, nil
}
