package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var (
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
	_ repository.SequenceRepository    = (*SequenceRepo)(nil)
)

// ── Documentos ────────────────────────────────────────────────────────────────

type itemDoc struct {
	ProductID   string               `bson:"product_id"`
	ProductName string               `bson:"product_name"`
	Quantity    int64                `bson:"quantity"`
	Returned    int64                `bson:"returned"`
	UnitPrice   primitive.Decimal128 `bson:"unit_price"`
}

type paymentDoc struct {
	ID     string               `bson:"id"`
	Amount primitive.Decimal128 `bson:"amount"`
	Date   time.Time            `bson:"date"`
	Notes  string               `bson:"notes"`
}

type transactionDoc struct {
	ID               string               `bson:"_id"`
	Kind             string               `bson:"kind"`
	Number           string               `bson:"number"`
	CounterpartyName string               `bson:"counterparty_name"`
	Phone            string               `bson:"phone"`
	Date             time.Time            `bson:"date"`
	DueDate          *time.Time           `bson:"due_date,omitempty"`
	Notes            string               `bson:"notes"`
	Items            []itemDoc            `bson:"items"`
	TotalAmount      primitive.Decimal128 `bson:"total_amount"`
	PaidAmount       primitive.Decimal128 `bson:"paid_amount"`
	RemainingAmount  primitive.Decimal128 `bson:"remaining_amount"`
	Status           string               `bson:"status"`
	Payments         []paymentDoc         `bson:"payments"`
	CreatedBy        string               `bson:"created_by"`
	CreatedAt        time.Time            `bson:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at"`
}

func newTransactionDoc(tx *entity.Transaction) transactionDoc {
	items := make([]itemDoc, 0, len(tx.Items))
	for _, it := range tx.Items {
		items = append(items, itemDoc{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Returned:    it.Returned,
			UnitPrice:   toDecimal128(it.UnitPrice),
		})
	}
	payments := make([]paymentDoc, 0, len(tx.Payments))
	for _, p := range tx.Payments {
		payments = append(payments, paymentDoc{ID: p.ID, Amount: toDecimal128(p.Amount), Date: p.Date.UTC(), Notes: p.Notes})
	}
	return transactionDoc{
		ID:               tx.ID,
		Kind:             string(tx.Kind),
		Number:           tx.Number,
		CounterpartyName: tx.CounterpartyName,
		Phone:            tx.Phone,
		Date:             tx.Date.UTC(),
		DueDate:          tx.DueDate,
		Notes:            tx.Notes,
		Items:            items,
		TotalAmount:      toDecimal128(tx.TotalAmount),
		PaidAmount:       toDecimal128(tx.PaidAmount),
		RemainingAmount:  toDecimal128(tx.RemainingAmount),
		Status:           tx.Status,
		Payments:         payments,
		CreatedBy:        tx.CreatedBy,
		CreatedAt:        tx.CreatedAt.UTC(),
		UpdatedAt:        tx.UpdatedAt.UTC(),
	}
}

func (d transactionDoc) toEntity() (*entity.Transaction, error) {
	tx := &entity.Transaction{
		ID:               d.ID,
		Kind:             entity.TransactionKind(d.Kind),
		Number:           d.Number,
		CounterpartyName: d.CounterpartyName,
		Phone:            d.Phone,
		Date:             d.Date,
		DueDate:          d.DueDate,
		Notes:            d.Notes,
		Status:           d.Status,
		CreatedBy:        d.CreatedBy,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	var err error
	if tx.TotalAmount, err = fromDecimal128(d.TotalAmount); err != nil {
		return nil, err
	}
	if tx.PaidAmount, err = fromDecimal128(d.PaidAmount); err != nil {
		return nil, err
	}
	if tx.RemainingAmount, err = fromDecimal128(d.RemainingAmount); err != nil {
		return nil, err
	}
	tx.Items = make([]entity.LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		price, err := fromDecimal128(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		tx.Items = append(tx.Items, entity.LineItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Returned:    it.Returned,
			UnitPrice:   price,
		})
	}
	tx.Payments = make([]entity.Payment, 0, len(d.Payments))
	for _, p := range d.Payments {
		amount, err := fromDecimal128(p.Amount)
		if err != nil {
			return nil, err
		}
		tx.Payments = append(tx.Payments, entity.Payment{ID: p.ID, Amount: amount, Date: p.Date, Notes: p.Notes})
	}
	return tx, nil
}

// ── TransactionRepo ───────────────────────────────────────────────────────────

// TransactionRepo implementación MongoDB de TransactionRepository. Líneas y pagos
// viven embebidos en el documento.
type TransactionRepo struct {
	coll *mongo.Collection
}

func (r *TransactionRepo) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return decodeTransaction(r.coll.FindOne(ctx, bson.M{"_id": id}))
}

func (r *TransactionRepo) FindByIDForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeTransaction(r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, lockUpdate, opts))
}

func (r *TransactionRepo) Insert(ctx context.Context, tx *entity.Transaction) error {
	if _, err := r.coll.InsertOne(ctx, newTransactionDoc(tx)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Update reemplaza el documento completo conservando lock_seq.
func (r *TransactionRepo) Update(ctx context.Context, tx *entity.Transaction) error {
	doc := newTransactionDoc(tx)
	set := bson.M{
		"counterparty_name": doc.CounterpartyName,
		"phone":             doc.Phone,
		"date":              doc.Date,
		"notes":             doc.Notes,
		"items":             doc.Items,
		"total_amount":      doc.TotalAmount,
		"paid_amount":       doc.PaidAmount,
		"remaining_amount":  doc.RemainingAmount,
		"status":            doc.Status,
		"payments":          doc.Payments,
		"updated_at":        doc.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if doc.DueDate != nil {
		set["due_date"] = doc.DueDate
	} else {
		update["$unset"] = bson.M{"due_date": ""}
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": tx.ID}, update)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransactionRepo) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List del más reciente al más antiguo. limit 0 devuelve todos.
func (r *TransactionRepo) List(ctx context.Context, kind entity.TransactionKind, limit, offset int) ([]*entity.Transaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "number", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"kind": string(kind)}, opts)
}

func (r *TransactionRepo) CountByKind(ctx context.Context, kind entity.TransactionKind) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"kind": string(kind)})
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r *TransactionRepo) ListOpenCredits(ctx context.Context) ([]*entity.Transaction, error) {
	filter := bson.M{
		"kind":             string(entity.KindCredit),
		"remaining_amount": bson.M{"$gt": primitive.NewDecimal128(0, 0)},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
}

func (r *TransactionRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.Transaction, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	out := make([]*entity.Transaction, 0, len(docs))
	for _, d := range docs {
		tx, err := d.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func decodeTransaction(res *mongo.SingleResult) (*entity.Transaction, error) {
	var doc transactionDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return doc.toEntity()
}

// ── SequenceRepo ──────────────────────────────────────────────────────────────

// SequenceRepo un documento contador por tipo: {_id: kind, seq: n}.
type SequenceRepo struct {
	coll *mongo.Collection
}

// Next incrementa el contador con upsert. Dentro de una transacción el documento queda
// bloqueado hasta el commit, así dos altas concurrentes no reciben el mismo número.
func (r *SequenceRepo) Next(ctx context.Context, kind entity.TransactionKind) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out struct {
		Seq int64 `bson:"seq"`
	}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": string(kind)}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", kind, err)
	}
	return out.Seq, nil
}
