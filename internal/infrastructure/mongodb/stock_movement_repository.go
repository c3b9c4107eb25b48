package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/warehouse-api/internal/domain/entity"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

type movementDoc struct {
	ID              string    `bson:"_id"`
	TransactionID   string    `bson:"transaction_id"`
	TransactionKind string    `bson:"transaction_kind"`
	ProductID       string    `bson:"product_id"`
	ProductName     string    `bson:"product_name"`
	Delta           int64     `bson:"delta"`
	Reason          string    `bson:"reason"`
	CreatedAt       time.Time `bson:"created_at"`
	CreatedBy       string    `bson:"created_by"`
	Seq             int64     `bson:"seq"`
}

// StockMovementRepo implementación MongoDB de StockMovementRepository.
type StockMovementRepo struct {
	coll *mongo.Collection
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	doc := movementDoc{
		ID:              m.ID,
		TransactionID:   m.TransactionID,
		TransactionKind: string(m.TransactionKind),
		ProductID:       m.ProductID,
		ProductName:     m.ProductName,
		Delta:           m.Delta,
		Reason:          m.Reason,
		CreatedAt:       m.CreatedAt.UTC(),
		CreatedBy:       m.CreatedBy,
		Seq:             time.Now().UnixNano(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByProduct del más reciente al más antiguo.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"product_id": productID}, opts)
}

// ListByTransaction en orden de registro.
func (r *StockMovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	return r.find(ctx, bson.M{"transaction_id": transactionID}, opts)
}

func (r *StockMovementRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.StockMovement, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find stock movements: %w", err)
	}
	defer cur.Close(ctx)

	var docs []movementDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock movements: %w", err)
	}
	out := make([]*entity.StockMovement, 0, len(docs))
	for _, d := range docs {
		out = append(out, &entity.StockMovement{
			ID:              d.ID,
			TransactionID:   d.TransactionID,
			TransactionKind: entity.TransactionKind(d.TransactionKind),
			ProductID:       d.ProductID,
			ProductName:     d.ProductName,
			Delta:           d.Delta,
			Reason:          d.Reason,
			CreatedAt:       d.CreatedAt,
			CreatedBy:       d.CreatedBy,
		})
	}
	return out, nil
}
