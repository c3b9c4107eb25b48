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

var _ repository.ProductRepository = (*ProductRepo)(nil)

type productDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Quantity    int64                `bson:"quantity"`
	Price       primitive.Decimal128 `bson:"price"`
	Version     int64                `bson:"version"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func newProductDoc(p *entity.Product) productDoc {
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Quantity:    p.Quantity,
		Price:       toDecimal128(p.Price),
		Version:     p.Version,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func (d productDoc) toEntity() (*entity.Product, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return nil, err
	}
	return &entity.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Quantity:    d.Quantity,
		Price:       price,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

// ProductRepo implementación MongoDB de ProductRepository.
type ProductRepo struct {
	coll *mongo.Collection
}

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if _, err := r.coll.InsertOne(ctx, newProductDoc(product)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.decodeOne(r.coll.FindOne(ctx, bson.M{"_id": id}))
}

func (r *ProductRepo) FindByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.decodeOne(r.coll.FindOne(ctx, bson.M{"name": name}))
}

// FindByNameForUpdate toca lock_seq para tomar el bloqueo de escritura del documento.
func (r *ProductRepo) FindByNameForUpdate(ctx context.Context, name string) (*entity.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return r.decodeOne(r.coll.FindOneAndUpdate(ctx, bson.M{"name": name}, lockUpdate, opts))
}

func (r *ProductRepo) SaveQuantity(ctx context.Context, id string, quantity int64) error {
	if quantity < 0 {
		return domain.InvalidInputf("stock negativo para el producto %s", id)
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"quantity": quantity, "updated_at": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return fmt.Errorf("save quantity: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Update actualiza nombre, descripción y precio. quantity y version no se tocan.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	update := bson.M{"$set": bson.M{
		"name":        product.Name,
		"description": product.Description,
		"price":       toDecimal128(product.Price),
		"updated_at":  product.UpdatedAt.UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDoc
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": product.ID}, update, opts).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrDuplicate
	case err != nil:
		return fmt.Errorf("update product: %w", err)
	}
	product.Quantity = doc.Quantity
	product.Version = doc.Version
	return nil
}

// List lista productos por nombre. limit 0 devuelve todos.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{}, opts)
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *ProductRepo) ListLowStock(ctx context.Context, threshold int64, limit int) ([]*entity.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "quantity", Value: 1}, {Key: "name", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"quantity": bson.M{"$lte": threshold}}, opts)
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) decodeOne(res *mongo.SingleResult) (*entity.Product, error) {
	var doc productDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return doc.toEntity()
}

func (r *ProductRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*entity.Product, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]*entity.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
