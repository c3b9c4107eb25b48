package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/x/mongo/driver"

	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/internal/domain/entity"
)

func TestProductRepo_MockOps(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("lectura y no encontrado", func(mt *mtest.T) {
		coll := mt.DB.Collection(collProducts)
		repo := &ProductRepo{coll: coll}
		ns := coll.Database().Name() + "." + coll.Name()
		ctx := context.Background()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "p1"},
			{Key: "name", Value: "Cemento"},
			{Key: "quantity", Value: int64(40)},
			{Key: "price", Value: toDecimal128(decimalFromInt(32000))},
			{Key: "version", Value: int64(3)},
		}))
		p, err := repo.FindByName(ctx, "Cemento")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "p1", p.ID)
		assert.Equal(t, int64(40), p.Quantity)
		assert.Equal(t, "32000", p.Price.String())

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		missing, err := repo.GetByID(ctx, "nada")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	mt.Run("nombre duplicado", func(mt *mtest.T) {
		repo := &ProductRepo{coll: mt.DB.Collection(collProducts)}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		err := repo.Create(context.Background(), &entity.Product{ID: "p2", Name: "Cemento", CreatedAt: time.Now(), UpdatedAt: time.Now()})
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	mt.Run("save quantity sin documento", func(mt *mtest.T) {
		repo := &ProductRepo{coll: mt.DB.Collection(collProducts)}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.SaveQuantity(context.Background(), "nada", 5)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	mt.Run("save quantity negativo", func(mt *mtest.T) {
		repo := &ProductRepo{coll: mt.DB.Collection(collProducts)}
		err := repo.SaveQuantity(context.Background(), "p1", -1)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestTransactionRepo_MockOps(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("borrar inexistente", func(mt *mtest.T) {
		repo := &TransactionRepo{coll: mt.DB.Collection(collTransactions)}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeleteByID(context.Background(), "nada")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	mt.Run("lock de registro inexistente", func(mt *mtest.T) {
		repo := &TransactionRepo{coll: mt.DB.Collection(collTransactions)}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		tx, err := repo.FindByIDForUpdate(context.Background(), "nada")
		require.NoError(t, err)
		assert.Nil(t, tx)
	})

	mt.Run("consecutivo", func(mt *mtest.T) {
		repo := &SequenceRepo{coll: mt.DB.Collection(collCounters)}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: string(entity.KindCredit)},
			{Key: "seq", Value: int64(7)},
		}}))

		n, err := repo.Next(context.Background(), entity.KindCredit)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})
}

func TestTransactionDoc_ConservaLineasYPagos(t *testing.T) {
	due := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	in := &entity.Transaction{
		ID:      "t1",
		Kind:    entity.KindCredit,
		Number:  "004",
		Date:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		DueDate: &due,
		Items: []entity.LineItem{
			{ProductID: "p1", ProductName: "Cemento", Quantity: 10, UnitPrice: decimalFromInt(32000)},
		},
		TotalAmount:     decimalFromInt(320000),
		PaidAmount:      decimalFromInt(20000),
		RemainingAmount: decimalFromInt(300000),
		Status:          entity.CreditStatusActive,
		Payments:        []entity.Payment{{ID: "pay1", Amount: decimalFromInt(20000), Date: due, Notes: "pago inicial"}},
	}

	out, err := newTransactionDoc(in).toEntity()

	require.NoError(t, err)
	assert.Equal(t, in.Items[0].ProductName, out.Items[0].ProductName)
	assert.True(t, out.Items[0].UnitPrice.Equal(in.Items[0].UnitPrice))
	assert.True(t, out.RemainingAmount.Equal(in.RemainingAmount))
	require.Len(t, out.Payments, 1)
	assert.Equal(t, "pago inicial", out.Payments[0].Notes)
	assert.Equal(t, due, *out.DueDate)
}

func TestIsConcurrencyFailure(t *testing.T) {
	assert.True(t, isConcurrencyFailure(mongo.CommandError{Code: codeWriteConflict, Name: "WriteConflict"}))
	assert.True(t, isConcurrencyFailure(mongo.CommandError{Code: 251, Labels: []string{driver.TransientTransactionError}}))
	assert.False(t, isConcurrencyFailure(mongo.CommandError{Code: 2, Name: "BadValue"}))
	assert.False(t, isConcurrencyFailure(domain.ErrNotFound))
}
