// Package mongodb implementa los puertos de persistencia sobre MongoDB. Las operaciones del
// conciliador corren en transacciones multi-documento, que requieren un replica set.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver"

	"github.com/jhoicas/warehouse-api/internal/application/ledger"
	"github.com/jhoicas/warehouse-api/internal/domain"
	"github.com/jhoicas/warehouse-api/pkg/config"
)

const (
	collProducts     = "products"
	collTransactions = "transactions"
	collCounters     = "counters"
	collMovements    = "stock_movements"

	codeWriteConflict = 112
)

var _ ledger.TxRunner = (*Client)(nil)

// Client envuelve el cliente Mongo con la base de datos del almacén.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewClient conecta, verifica con ping y crea los índices.
func NewClient(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(10 * time.Second).
		SetMaxPoolSize(100)
	if cfg.ReplicaSet != "" {
		opts.SetReplicaSet(cfg.ReplicaSet)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("conectar a MongoDB: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	c := &Client{client: client, database: client.Database(cfg.Database)}
	if err := c.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return c, nil
}

// Database devuelve el handle de la base de datos.
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Close desconecta el cliente.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// HealthCheck ping al primario.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes crea los índices únicos y de consulta. Es idempotente.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collProducts: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "quantity", Value: 1}}},
		},
		collTransactions: {
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collMovements: {
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "transaction_id", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := c.database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("crear índices de %s: %w", coll, err)
		}
	}
	return nil
}

// Run ejecuta fn dentro de una transacción con sesión. El driver reintenta fn ante errores
// transitorios (p. ej. WriteConflict cuando dos conciliaciones tocan el mismo producto); si el
// conflicto persiste se devuelve domain.ErrConcurrencyConflict.
func (c *Client) Run(ctx context.Context, fn func(ctx context.Context, repos ledger.Repos) error) error {
	session, err := c.client.StartSession()
	if err != nil {
		return fmt.Errorf("iniciar sesión: %w", err)
	}
	defer session.EndSession(ctx)

	repos := ledger.Repos{
		Products:     c.Products(),
		Transactions: c.Transactions(),
		Sequences:    c.Sequences(),
		Movements:    c.Movements(),
	}
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx, repos)
	})
	if err != nil && isConcurrencyFailure(err) {
		return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
	}
	return err
}

// Products repositorio de productos. Dentro de Run usa la sesión del ctx.
func (c *Client) Products() *ProductRepo {
	return &ProductRepo{coll: c.database.Collection(collProducts)}
}

// Transactions repositorio de pedidos y créditos.
func (c *Client) Transactions() *TransactionRepo {
	return &TransactionRepo{coll: c.database.Collection(collTransactions)}
}

// Sequences consecutivos por tipo.
func (c *Client) Sequences() *SequenceRepo {
	return &SequenceRepo{coll: c.database.Collection(collCounters)}
}

// Movements auditoría de stock.
func (c *Client) Movements() *StockMovementRepo {
	return &StockMovementRepo{coll: c.database.Collection(collMovements)}
}

func isConcurrencyFailure(err error) bool {
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) && labeled.HasErrorLabel(driver.TransientTransactionError) {
		return true
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeWriteConflict {
		return true
	}
	return false
}

// lockUpdate toca el documento dentro de la transacción para tomar su bloqueo de escritura:
// una segunda transacción que lo toque antes del commit recibe WriteConflict.
var lockUpdate = bson.M{"$inc": bson.M{"lock_seq": 1}}
