package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/warehouse-api/internal/application/analytics"
	"github.com/jhoicas/warehouse-api/internal/application/ledger"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/internal/domain/repository"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/memory"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/metrics"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/mongodb"
	infrapdf "github.com/jhoicas/warehouse-api/internal/infrastructure/pdf"
	"github.com/jhoicas/warehouse-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/warehouse-api/internal/interfaces/http"
	"github.com/jhoicas/warehouse-api/pkg/config"
	"github.com/jhoicas/warehouse-api/pkg/logger"
)

// store agrupa los puertos de persistencia del driver elegido.
type store struct {
	txRunner     ledger.TxRunner
	products     repository.ProductRepository
	transactions repository.TransactionRepository
	movements    repository.StockMovementRepository
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store.Driver).Msg("conexión al almacenamiento")
	}
	defer st.close()

	m := metrics.New("warehouse")
	reconciler := ledger.NewReconciler(st.txRunner,
		ledger.WithMetrics(m),
		ledger.WithLogger(log.Component("ledger")),
	)

	productUC := usecase.NewProductUseCase(st.txRunner, st.products, st.movements)
	transactionUC := usecase.NewTransactionUseCase(reconciler, st.transactions)
	statementUC := usecase.NewStatementUseCase(st.transactions, infrapdf.NewMarotoPDFGenerator(cfg.App.Name))
	dashboardUC := appanalytics.NewDashboardUseCase(st.products, st.transactions, cfg.Inventory.LowStockThreshold)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http"), m))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    cfg.App.Name,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:     productUC,
		TransactionUC: transactionUC,
		StatementUC:   statementUC,
		DashboardUC:   dashboardUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStore conecta el backend indicado por STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		if cfg.DB.AutoMigrate {
			if err := migrateUp(cfg.DB.ConnectionString(), log); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return &store{
			txRunner:     postgres.NewTxRunner(pool),
			products:     postgres.NewProductRepository(pool),
			transactions: postgres.NewTransactionRepository(pool),
			movements:    postgres.NewStockMovementRepository(pool),
			close:        pool.Close,
		}, nil

	case config.StoreMongoDB:
		client, err := mongodb.NewClient(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return &store{
			txRunner:     client,
			products:     client.Products(),
			transactions: client.Transactions(),
			movements:    client.Movements(),
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Close(closeCtx); err != nil {
					log.Error().Err(err).Msg("cerrar cliente MongoDB")
				}
			},
		}, nil

	case config.StoreMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		mem := memory.NewStore()
		return &store{
			txRunner:     mem,
			products:     mem.Products(),
			transactions: mem.Transactions(),
			movements:    mem.Movements(),
			close:        func() {},
		}, nil
	}
	return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.Store.Driver)
}

func migrateUp(databaseURL string, log *logger.Logger) error {
	mg, err := postgres.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := mg.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()
	applied, err := mg.Up()
	if err != nil {
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	version, _, _ := mg.Version()
	log.Info().Bool("applied", applied).Uint("version", version).Msg("migraciones al día")
	return nil
}
