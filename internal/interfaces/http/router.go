package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/warehouse-api/internal/application/analytics"
	"github.com/jhoicas/warehouse-api/internal/application/usecase"
	"github.com/jhoicas/warehouse-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	TransactionUC *usecase.TransactionUseCase
	StatementUC   *usecase.StatementUseCase
	DashboardUC   *appanalytics.DashboardUseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", RequireRole(jwt.RoleAdmin), productHandler.Delete)
	products.Get("/:id/movements", productHandler.Movements)

	// Orders
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.TransactionUC, deps.StatementUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.Update)
	orders.Delete("/:id", orderHandler.Delete)
	orders.Get("/:id/statement", orderHandler.Statement)

	// Credits
	credits := api.Group("/credits")
	creditHandler := NewCreditHandler(deps.TransactionUC, deps.StatementUC)
	credits.Post("/", creditHandler.Create)
	credits.Get("/", creditHandler.List)
	credits.Get("/:id", creditHandler.GetByID)
	credits.Put("/:id", creditHandler.Update)
	credits.Delete("/:id", creditHandler.Delete)
	credits.Post("/:id/payment", creditHandler.AddPayment)
	credits.Get("/:id/statement", creditHandler.Statement)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	api.Get("/dashboard", dashboardHandler.GetSummary)
}
