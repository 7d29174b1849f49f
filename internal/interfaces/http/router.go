package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/application/rates"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *ledger.Ledger
	Purchase  *orders.Workflow
	Sales     *orders.Workflow
	SalesB2B  *orders.Workflow
	Documents *orders.DocumentUseCase
	Rates     *rates.Service
	JWTSecret string
	AppName   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Libro de inventario
	stock := protected.Group("/stock")
	inv := NewInventoryHandler(deps.Ledger)
	stockWriters := RequireRole(RoleAdmin, RoleBodeguero)
	stock.Post("/receive", stockWriters, inv.Receive)
	stock.Post("/issue", stockWriters, inv.Issue)
	stock.Post("/adjust", RequireRole(RoleAdmin), inv.Adjust)
	stock.Post("/transfer", stockWriters, inv.Transfer)
	stock.Get("/levels", inv.GetSummary)
	stock.Get("/levels/:product_id/:warehouse_id", inv.GetLevel)
	stock.Get("/moves", inv.ListMoves)
	stock.Get("/audit", RequireRole(RoleAdmin), inv.Audit)

	// Órdenes: misma forma de rutas para las tres familias
	registerOrders(protected.Group("/purchase-orders"), NewOrderHandler(deps.Purchase, deps.Documents),
		"/receive", []string{RoleAdmin, RoleComprador}, []string{RoleAdmin, RoleComprador, RoleBodeguero})
	registerOrders(protected.Group("/sales-orders"), NewOrderHandler(deps.Sales, deps.Documents),
		"/deliver", []string{RoleAdmin, RoleVendedor}, []string{RoleAdmin, RoleVendedor, RoleBodeguero})

	b2b := protected.Group("/b2b-sales-orders")
	b2bHandler := NewOrderHandler(deps.SalesB2B, deps.Documents)
	registerOrders(b2b, b2bHandler,
		"/deliver", []string{RoleAdmin, RoleVendedor}, []string{RoleAdmin, RoleVendedor, RoleBodeguero})
	b2b.Put("/:id", RequireRole(RoleAdmin, RoleVendedor), b2bHandler.Update)

	// Tasas de cambio para las órdenes B2B
	fx := protected.Group("/currency-rates")
	rateHandler := NewRateHandler(deps.Rates)
	fx.Post("/", RequireRole(RoleAdmin), rateHandler.Register)
	fx.Get("/:currency", rateHandler.Latest)
}

// registerOrders rutas comunes de una familia. writers crean, confirman y cancelan;
// fulfillers registran la recepción o entrega.
func registerOrders(g fiber.Router, h *OrderHandler, fulfillPath string, writers, fulfillers []string) {
	canWrite := RequireRole(writers...)
	g.Post("/", canWrite, h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Get("/:id/pdf", h.Document)
	g.Post("/:id/confirm", canWrite, h.Confirm)
	g.Post("/:id/cancel", canWrite, h.Cancel)
	g.Post("/:id"+fulfillPath, RequireRole(fulfillers...), h.Fulfill)
}
