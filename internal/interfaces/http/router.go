package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Units            *inventory.UnitService
	Ledger           *inventory.BatchLedger
	Allocator        *inventory.FefoAllocator
	Recorder         *inventory.AdjustmentRecorder
	Projector        *inventory.AggregateProjector
	Report           *inventory.ExpiryReport
	ExpiringSoonDays int
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	admins := RequireRole(jwt.RoleAdmin)

	unitHandler := NewUnitHandler(deps.Units)
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Allocator, deps.Recorder, deps.Report, deps.ExpiringSoonDays)
	aggregateHandler := NewAggregateHandler(deps.Projector)

	// Unidades
	units := protected.Group("/units")
	units.Get("/", unitHandler.List)
	units.Get("/convert", unitHandler.Convert)
	units.Post("/", admins, unitHandler.Create)
	units.Delete("/:id", admins, unitHandler.Delete)

	// Lotes, consumos y ajustes
	protected.Post("/batches", writers, inventoryHandler.ReceiveBatch)
	protected.Delete("/batches/:id", writers, inventoryHandler.DeleteBatch)
	protected.Post("/depletions", writers, inventoryHandler.Deplete)
	protected.Post("/adjustments", writers, inventoryHandler.Adjust)

	// Consultas por producto
	products := protected.Group("/products/:productId")
	products.Get("/units", unitHandler.ListForProduct)
	products.Get("/batches", inventoryHandler.ListBatches)
	products.Get("/expiry", inventoryHandler.ExpiryReport)
	products.Get("/units/:unitId/adjustments", inventoryHandler.ListAdjustments)
	products.Get("/units/:unitId/aggregate", aggregateHandler.Get)
	products.Put("/units/:unitId/aggregate/threshold", writers, aggregateHandler.SetThreshold)
	products.Post("/units/:unitId/aggregate/reconcile", writers, aggregateHandler.Reconcile)

	// Agregados
	aggregates := protected.Group("/aggregates")
	aggregates.Get("/low-stock", aggregateHandler.ListLowStock)
	aggregates.Post("/reconcile", writers, aggregateHandler.ReconcileAll)
}
