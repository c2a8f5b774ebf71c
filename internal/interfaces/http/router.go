package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/lots"
	"github.com/jhoicas/Inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/Inventario-lotes/pkg/jwt"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orchestrator *lots.Orchestrator
	Allocator    *lots.Allocator
	Status       *lots.StatusUseCase
	Queries      *lots.QueryUseCase
	Reconcile    *lots.ReconcileUseCase
	ProductUC    *usecase.ProductUseCase
	JWTSecret    string
	JWTIssuer    string
	Logger       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Validación de seriales (público)
	serialHandler := NewSerialHandler(deps.Queries, deps.Logger)
	api.Get("/public/serials/:serial/validate", serialHandler.Validate)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	lotHandler := NewLotHandler(deps.Orchestrator, deps.Allocator, deps.Status, deps.Queries, deps.Logger)
	inventoryHandler := NewInventoryHandler(deps.Orchestrator, deps.Reconcile, deps.Logger)

	// Ventas: generación de lotes
	sales := protected.Group("/sales")
	sales.Post("/:id/lots", RequireRole(jwt.RoleAdmin, jwt.RoleVendedor), lotHandler.GenerateForSale)
	sales.Get("/:id/lots", lotHandler.ListForSale)

	// Lotes
	lotsGroup := protected.Group("/lots")
	lotsGroup.Get("/", lotHandler.List)
	lotsGroup.Post("/allocations", lotHandler.PreviewAllocation)
	lotsGroup.Get("/:id/serials", lotHandler.Serials)
	lotsGroup.Patch("/:id/status", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), lotHandler.UpdateStatus)
	lotsGroup.Post("/:id/materialize", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), lotHandler.ResumeMaterialization)

	// Inventario
	invGroup := protected.Group("/inventory")
	invGroup.Post("/entries", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), inventoryHandler.RegisterEntry)
	invGroup.Post("/reconcile", RequireRole(jwt.RoleAdmin), inventoryHandler.Reconcile)

	// Productos y kardex
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Logger)
	products.Post("/", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/movements", lotHandler.Movements)
}
