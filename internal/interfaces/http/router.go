package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/importer"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/application/query"
	"github.com/jhoicas/Almacen-api/internal/application/stats"
	"github.com/jhoicas/Almacen-api/internal/application/usecase"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine      *inventory.MovementUseCase
	Queries     *query.QueryUseCase
	Stats       *stats.StatsUseCase
	StoreUC     *usecase.StoreUseCase
	CategoryUC  *usecase.CategoryUseCase
	AuthUC      *auth.AuthUseCase
	Importer    *importer.ImporterUseCase
	HistoryRepo repository.HistoryRepository
	JWTSecret   string
}

// Router registra las rutas de la API. Login es público; todo lo demás exige
// Bearer Token, y las operaciones destructivas o de administración exigen
// además rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", AuthMiddleware(deps.JWTSecret), adminOnly, authHandler.Register)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Items e inventario
	itemHandler := NewItemHandler(deps.Engine, deps.Queries, deps.CategoryUC)
	protected.Get("/items", itemHandler.List)
	protected.Post("/items/:name/transfer", itemHandler.Transfer)

	storeItems := protected.Group("/stores/:store/items")
	storeItems.Get("/:name", itemHandler.Get)
	storeItems.Put("/:name", itemHandler.Set)
	storeItems.Delete("/:name", itemHandler.Delete)
	storeItems.Post("/:name/in", itemHandler.StockIn)
	storeItems.Post("/:name/out", itemHandler.StockOut)
	storeItems.Post("/:name/adjust", itemHandler.Adjust)

	// Almacenes
	storeHandler := NewStoreHandler(deps.StoreUC)
	stores := protected.Group("/stores")
	stores.Get("/", storeHandler.List)
	stores.Post("/", storeHandler.Create)
	stores.Get("/:id", storeHandler.Get)
	stores.Delete("/:id", adminOnly, storeHandler.Delete)

	// Categorías
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories := protected.Group("/categories")
	categories.Get("/", categoryHandler.List)
	categories.Post("/", categoryHandler.Create)
	categories.Delete("/:id", adminOnly, categoryHandler.Delete)

	// Historial y estadísticas
	historyHandler := NewHistoryHandler(deps.Queries, deps.Stats, deps.HistoryRepo)
	protected.Get("/history", historyHandler.List)
	protected.Get("/history/aggregate", historyHandler.Aggregate)
	protected.Delete("/history", adminOnly, historyHandler.Clear)
	protected.Get("/stats/consumption", historyHandler.Consumption)

	// Export / import
	exportHandler := NewExportHandler(deps.Queries, deps.Importer)
	exportGroup := protected.Group("/export")
	exportGroup.Get("/xlsx", exportHandler.ExportXLSX)
	exportGroup.Get("/csv", exportHandler.ExportCSV)
	exportGroup.Get("/pdf", exportHandler.ExportPDF)
	protected.Post("/import", exportHandler.ImportJSON)
	protected.Post("/import/xlsx", exportHandler.ImportXLSX)
}
