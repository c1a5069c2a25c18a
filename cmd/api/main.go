package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Almacen-api/internal/application/auth"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/importer"
	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/application/query"
	"github.com/jhoicas/Almacen-api/internal/application/stats"
	"github.com/jhoicas/Almacen-api/internal/application/usecase"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/cache"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Almacen-api/internal/interfaces/http"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if err := postgres.RunMigrations(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones de base de datos")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	itemRepo := postgres.NewItemRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Caché Redis para agregados de estadísticas. Opcional: sin REDIS_ADDR
	// los agregados se calculan siempre contra PostgreSQL.
	var statsCache stats.AggregateCache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, caché de estadísticas deshabilitada")
		} else {
			statsCache = cache.NewStatsCache(client, time.Duration(cfg.Redis.TTLSeconds)*time.Second, log)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de estadísticas habilitada")
		}
	}

	engine := inventory.NewMovementUseCase(txRunner, storeRepo, categoryRepo)
	queries := query.NewQueryUseCase(itemRepo, historyRepo, storeRepo, categoryRepo)
	statsUC := stats.NewStatsUseCase(historyRepo, itemRepo, statsCache)
	storeUC := usecase.NewStoreUseCase(txRunner, storeRepo, itemRepo)
	categoryUC := usecase.NewCategoryUseCase(txRunner, categoryRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	importerUC := importer.NewImporterUseCase(engine, categoryUC)

	bootstrapAdmin(cfg.App, authUC, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:      engine,
		Queries:     queries,
		Stats:       statsUC,
		StoreUC:     storeUC,
		CategoryUC:  categoryUC,
		AuthUC:      authUC,
		Importer:    importerUC,
		HistoryRepo: historyRepo,
		JWTSecret:   cfg.JWT.Secret,
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

// bootstrapAdmin crea el primer usuario admin a partir de ADMIN_EMAIL y
// ADMIN_PASSWORD. El registro por API exige un token de admin, así que sin
// este arranque inicial no habría forma de entrar a una instalación nueva.
func bootstrapAdmin(appCfg config.AppConfig, authUC *auth.AuthUseCase, log *logger.Logger) {
	if appCfg.AdminEmail == "" || appCfg.AdminPassword == "" {
		return
	}
	_, err := authUC.RegisterUser(dto.RegisterRequest{
		Email:    appCfg.AdminEmail,
		Password: appCfg.AdminPassword,
		Role:     entity.RoleAdmin,
	})
	switch {
	case err == nil:
		log.Info().Str("email", appCfg.AdminEmail).Msg("usuario admin inicial creado")
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		// Ya existe de un arranque anterior.
	default:
		log.Fatal().Err(err).Msg("crear usuario admin inicial")
	}
}
