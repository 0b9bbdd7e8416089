package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-lotes/internal/interfaces/http"
	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic("configuración inválida: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	settings := inventory.DefaultSettings()
	settings.StrictBatchDeletion = cfg.Inventory.StrictBatchDeletion
	settings.ExpiringSoonDays = cfg.Inventory.ExpiringSoonDays
	settings.DefaultLowStockThreshold = cfg.Inventory.DefaultLowStockThreshold
	settings.DefaultAlertEnabled = cfg.Inventory.DefaultAlertEnabled
	settings.AggregateCacheTTL = cfg.Redis.AggregateTTL

	// Persistencia: PostgreSQL en despliegues, memoria para demos y desarrollo local.
	var (
		txRunner inventory.TxRunner
		repos    inventory.TxRepos
	)
	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := memory.NewSeeded(memory.DefaultUnits())
		txRunner = store
		repos = inventory.TxRepos{
			Units:       store.Units(),
			Batches:     store.Batches(),
			Aggregates:  store.Aggregates(),
			Adjustments: store.Adjustments(),
		}
		log.Warn().Msg("usando almacenamiento en memoria; los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool, cfg.DB.LockTimeout)
		repos = postgres.Repos(pool)
	}

	var aggCache inventory.AggregateCache = cache.NoopAggregateCache{}
	if cfg.Redis.Enabled() {
		rc := cache.NewRedisAggregateCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché de agregados deshabilitada")
			_ = rc.Close()
		} else {
			defer rc.Close()
			aggCache = rc
		}
	}

	unitSvc := inventory.NewUnitService(txRunner, repos.Units, repos.Batches, repos.Aggregates, settings, log.Component("units"))
	projector := inventory.NewAggregateProjector(txRunner, repos.Aggregates, aggCache, settings, log.Component("aggregates"))
	ledger := inventory.NewBatchLedger(txRunner, unitSvc, repos.Batches, projector, settings, log.Component("batch_ledger"))
	allocator := inventory.NewFefoAllocator(txRunner, unitSvc, projector, log.Component("fefo"))
	recorder := inventory.NewAdjustmentRecorder(txRunner, allocator, repos.Adjustments, settings, log.Component("adjustments"))
	report := inventory.NewExpiryReport(ledger, settings)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario por lotes API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Units:            unitSvc,
		Ledger:           ledger,
		Allocator:        allocator,
		Recorder:         recorder,
		Projector:        projector,
		Report:           report,
		ExpiringSoonDays: settings.ExpiringSoonDays,
		JWTSecret:        cfg.JWT.Secret,
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
