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

	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/application/rates"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// txRunner lo cumplen tanto postgres.TxRunner como memory.Store.
type txRunner interface {
	ledger.TxRunner
	orders.TxRunner
}

// backend almacén elegido por STORE_DRIVER.
type backend struct {
	tx    txRunner
	stock ledger.Store
	rates repository.CurrencyRateRepository
	close func()
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
	be := openBackend(ctx, cfg, log)
	defer be.close()

	// Caché Redis delante del proveedor de tasas (opcional)
	var (
		rateReader  orders.RateProvider = be.rates
		invalidator rates.Invalidator
	)
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr()).Msg("redis no disponible, tasas sin caché")
		} else {
			defer client.Close()
			rc := cache.NewRateCache(client, be.rates, cfg.Redis.RateTTL, log)
			rateReader, invalidator = rc, rc
		}
	}

	stockLedger := ledger.New(be.tx, be.stock, log)
	opts := orders.Options{
		Epsilon:      cfg.Ledger.Epsilon,
		BaseCurrency: cfg.Ledger.BaseCurrency,
		Logger:       log,
	}
	purchaseWF := orders.NewWorkflow(orders.Purchase, be.tx, stockLedger, orders.SimplePricing{}, opts)
	salesWF := orders.NewWorkflow(orders.Sales, be.tx, stockLedger, orders.SimplePricing{}, opts)
	b2bWF := orders.NewWorkflow(orders.SalesB2B, be.tx, stockLedger,
		orders.NewB2BPricing(rateReader, cfg.Ledger.BaseCurrency, log), opts)
	rateSvc := rates.New(be.rates, rateReader, invalidator, cfg.Ledger.BaseCurrency, log)

	// PDF: documento imprimible de las órdenes
	documentUC := orders.NewDocumentUseCase(infrapdf.NewMarotoPDFGenerator(cfg.App.Name))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.DocsPath); cfg.HTTP.DocsPath != "" && err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.DocsPath,
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    stockLedger,
		Purchase:  purchaseWF,
		Sales:     salesWF,
		SalesB2B:  b2bWF,
		Documents: documentUC,
		Rates:     rateSvc,
		JWTSecret: cfg.JWT.Secret,
		AppName:   cfg.App.Name,
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

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) backend {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return backend{tx: store, stock: store.Stock(), rates: store.Rates(), close: func() {}}
	}

	if cfg.DB.AutoMigrate {
		m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar migraciones")
		}
		if err := m.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	return backend{
		tx:    postgres.NewTxRunner(pool),
		stock: postgres.StockStore(pool),
		rates: postgres.NewCurrencyRateRepository(pool),
		close: pool.Close,
	}
}
