package main // Entry point package

import (
	"context" // request-scoped contexts for startup work
	"log"     // Logging library

	"github.com/joho/godotenv"    // loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/qr-table-ordering/internal/config"
	"github.com/iliyamo/qr-table-ordering/internal/database"
	"github.com/iliyamo/qr-table-ordering/internal/fanout"
	"github.com/iliyamo/qr-table-ordering/internal/handler"
	"github.com/iliyamo/qr-table-ordering/internal/middleware"
	"github.com/iliyamo/qr-table-ordering/internal/payment"
	"github.com/iliyamo/qr-table-ordering/internal/queue"
	"github.com/iliyamo/qr-table-ordering/internal/repository"
	"github.com/iliyamo/qr-table-ordering/internal/router"
	"github.com/iliyamo/qr-table-ordering/internal/service"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis powers the menu response cache and the public rate limiter.
	// Both fail open when Redis is unavailable.
	rdb := config.NewRedisClient()
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	categories := repository.NewCategoryRepo(db)
	items := repository.NewMenuItemRepo(db)
	tables := repository.NewTableRepo(db)
	orders := repository.NewOrderRepo(db)

	builder := service.NewOrderBuilder(tables, items, orders)
	provider := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	reconciler := service.NewReconciler(orders)
	hub := fanout.NewHub()

	// Kitchen-ticket consumer; reconnects on its own when the broker drops.
	go queue.StartOrderConsumer()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	router.RegisterPublic(e, router.PublicHandlers{
		Menu:     handler.NewMenuHandler(tables, categories, items),
		Checkout: handler.NewCheckoutHandler(builder, orders, provider, hub, cfg.FrontendURL),
		Orders:   handler.NewOrderHandler(orders),
		Webhook:  handler.NewWebhookHandler(provider, reconciler, hub),
		WS:       handler.NewWSHandler(hub, cfg.JWTSecret),
	}, cacheMW, rateMW)

	router.RegisterAdmin(e, router.AdminHandlers{
		Auth:    handler.NewAuthHandler(cfg),
		Catalog: handler.NewAdminCatalogHandler(categories, items),
		Tables:  handler.NewAdminTableHandler(tables, cfg.FrontendURL),
		Orders:  handler.NewAdminOrderHandler(orders, hub),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
