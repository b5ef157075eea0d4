package main

import (
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/clorindastore/storefront-backend/internal/address"
	"github.com/clorindastore/storefront-backend/internal/auth"
	"github.com/clorindastore/storefront-backend/internal/cart"
	"github.com/clorindastore/storefront-backend/internal/catalog"
	"github.com/clorindastore/storefront-backend/internal/checkout"
	"github.com/clorindastore/storefront-backend/internal/config"
	"github.com/clorindastore/storefront-backend/internal/database"
	"github.com/clorindastore/storefront-backend/internal/events"
	"github.com/clorindastore/storefront-backend/internal/logging"
	"github.com/clorindastore/storefront-backend/internal/mailer"
	"github.com/clorindastore/storefront-backend/internal/metrics"
	"github.com/clorindastore/storefront-backend/internal/order"
	"github.com/clorindastore/storefront-backend/internal/payment"
	"github.com/clorindastore/storefront-backend/internal/shipping"
)

// guardTTL bounds how long a double-clicked checkout stays blocked.
const guardTTL = 10 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}
	defer db.Close()
	if err := database.EnsureSchema(db); err != nil {
		panic(err)
	}
	txRunner := database.NewRunner(db)

	app := fiber.New()
	setupCORS(app, cfg.FrontendURL)
	app.Use(requestLog)

	// repositories
	cartRepo := cart.NewPostgresRepository(db)
	addressRepo := address.NewPostgresRepository(db)
	catalogRepo := catalog.NewPostgresRepository(db)
	orderRepo := order.NewPostgresRepository(db)

	// domain services
	cartService := cart.NewService(cartRepo, catalogRepo)
	addressService := address.NewService(addressRepo)
	shippingClient := shipping.NewHTTPClient(cfg.Shipping.BaseURL, cfg.Shipping.APIKey, cfg.Shipping.OriginID)
	orderService := order.NewService(orderRepo)

	var guard checkout.Guard = checkout.NopGuard{}
	if cfg.RedisAddr != "" {
		guard = checkout.NewRedisGuard(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), guardTTL)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()
	var eventSink checkout.EventSink
	var paidSink payment.EventSink
	if publisher.Enabled() {
		eventSink = publisher
		paidSink = publisher
	}

	var paidMailer payment.Mailer
	if cfg.SMTP.Host != "" {
		paidMailer = mailer.NewSMTPSender(db, cfg.SMTP.Host, cfg.SMTP.Port,
			cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.FromName, cfg.SMTP.FromEmail)
	}

	checkoutService := checkout.NewService(txRunner, cartRepo, addressService,
		shippingClient, catalogRepo, orderRepo, guard, eventSink)

	gateway := payment.NewMidtransGateway(cfg.Midtrans.ServerKey, cfg.Midtrans.Production)
	paymentService := payment.NewService(txRunner, orderRepo, cartRepo, catalogRepo,
		gateway, paidSink, paidMailer, cfg.Midtrans.ServerKey, cfg.FrontendURL+"/orders")

	paymentHandler := payment.NewHandler(paymentService)

	// public surface: the webhook authenticates by signature, not JWT
	paymentHandler.RegisterPublicRoutes(app)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	app.Use(auth.Middleware(cfg.JWTSecret))

	cart.NewHandler(cartService).RegisterProtectedRoutes(app)
	checkout.NewHandler(checkoutService).RegisterProtectedRoutes(app)
	paymentHandler.RegisterProtectedRoutes(app)
	order.NewHandler(orderService).RegisterProtectedRoutes(app)

	admin := app.Group("/api/v1/admin", auth.RequireAdmin)
	order.NewAdminHandler(orderService).RegisterRoutes(admin)

	logging.Log(logging.Event{Event: "server.starting", Message: cfg.Addr})
	if err := app.Listen(cfg.Addr); err != nil {
		panic(err)
	}
}

func setupCORS(app *fiber.App, frontendURL string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: frontendURL,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	logging.Log(logging.Event{
		Event:   "http.request",
		Message: c.Method() + " " + c.Path(),
		Outcome: time.Since(start).String(),
	})
	return err
}
