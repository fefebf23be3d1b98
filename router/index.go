package router

import (
	"time"

	"canteen_manager/config"
	"canteen_manager/handler"
	"canteen_manager/metrics"
	"canteen_manager/middleware"
	"canteen_manager/payment"
	"canteen_manager/utils"
	"canteen_manager/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// New builds the fiber app with the global middleware stack and every route.
func New(cfg *config.Configuration) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return utils.ErrorResponse(c, e.Code, e.Message, err)
			}
			return utils.HandleError(c, err)
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Origins(),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Authorization, Accept",
		MaxAge:       600,
	}))
	app.Use(metrics.Middleware())
	app.Use(middleware.RequestLogger())

	SetupRoutes(app, cfg)
	return app
}

func SetupRoutes(app *fiber.App, cfg *config.Configuration) {
	secret := []byte(cfg.JwtSecret)
	protected := middleware.Protected(secret)
	admin := middleware.AdminOnly()
	student := middleware.StudentOnly()

	loginLimit := limiter.New(limiter.Config{
		Max:        cfg.LoginRateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests, "Too many attempts. Try again later.", nil)
		},
	})

	app.Get("/health", handler.Health)
	app.Get("/metrics", metrics.Handler())

	app.Post("/register", validate.Register(), handler.Register)
	app.Post("/login", loginLimit, validate.Login(), handler.Login)
	app.Post("/owner-login", loginLimit, validate.OwnerLogin(), handler.OwnerLogin)
	app.Get("/me", protected, handler.Me)

	app.Get("/menu", handler.GetMenu)
	app.Post("/menu", protected, admin, validate.CreateMenuItem(), handler.CreateMenuItem)
	app.Put("/menu/:id/stock", protected, admin, validate.UpdateStock("id"), handler.UpdateStock)
	app.Delete("/menu/:id", protected, admin, validate.GetById("id"), handler.DeleteMenuItem)

	app.Post("/create-payment-order", protected, student, validate.CreatePayment(), handler.CreatePaymentOrder)
	app.Post("/verify-payment", protected, student, validate.VerifyPayment(), handler.VerifyPayment)
	if _, fake := handler.PaymentGateway.(*payment.Fake); fake && !cfg.IsProduction() {
		app.Post("/dev/payments/:orderId/settle", protected, student, handler.SettleFakePayment)
	}

	app.Get("/my-orders", protected, student, handler.GetMyOrders)
	app.Get("/my-orders/:id/receipt", protected, validate.GetById("id"), handler.GetOrderReceipt)

	adminGroup := app.Group("/admin", protected, admin)
	adminGroup.Get("/orders", validate.OrderStatusFilter(), handler.GetAdminOrders)
	adminGroup.Put("/orders/:id/status", validate.UpdateOrderStatus("id"), handler.UpdateOrderStatus)
	adminGroup.Get("/revenue", handler.GetRevenue)

	app.Get("/public/now-serving", handler.NowServing)
}
