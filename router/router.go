package router

import (
	"backoffice/handler"
	"backoffice/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.elastic.co/apm/module/apmfiber"
)

type Handlers struct {
	Collect   *handler.CollectHandler
	Health    *handler.HealthHandler
	JWTSecret string
}

// SetupRoutes setup router api
func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", logger.New())
	api.Use(apmfiber.Middleware())
	api.Use(middleware.TrackMetrics())
	api.Get("/health", h.Health.Health)

	secured := api.Group("", middleware.Protected(h.JWTSecret))
	secured.Post("/collect", middleware.RBACMiddleware("collect"), h.Collect.CollectPayment)
	secured.Post("/links", middleware.RBACMiddleware("create_links"), h.Collect.CreateLink)

	customers := secured.Group("/customers/:customerId")
	customers.Get("/cards", middleware.RBACMiddleware("read_cards"), h.Collect.ListCards)
	customers.Delete("/cards/:ctoken", middleware.RBACMiddleware("delete_cards"), h.Collect.DeleteCard)
}
