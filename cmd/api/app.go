package main

import (
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"creditdoc/docs"
	handlers "creditdoc/internal/http/handler"
	"creditdoc/internal/http/middleware"
	"creditdoc/internal/service"
)

// newApp builds the Fiber app with the shared middleware chain, /metrics and /swagger.
// swaggerHost is written into the OpenAPI document once; an empty host lets the UI use the
// address it was loaded from.
func newApp(log *zap.Logger, prom *middleware.PrometheusMiddleware, swaggerHost string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             service.MaxTemplateSize + 1<<20,
		DisableStartupMessage: true,
	})

	// otelfiber runs first so RequestID can tag the server span.
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(prom.Handler())
	app.Use(middleware.Logger(log))
	app.Use(recover.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	docs.SwaggerInfo.Host = swaggerHost
	app.Get("/swagger/*", swagger.HandlerDefault)

	return app
}
