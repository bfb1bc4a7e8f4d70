// Package server assembles the Fiber application: middleware, routes and
// the fallback error handler.
package server

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"productapi/internal/handlers"
	"productapi/internal/metrics"
)

// MsgFallbackError is the body error for faults no handler mapped.
const MsgFallbackError = "Server error!"

// Options configures the application.
type Options struct {
	Logger           zerolog.Logger
	CORSAllowOrigins string
	// AccessLog receives one line per request. Nil disables access logs.
	AccessLog io.Writer
	// Metrics, when set, instruments every request and serves /metrics.
	Metrics *metrics.Metrics
}

// New builds the Fiber app with the product API mounted at /api/products.
func New(opts Options, products *handlers.ProductHandler, health *handlers.HealthHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "productapi",
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(opts.Logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if opts.CORSAllowOrigins != "" {
		app.Use(cors.New(cors.Config{AllowOrigins: opts.CORSAllowOrigins}))
	}
	if opts.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Output: opts.AccessLog,
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Middleware())
		app.Get("/metrics", opts.Metrics.Handler())
	}

	app.Get("/health", health.HandleHealth)

	api := app.Group("/api")
	products.RegisterRoutes(api)

	return app
}

// ErrorHandler is the fallback for errors returned by handlers and
// recovered panics. Fiber errors keep their status; anything else becomes a
// generic 500 envelope and is logged.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code != fiber.StatusInternalServerError {
			return handlers.RespondError(c, fe.Code, fe.Message)
		}

		log.Error().Err(err).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("unhandled error")
		return handlers.RespondError(c, fiber.StatusInternalServerError, MsgFallbackError)
	}
}
