package handlers

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/a2n2k3p4/topup-gateway/docs"
	"github.com/a2n2k3p4/topup-gateway/observability"
)

const (
	CorrelationIDHeader = "Correlation-ID"
	correlationIDLocal  = "correlation_id"
)

// NewApp wires middleware and routes around the given reseller.
func NewApp(charger Charger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "topup-gateway",
		ErrorHandler:          ErrorHandler,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
		BodyLimit:             16 * 1024,
	})

	app.Use(requestid.New(requestid.Config{
		Header:     CorrelationIDHeader,
		Generator:  shortuuid.New,
		ContextKey: correlationIDLocal,
	}))
	app.Use(RequestLogger())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET, POST, OPTIONS",
		AllowHeaders: "Content-Type, " + CorrelationIDHeader,
	}))

	chargeHandler := NewChargeHandler(charger)

	app.Get("/health", chargeHandler.Health)
	app.Post("/charge", chargeHandler.CreateCharge)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	docs.Register(app)

	return app
}

// RequestLogger puts a correlated logrus entry on the request context and
// logs one line per request once the status is known.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		id, _ := c.Locals(correlationIDLocal).(string)
		entry := logrus.WithField("correlation_id", id)

		ctx := observability.LoggerToContext(c.UserContext(), entry)
		ctx = observability.ContextWithCorrelationID(ctx, id)
		c.SetUserContext(ctx)

		if err := c.Next(); err != nil {
			if err := c.App().ErrorHandler(c, err); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		entry.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start).String(),
		}).Info("HTTP request")

		return nil
	}
}
