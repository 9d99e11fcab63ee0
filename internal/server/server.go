package server

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/mioNacs/BLManagementSystem/internal/config"
	"github.com/mioNacs/BLManagementSystem/internal/middlewares"
)

// New assembles the Fiber application: CORS, request logging, the
// central error handler and the 404 fallback. Routes are registered by
// the caller.
func New(cfg *config.Config, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.App.ReadTimeout(),
		WriteTimeout: cfg.App.WriteTimeout(),
		IdleTimeout:  cfg.App.IdleTimeout(),
		ErrorHandler: errorHandler(cfg.IsProduction(), logger),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CORSOrigin,
		AllowCredentials: cfg.App.CORSOrigin != "" && cfg.App.CORSOrigin != "*",
	}))
	app.Use(middlewares.RequestLogger(logger.Sugar()))

	return app
}

// NotFoundFallback registers the catch-all for unmatched routes. Call
// after every real route is mounted.
func NotFoundFallback(app *fiber.App) {
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Route %s %s not found", c.Method(), c.Path()),
		})
	})
}

// errorHandler renders every error as {success:false, message}. Outside
// production the stack trace is included for uncaught 500s.
func errorHandler(production bool, logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := err.Error()

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		body := fiber.Map{
			"success": false,
			"message": message,
		}
		if code == fiber.StatusInternalServerError {
			logger.Error("unhandled error", zap.Error(err))
			if production {
				body["message"] = "internal server error"
			} else {
				body["stack"] = string(debug.Stack())
			}
		}
		return c.Status(code).JSON(body)
	}
}
