package middlewares

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger emits one line per request. When a handler returns an
// error the response is not rendered yet, so the status is taken from
// the fiber.Error itself; unhandled errors count as 500 and are logged
// in full by the app error handler, not here.
func RequestLogger(logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"ip", c.IP(),
			"status", status,
			"latency", time.Since(start),
		}
		if err != nil {
			fields = append(fields, "error", err.Error())
		}
		logger.Infow("HTTP request", fields...)
		return err
	}
}
