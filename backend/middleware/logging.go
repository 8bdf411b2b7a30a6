package middleware

import (
	"time"

	"github.com/kassslll/philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

func LoggingMiddleware(logger *utils.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		err := c.Next()
		if err != nil {
			// Let fiber's error handler pick the status before we log it.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		kv := []interface{}{
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start).String(),
			"ip", c.IP(),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("Request failed", kv...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("Request rejected", kv...)
		default:
			logger.Info("Request handled", kv...)
		}
		return nil
	}
}
