package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// LoggerConfig decides which requests are worth a log line.
type LoggerConfig struct {
	SlowThreshold    time.Duration
	ErrorStatusFloor int
}

var DefaultLoggerConfig = LoggerConfig{
	SlowThreshold:    500 * time.Millisecond,
	ErrorStatusFloor: 400,
}

// Logger logs only slow or failed requests; fast successful ones are
// dropped to keep the log readable.
func Logger(log zerolog.Logger, cfg LoggerConfig) fiber.Handler {
	log = log.With().Str("component", "http").Logger()
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		if status < cfg.ErrorStatusFloor && latency < cfg.SlowThreshold {
			return err
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= cfg.ErrorStatusFloor:
			ev = log.Warn()
		}
		ev.Int("status", status).
			Dur("latency", latency).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request")
		return err
	}
}
