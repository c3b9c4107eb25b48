package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID encabezado de correlación por petición.
const HeaderRequestID = "X-Request-ID"

// LocalError error original que un handler respondió sin exponerlo al cliente.
const LocalError = "handler_error"

// HTTPRecorder lo implementa *metrics.Metrics.
type HTTPRecorder interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
}

// RequestLogger asigna X-Request-ID (respeta el del cliente), registra método, ruta,
// estado y latencia, y alimenta las métricas HTTP con el patrón de ruta (no la URL cruda).
func RequestLogger(log zerolog.Logger, rec HTTPRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		logged := err
		if local, ok := c.Locals(LocalError).(error); ok && logged == nil {
			logged = local
		}
		latency := time.Since(start)
		route := c.Route().Path

		evt := log.Info()
		switch {
		case status >= 500:
			evt = log.Error().Err(logged)
		case status >= 400:
			evt = log.Warn()
			if logged != nil {
				evt = evt.Err(logged)
			}
		}
		evt.Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", latency).
			Msg("petición http")

		if rec != nil {
			rec.RecordHTTPRequest(c.Method(), route, status, latency)
		}
		return err
	}
}
