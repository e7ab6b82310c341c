package handlers

import (
	"context"
	"html"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"ukbol/internal/upstream"
)

// htmxError returns an error message as HTML that HTMX will display.
// Uses 200 status so HTMX processes the swap (HTMX ignores non-2xx by default).
func htmxError(c fiber.Ctx, message string) error {
	return c.SendString(
		`<div class="p-3 rounded-lg bg-red-50 dark:bg-red-900/30 text-red-700 dark:text-red-300 text-sm">` + html.EscapeString(message) + `</div>`,
	)
}

// upstreamContext returns the request context carrying the request id, so
// outbound calls can be correlated with the access log.
func upstreamContext(c fiber.Ctx) context.Context {
	ctx := c.Context()
	if id := requestid.FromContext(c); id != "" {
		ctx = upstream.WithRequestID(ctx, id)
	}
	return ctx
}
