package middleware

import (
	"fmt"

	"xhubsell/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware starts a server span per request and exposes its trace id
// to handlers (locals "traceID") and clients (X-Trace-ID header).
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		headers := propagation.HeaderCarrier{}
		for k, v := range c.GetReqHeaders() {
			headers[k] = v
		}
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), headers)

		ctx, span := observability.Tracer.Start(ctx, fmt.Sprintf("%s %s", c.Method(), c.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
				attribute.String("http.ip", c.IP()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		if rid, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Response().StatusCode()))
		if err != nil {
			span.RecordError(err)
		}
		if uid, ok := CurrentUserID(c); ok {
			span.SetAttributes(attribute.Int64("user.id", int64(uid)))
		}
		return err
	}
}
