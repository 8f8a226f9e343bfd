package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("fantasy-draft/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// startSpan only opens child spans for handlers; middleware and response
// helpers share the request span so a draft action stays a short trace.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() || !strings.HasPrefix(name, "httpapi.Handler.") {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func startHandlerSpan(r *http.Request, name string) (context.Context, trace.Span) {
	return startSpan(r.Context(), "httpapi.Handler."+name, handlerSpanAttributes(r)...)
}

func handlerSpanAttributes(r *http.Request) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if leagueID := strings.TrimSpace(r.PathValue("leagueID")); leagueID != "" {
		attrs = append(attrs, attribute.String("draft.league_id", leagueID))
	}
	if p, ok := principalFromContext(r.Context()); ok {
		attrs = append(attrs, attribute.String("enduser.id", p.UserID))
	}
	return attrs
}

// shouldTraceRequest keeps probe traffic out of the trace backend.
func shouldTraceRequest(path string) bool {
	switch strings.ToLower(strings.TrimSpace(path)) {
	case "/healthz", "/health", "/livez", "/readyz":
		return false
	default:
		return true
	}
}
