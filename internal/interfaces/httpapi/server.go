package httpapi

import (
	"net/http"
	"runtime/debug"

	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
)

type RouterConfig struct {
	Handler            *Handler
	Verifier           TokenVerifier
	Logger             *logging.Logger
	CORSAllowedOrigins []string
}

// NewRouter builds the API handler chain, outermost first: tracing, request
// log, CORS, panic recovery, routes.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, cfg.Handler)
	registerAuthorizedRoutes(mux, cfg.Handler, cfg.Verifier)

	var h http.Handler = mux
	h = recoverPanic(logger, h)
	h = CORS(cfg.CORSAllowedOrigins, h)
	h = RequestLogging(logger, h)
	return RequestTracing(h)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.ErrorContext(r.Context(), "panic recovered",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			writeInternalError(r.Context(), w)
		}()
		next.ServeHTTP(w, r)
	})
}
