package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
)

// quietPaths are probed constantly; their request lines are logged at debug.
var quietPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// jsonRecoverer turns a handler panic into a JSON 500 and logs it with the
// request-scoped logger.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel compared as chi does
					panic(rvr)
				}
				logpkg.FromContextOr(r.Context(), logger).Error("panic recovered",
					zap.Any("panic", rvr),
					zap.Stack("stacktrace"),
				)
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger attaches a request-scoped logger to the context, echoes the
// request id in X-Request-ID and emits one line per request. Server errors log at
// error level.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set(chiMiddleware.RequestIDHeader, requestID)
			}
			ctx, reqLogger := logpkg.WithFields(r.Context(), logger, zap.String("request_id", requestID))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := zapcore.InfoLevel
			switch {
			case status >= http.StatusInternalServerError:
				level = zapcore.ErrorLevel
			case isQuiet(r):
				level = zapcore.DebugLevel
			}

			if ce := reqLogger.Check(level, "http_request"); ce != nil {
				ce.Write(
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("route", routePattern(r)),
					zap.Int("status", status),
					zap.Duration("latency", time.Since(start)),
					zap.String("ip", r.RemoteAddr),
					zap.Int64("content_length", r.ContentLength),
					zap.Int("response_bytes", ww.BytesWritten()),
				)
			}
		})
	}
}

func isQuiet(r *http.Request) bool {
	_, ok := quietPaths[r.URL.Path]
	return ok
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
