package middlewares

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/rockspoon/soajs.oauth/internal/observability/logger"
)

// WithRecover atrapa panics del handler y responde 500 sin tirar el proceso.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recovered",
						zap.Any("panic", rec),
						logger.Path(r.URL.Path),
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
