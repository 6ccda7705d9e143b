package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/rockspoon/soajs.oauth/internal/http/middlewares"
)

// RouterDeps agrupa los handlers ya construidos. El wiring vive en main:
// este paquete solo conoce rutas y middlewares.
type RouterDeps struct {
	// Grants
	Token stdhttp.Handler
	Pin   stdhttp.Handler

	// Tenant authorization value
	Authorization stdhttp.Handler

	// SSO (opcional, nil si no hay provider configurado)
	AzureLogin stdhttp.Handler

	// Revocación
	DeleteAccessToken  stdhttp.Handler
	DeleteRefreshToken stdhttp.Handler
	DeleteUserTokens   stdhttp.Handler
	DeleteClientTokens stdhttp.Handler

	// Admin / salud
	ReloadProvision stdhttp.Handler
	Readyz          stdhttp.Handler
	Metrics         stdhttp.Handler

	// RateLimit se aplica solo a los endpoints de grant (pueden golpearse
	// con credenciales robadas; el resto no amerita la vuelta a redis).
	RateLimit mw.Middleware
}

// NewRouter arma el router del servicio.
func NewRouter(deps RouterDeps) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())
	r.Use(WithHTTPMetrics)

	limited := func(h stdhttp.Handler) stdhttp.Handler {
		if deps.RateLimit == nil {
			return h
		}
		return mw.Chain(h, deps.RateLimit)
	}

	// Grants
	r.Method(stdhttp.MethodPost, "/token", limited(deps.Token))
	r.Method(stdhttp.MethodPost, "/pin", limited(deps.Pin))

	// Authorization value del tenant
	r.Method(stdhttp.MethodGet, "/authorization", deps.Authorization)

	// SSO
	if deps.AzureLogin != nil {
		r.Method(stdhttp.MethodGet, "/azure/login", deps.AzureLogin)
	}

	// Revocación
	r.Method(stdhttp.MethodDelete, "/accessToken/{token}", deps.DeleteAccessToken)
	r.Method(stdhttp.MethodDelete, "/refreshToken/{token}", deps.DeleteRefreshToken)
	r.Method(stdhttp.MethodDelete, "/tokens/user/{userId}", deps.DeleteUserTokens)
	r.Method(stdhttp.MethodDelete, "/tokens/tenant/{clientId}", deps.DeleteClientTokens)

	// Admin
	r.Method(stdhttp.MethodGet, "/admin/provision/reload", deps.ReloadProvision)

	// Salud / métricas
	r.Get("/healthz", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(stdhttp.MethodGet, "/readyz", deps.Readyz)
	if deps.Metrics != nil {
		r.Method(stdhttp.MethodGet, "/metrics", deps.Metrics)
	}

	return r
}
