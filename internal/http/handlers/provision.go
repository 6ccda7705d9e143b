package handlers

import (
	"crypto/subtle"
	"net/http"

	httpx "github.com/rockspoon/soajs.oauth/internal/http"
	"github.com/rockspoon/soajs.oauth/internal/provision"
)

// ReloadProvision maneja GET /admin/provision/reload: trigger administrativo
// idempotente, sin body. Un reload fallido deja el snapshot anterior y se
// reporta result=false; nunca rompe requests en vuelo.
func ReloadProvision(cache *provision.Cache, apiKey string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey != "" {
			got := r.Header.Get("X-Admin-API-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid admin api key", 0)
				return
			}
		}

		ok := cache.Reload(r.Context())
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"result":  ok,
			"tenants": cache.Count(),
		})
	})
}

// Readyz reporta readiness: el servicio está listo cuando tiene un snapshot
// de provisión cargado.
func Readyz(cache *provision.Cache) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cache.LoadedAt().IsZero() {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
}
