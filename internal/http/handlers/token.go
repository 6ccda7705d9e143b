// Package handlers contiene los handlers HTTP del servicio. Routing y
// parsing son deliberadamente finos: toda la decisión vive en los services.
package handlers

import (
	"net/http"
	"strings"

	httpx "github.com/rockspoon/soajs.oauth/internal/http"
	"github.com/rockspoon/soajs.oauth/internal/oauth"
)

// TenantHeader identifica al tenant solicitante. Lo inyecta el gateway.
const TenantHeader = "X-Tenant-ID"

// Token maneja POST /token: password grant y refresh grant, form-encoded
// como manda la convención OAuth2.
func Token(svc oauth.GrantService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed form body", 0)
			return
		}
		tenantID := tenantFrom(r)
		if tenantID == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "missing tenant", 0)
			return
		}

		grantType := strings.TrimSpace(r.PostFormValue("grant_type"))
		if grantType == "" {
			grantType = "password"
		}

		var (
			pair *oauth.TokenPair
			err  error
		)
		switch grantType {
		case "password":
			pair, err = svc.PasswordGrant(r.Context(), oauth.PasswordGrantInput{
				TenantID: tenantID,
				Username: r.PostFormValue("username"),
				Password: r.PostFormValue("password"),
			})
		case "refresh_token":
			pair, err = svc.RefreshGrant(r.Context(), oauth.RefreshGrantInput{
				TenantID:     tenantID,
				RefreshToken: r.PostFormValue("refresh_token"),
			})
		default:
			httpx.WriteError(w, http.StatusBadRequest, "unsupported_grant_type", "unsupported grant_type: "+grantType, 0)
			return
		}

		if err != nil {
			httpx.ObserveGrant(grantType, "denied")
			httpx.WriteOauthError(w, err)
			return
		}
		httpx.ObserveGrant(grantType, "issued")
		httpx.WriteJSON(w, http.StatusOK, pair)
	})
}

// Pin maneja POST /pin: PIN grant.
func Pin(svc oauth.GrantService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed form body", 0)
			return
		}
		tenantID := tenantFrom(r)
		if tenantID == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "missing tenant", 0)
			return
		}
		pin := strings.TrimSpace(r.PostFormValue("pin"))
		if pin == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "missing pin", 0)
			return
		}

		pair, err := svc.PinGrant(r.Context(), oauth.PinGrantInput{
			TenantID: tenantID,
			Pin:      pin,
		})
		if err != nil {
			httpx.ObserveGrant("pin", "denied")
			httpx.WriteOauthError(w, err)
			return
		}
		httpx.ObserveGrant("pin", "issued")
		httpx.WriteJSON(w, http.StatusOK, pair)
	})
}

func tenantFrom(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(TenantHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(r.PostFormValue("tenant_id"))
}
