package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/rockspoon/soajs.oauth/internal/http"
	"github.com/rockspoon/soajs.oauth/internal/oauth"
)

// DeleteAccessToken maneja DELETE /accessToken/{token}.
func DeleteAccessToken(svc oauth.RevokeService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.DeleteAccessToken(r.Context(), chi.URLParam(r, "token"))
		writeRemoved(w, "access_token", out, err)
	})
}

// DeleteRefreshToken maneja DELETE /refreshToken/{token}.
func DeleteRefreshToken(svc oauth.RevokeService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.DeleteRefreshToken(r.Context(), chi.URLParam(r, "token"))
		writeRemoved(w, "refresh_token", out, err)
	})
}

// DeleteUserTokens maneja DELETE /tokens/user/{userId}: revoca todos los
// tokens del usuario en todos los clients.
func DeleteUserTokens(svc oauth.RevokeService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.DeleteAllForUser(r.Context(), chi.URLParam(r, "userId"))
		writeRemoved(w, "user", out, err)
	})
}

// DeleteClientTokens maneja DELETE /tokens/tenant/{clientId}: desautoriza
// la integración completa de un tenant/client.
func DeleteClientTokens(svc oauth.RevokeService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.DeleteAllForClient(r.Context(), chi.URLParam(r, "clientId"))
		writeRemoved(w, "client", out, err)
	})
}

func writeRemoved(w http.ResponseWriter, op string, out oauth.Removed, err error) {
	if err != nil {
		httpx.WriteOauthError(w, err)
		return
	}
	httpx.ObserveRevoked(op, out.Removed)
	httpx.WriteJSON(w, http.StatusOK, out)
}
