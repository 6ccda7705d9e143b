package http

import (
	"encoding/json"
	"net/http"

	"github.com/rockspoon/soajs.oauth/internal/oauth"
)

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorCode        int    `json:"error_code,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

// WriteError escribe el envelope de error estándar.
func WriteError(w http.ResponseWriter, status int, code, desc string, errCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rid := w.Header().Get("X-Request-ID")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{
		Error:            code,
		ErrorDescription: desc,
		ErrorCode:        errCode,
		RequestID:        rid,
	})
}

// WriteJSON: respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOauthError mapea un error de negocio al status HTTP y su envelope.
// Los códigos numéricos del dominio viajan en error_code: las apps cliente
// branchean sobre ellos (450 dispara el flujo de PIN).
func WriteOauthError(w http.ResponseWriter, err error) {
	e, ok := oauth.AsError(err)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "server_error", "unexpected error", 0)
		return
	}

	status := http.StatusBadRequest
	slug := "invalid_grant"
	switch e.Code {
	case oauth.ErrUserNotFound.Code, oauth.ErrPinNotFound.Code:
		status = http.StatusUnauthorized
	case oauth.ErrTenantNotAuthorized.Code, oauth.ErrPinRequired.Code:
		status = http.StatusForbidden
		slug = "access_denied"
	case oauth.ErrInvalidIdentifier.Code:
		status = http.StatusBadRequest
		slug = "invalid_request"
	case oauth.ErrProvisioningUnavailable.Code:
		status = http.StatusServiceUnavailable
		slug = "temporarily_unavailable"
	}
	WriteError(w, status, slug, e.Msg, e.Code)
}
