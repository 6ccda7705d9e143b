package oauth

import (
	"context"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
)

// SentinelCredential reemplaza username/password en los PIN grants: la
// interfaz del engine siempre espera el par, pero el lookup por PIN no lo
// usa. Es un shim de adaptación, no un chequeo de seguridad.
const SentinelCredential = "NA"

// GrantRequest es un pedido de emisión de tokens.
type GrantRequest struct {
	GrantType string
	TenantID  string
	Username  string
	Password  string
	// RefreshToken solo aplica al grant refresh_token.
	RefreshToken string
}

// TokenPair es el resultado de un grant exitoso.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// UserLookup resuelve el user record para un grant. Se pasa como parámetro
// explícito en cada llamada a Grant: no existe estado compartido de hook
// entre requests concurrentes, cada request construye su propio closure.
type UserLookup func(ctx context.Context, username, password string) (*repository.UserRecord, error)

// Engine es el grant engine confiable. Consume la configuración del tenant,
// el request y el lookup del request; verifica credenciales (para password
// grants) y acuña el par de tokens.
type Engine interface {
	Grant(ctx context.Context, cfg repository.TenantOauthConfig, req GrantRequest, lookup UserLookup) (*TokenPair, error)
}
