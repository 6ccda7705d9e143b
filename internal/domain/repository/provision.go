package repository

import (
	"context"
	"time"
)

// Grant types que un tenant puede habilitar.
const (
	GrantPassword     = "password"
	GrantPin          = "pin"
	GrantRefreshToken = "refresh_token"
)

// PinPolicy es la política de PIN de un tenant.
type PinPolicy struct {
	Enabled bool
}

// AllowedTenant es una entrada de confianza delegada: el tenant dueño de la
// configuración acepta grants solicitados por TenantID, con o sin PIN.
// El orden de la lista es significativo (first match, ver policy evaluator).
type AllowedTenant struct {
	TenantID string
	Pin      PinGrant
}

// TenantOauthConfig es la configuración OAuth de un tenant/client.
// Inmutable una vez leída por un request: los requests en vuelo retienen el
// snapshot del que la leyeron.
type TenantOauthConfig struct {
	TenantID        string
	Secret          string
	Grants          []string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Pin             PinPolicy
	AllowedTenants  []AllowedTenant
}

// HasGrant reporta si el grant type está habilitado para el tenant.
func (c TenantOauthConfig) HasGrant(grant string) bool {
	for _, g := range c.Grants {
		if g == grant {
			return true
		}
	}
	return false
}

// ProvisionSource carga la configuración OAuth de todos los tenants.
// Se invoca al inicio y ante un trigger administrativo de reload.
type ProvisionSource interface {
	Load(ctx context.Context) (map[string]TenantOauthConfig, error)
}
