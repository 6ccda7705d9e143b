package oauth

import "github.com/rockspoon/soajs.oauth/internal/domain/repository"

// EffectiveScope es la entrada de configuración de tenant que gobierna la
// decisión de PIN para un grant. Existe solo durante la evaluación de un
// request y se descarta después.
type EffectiveScope struct {
	TenantID string
	Pin      repository.PinGrant
}

// EvaluateTenantAccess decide el scope efectivo para un grant pedido por
// requestingTenantID sobre record, bajo la configuración cfg del tenant
// solicitante.
//
// Caso común: el record pertenece al tenant solicitante; el scope efectivo es
// su propio tenant (con el pin grant que trae el record). Si no, se recorre
// cfg.AllowedTenants EN ORDEN y gana la PRIMERA entrada que matchea: nunca
// best-match, el orden de encuentro debe ser determinístico entre corridas.
//
// Retorna nil cuando no existe relación de confianza: nil es negación dura,
// jamás se defaultea a permisivo.
//
// Si requestingTenantID es vacío la evaluación se saltea y el grant se trata
// como proveniente del tenant propio del record.
func EvaluateTenantAccess(record *repository.UserRecord, requestingTenantID string, cfg repository.TenantOauthConfig) *EffectiveScope {
	if record == nil {
		return nil
	}
	if requestingTenantID == "" || record.Tenant.ID == requestingTenantID {
		return &EffectiveScope{TenantID: record.Tenant.ID, Pin: record.Tenant.Pin}
	}
	for i := range cfg.AllowedTenants {
		if cfg.AllowedTenants[i].TenantID == requestingTenantID {
			return &EffectiveScope{
				TenantID: cfg.AllowedTenants[i].TenantID,
				Pin:      cfg.AllowedTenants[i].Pin,
			}
		}
	}
	return nil
}
