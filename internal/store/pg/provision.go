package pg

import (
	"context"
	"time"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
)

// Provision retorna el source de configuración OAuth por tenant.
func (s *Store) Provision() repository.ProvisionSource {
	return &provisionSource{pool: s.pool}
}

type provisionSource struct{ pool queryer }

var _ repository.ProvisionSource = (*provisionSource)(nil)

// Load lee la provisión completa. Las allowed-tenant entries se leen
// ordenadas por posición: el policy evaluator depende de ese orden
// (first match determinístico).
func (p *provisionSource) Load(ctx context.Context) (map[string]repository.TenantOauthConfig, error) {
	const qTenants = `
		SELECT tenant_id, secret, grants, access_ttl_seconds, refresh_ttl_seconds, pin_enabled
		FROM tenant_oauth`

	rows, err := p.pool.Query(ctx, qTenants)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]repository.TenantOauthConfig)
	for rows.Next() {
		var cfg repository.TenantOauthConfig
		var accessSecs, refreshSecs int64
		if err := rows.Scan(&cfg.TenantID, &cfg.Secret, &cfg.Grants, &accessSecs, &refreshSecs, &cfg.Pin.Enabled); err != nil {
			return nil, err
		}
		cfg.AccessTokenTTL = time.Duration(accessSecs) * time.Second
		cfg.RefreshTokenTTL = time.Duration(refreshSecs) * time.Second
		out[cfg.TenantID] = cfg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const qAllowed = `
		SELECT tenant_id, allowed_tenant_id, pin_allowed
		FROM tenant_allowed
		ORDER BY tenant_id, position`

	arows, err := p.pool.Query(ctx, qAllowed)
	if err != nil {
		return nil, err
	}
	defer arows.Close()

	for arows.Next() {
		var owner string
		var at repository.AllowedTenant
		if err := arows.Scan(&owner, &at.TenantID, &at.Pin.Allowed); err != nil {
			return nil, err
		}
		if cfg, ok := out[owner]; ok {
			cfg.AllowedTenants = append(cfg.AllowedTenants, at)
			out[owner] = cfg
		}
	}
	if err := arows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
