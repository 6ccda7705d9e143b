// Package provision mantiene el snapshot en memoria de la configuración
// OAuth de todos los tenants, con reload atómico bajo demanda.
package provision

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
	"github.com/rockspoon/soajs.oauth/internal/observability/logger"
)

// snapshot es una vista inmutable de la provisión. Los readers retienen el
// puntero que leyeron; un reload publica un snapshot nuevo y nunca muta el
// anterior.
type snapshot struct {
	tenants  map[string]repository.TenantOauthConfig
	loadedAt time.Time
}

// Cache es el provisioning cache del servicio.
//
// Get nunca bloquea en un reload: lee el último snapshot publicado vía
// atomic pointer swap. Un reload fallido conserva el snapshot anterior
// (stale-but-available sobre unavailable).
type Cache struct {
	source repository.ProvisionSource
	snap   atomic.Pointer[snapshot]
	sf     singleflight.Group
}

// NewCache crea el cache sin cargar. Llamar Reload al bootstrap.
func NewCache(source repository.ProvisionSource) *Cache {
	c := &Cache{source: source}
	c.snap.Store(&snapshot{tenants: map[string]repository.TenantOauthConfig{}})
	return c
}

// Get retorna la configuración OAuth del tenant, o nil si no está
// provisionado. La config retornada es una copia del snapshot vigente al
// momento de la llamada; reloads posteriores no la afectan.
func (c *Cache) Get(tenantID string) *repository.TenantOauthConfig {
	s := c.snap.Load()
	if cfg, ok := s.tenants[tenantID]; ok {
		return &cfg
	}
	return nil
}

// Reload recarga la provisión desde el source y publica el snapshot nuevo de
// forma atómica. Reloads concurrentes se coalescen (singleflight). Retorna
// true si la carga fue exitosa; en caso de error el snapshot anterior queda
// intacto y el error se absorbe (solo se loguea).
func (c *Cache) Reload(ctx context.Context) bool {
	_, err, _ := c.sf.Do("reload", func() (any, error) {
		tenants, err := c.source.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.snap.Store(&snapshot{tenants: tenants, loadedAt: time.Now()})
		return nil, nil
	})
	if err != nil {
		logger.From(ctx).Warn("provision reload failed, keeping previous snapshot",
			logger.Component("provision.cache"), logger.Err(err))
		return false
	}
	return true
}

// LoadedAt retorna cuándo se cargó el snapshot vigente (zero si nunca).
func (c *Cache) LoadedAt() time.Time {
	return c.snap.Load().loadedAt
}

// Count retorna cuántos tenants hay en el snapshot vigente.
func (c *Cache) Count() int {
	return len(c.snap.Load().tenants)
}
