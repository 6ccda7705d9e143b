// Package cached decora el user store con un cache read-through de TTL corto.
// La provisión de soajs hacía lo mismo con los records de oauth_urac: los
// logins repetidos del mismo usuario no deben golpear la DB en cada grant.
package cached

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rockspoon/soajs.oauth/internal/cache"
	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
	"github.com/rockspoon/soajs.oauth/internal/observability/logger"
)

const defaultTTL = 2 * time.Minute

// UserStore es un repository.UserRepository con cache read-through por
// username. Los lookups por PIN van siempre al store: un PIN es una
// credencial y no se persiste en el cache.
type UserStore struct {
	inner repository.UserRepository
	cache cache.Client
	ttl   time.Duration
}

var _ repository.UserRepository = (*UserStore)(nil)

// NewUserStore crea el decorador. Si ttl es 0 usa el default (2m).
func NewUserStore(inner repository.UserRepository, c cache.Client, ttl time.Duration) *UserStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &UserStore{inner: inner, cache: c, ttl: ttl}
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*repository.UserRecord, error) {
	key := "user:uname:" + username

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var rec repository.UserRecord
		if json.Unmarshal([]byte(raw), &rec) == nil {
			return &rec, nil
		}
		// Entrada corrupta: se descarta y se vuelve al store.
		_ = s.cache.Delete(ctx, key)
	}

	rec, err := s.inner.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(rec); err == nil {
		if err := s.cache.Set(ctx, key, string(b), s.ttl); err != nil {
			// Cache caído no es fatal; el store ya respondió.
			logger.From(ctx).Debug("user cache set failed",
				logger.Component("store.cached"), logger.Err(err))
		}
	}
	return rec, nil
}

func (s *UserStore) GetByPin(ctx context.Context, pin string) (*repository.UserRecord, error) {
	return s.inner.GetByPin(ctx, pin)
}

func (s *UserStore) ValidateID(raw string) (string, error) {
	return s.inner.ValidateID(raw)
}

// Invalidate elimina la entrada cacheada de un username.
func (s *UserStore) Invalidate(ctx context.Context, username string) {
	_ = s.cache.Delete(ctx, "user:uname:"+username)
}
