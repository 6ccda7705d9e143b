// Package engine es la implementación de referencia del grant engine: valida
// grant types contra la configuración del tenant, verifica credenciales para
// password grants y acuña pares de tokens opacos trackeados para revocación.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
	"github.com/rockspoon/soajs.oauth/internal/oauth"
	"github.com/rockspoon/soajs.oauth/internal/observability/logger"
	"github.com/rockspoon/soajs.oauth/internal/security/password"
	tokens "github.com/rockspoon/soajs.oauth/internal/security/token"
)

// Errores propios del engine. El orquestador los envuelve como código 601.
var (
	ErrGrantNotAllowed    = fmt.Errorf("grant type not allowed for tenant")
	ErrMissingCredentials = fmt.Errorf("username and password are required")
	ErrBadCredentials     = fmt.Errorf("invalid credentials")
	ErrBadRefreshToken    = fmt.Errorf("invalid or expired refresh token")
)

const tokenBytes = 32

// Deps contiene las dependencias del engine.
type Deps struct {
	Tokens repository.TokenRepository
}

// Engine implementa oauth.Engine.
type Engine struct {
	deps Deps
}

var _ oauth.Engine = (*Engine)(nil)

// New crea un Engine.
func New(deps Deps) *Engine {
	return &Engine{deps: deps}
}

// Grant procesa un grant request. El lookup llega como parámetro explícito y
// se invoca sincrónicamente dentro de esta llamada: dos requests concurrentes
// jamás pueden observar el lookup del otro.
func (e *Engine) Grant(ctx context.Context, cfg repository.TenantOauthConfig, req oauth.GrantRequest, lookup oauth.UserLookup) (*oauth.TokenPair, error) {
	if !cfg.HasGrant(req.GrantType) {
		return nil, fmt.Errorf("%w: %s", ErrGrantNotAllowed, req.GrantType)
	}

	switch req.GrantType {
	case repository.GrantPassword, repository.GrantPin:
		return e.credentialGrant(ctx, cfg, req, lookup)
	case repository.GrantRefreshToken:
		return e.refreshGrant(ctx, cfg, req)
	default:
		return nil, fmt.Errorf("%w: %s", ErrGrantNotAllowed, req.GrantType)
	}
}

func (e *Engine) credentialGrant(ctx context.Context, cfg repository.TenantOauthConfig, req oauth.GrantRequest, lookup oauth.UserLookup) (*oauth.TokenPair, error) {
	// La interfaz exige siempre el par username/password, aunque el PIN
	// grant lo llene con sentinels.
	if req.Username == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}
	if lookup == nil {
		return nil, fmt.Errorf("no user lookup bound for %s grant", req.GrantType)
	}

	rec, err := lookup(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrBadCredentials
	}

	// El password se verifica acá, no en el orquestador. Los PIN grants lo
	// saltean por diseño: el lookup por PIN ya autenticó.
	if req.GrantType == repository.GrantPassword {
		if !password.Verify(req.Password, rec.PasswordHash) {
			logger.From(ctx).Info("password verification failed",
				logger.Component("engine"), logger.UserID(rec.ID))
			return nil, ErrBadCredentials
		}
	}

	return e.mint(ctx, cfg, rec.ID)
}

func (e *Engine) refreshGrant(ctx context.Context, cfg repository.TenantOauthConfig, req oauth.GrantRequest) (*oauth.TokenPair, error) {
	if req.RefreshToken == "" {
		return nil, ErrBadRefreshToken
	}
	hash := tokens.Hash(req.RefreshToken)
	old, err := e.deps.Tokens.GetRefreshToken(ctx, hash)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBadRefreshToken
		}
		return nil, err
	}
	if old.ClientID != cfg.TenantID {
		// El token fue emitido para otro client; no se cruza de tenant.
		return nil, ErrBadRefreshToken
	}

	// Rotación: el refresh viejo deja de valer en cuanto se emite el nuevo.
	if _, err := e.deps.Tokens.DeleteRefreshToken(ctx, hash); err != nil {
		return nil, err
	}
	return e.mint(ctx, cfg, old.UserID)
}

// mint acuña y persiste el par. Solo se guardan hashes: el valor plano viaja
// una única vez al cliente.
func (e *Engine) mint(ctx context.Context, cfg repository.TenantOauthConfig, userID string) (*oauth.TokenPair, error) {
	access, err := tokens.GenerateOpaque(tokenBytes)
	if err != nil {
		return nil, err
	}
	refresh, err := tokens.GenerateOpaque(tokenBytes)
	if err != nil {
		return nil, err
	}

	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}

	now := time.Now()
	if err := e.deps.Tokens.SaveAccessToken(ctx, repository.Token{
		Token:     tokens.Hash(access),
		UserID:    userID,
		ClientID:  cfg.TenantID,
		ExpiresAt: now.Add(accessTTL),
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}
	if err := e.deps.Tokens.SaveRefreshToken(ctx, repository.Token{
		Token:     tokens.Hash(refresh),
		UserID:    userID,
		ClientID:  cfg.TenantID,
		ExpiresAt: now.Add(refreshTTL),
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	return &oauth.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTTL / time.Second),
	}, nil
}
