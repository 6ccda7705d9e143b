package oauth

import (
	"context"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
	"github.com/rockspoon/soajs.oauth/internal/observability/logger"
	"github.com/rockspoon/soajs.oauth/internal/provision"
)

// GrantService orquesta los grants: carga la config del tenant, resuelve el
// user record, aplica la política de acceso y delega en el engine.
type GrantService interface {
	PasswordGrant(ctx context.Context, in PasswordGrantInput) (*TokenPair, error)
	PinGrant(ctx context.Context, in PinGrantInput) (*TokenPair, error)
	RefreshGrant(ctx context.Context, in RefreshGrantInput) (*TokenPair, error)
}

// PasswordGrantInput es el input del password grant.
type PasswordGrantInput struct {
	TenantID string
	Username string
	Password string
}

// PinGrantInput es el input del PIN grant.
type PinGrantInput struct {
	TenantID string
	Pin      string
}

// RefreshGrantInput es el input del refresh grant.
type RefreshGrantInput struct {
	TenantID     string
	RefreshToken string
}

// GrantDeps contiene las dependencias del servicio.
type GrantDeps struct {
	Users     repository.UserRepository
	Provision *provision.Cache
	Engine    Engine
}

type grantService struct {
	deps GrantDeps
}

// NewGrantService crea un GrantService.
func NewGrantService(deps GrantDeps) GrantService {
	return &grantService{deps: deps}
}

// PasswordGrant emite tokens por username/password.
//
// La verificación del password NO es responsabilidad de este componente: acá
// solo se decide SI el chequeo de password puede proceder para este tenant
// (gate de PIN); verificar la credencial y acuñar tokens es del engine.
func (s *grantService) PasswordGrant(ctx context.Context, in PasswordGrantInput) (*TokenPair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("oauth.grant"),
		logger.Op("PasswordGrant"),
		logger.TenantID(in.TenantID),
	)

	cfg := s.deps.Provision.Get(in.TenantID)
	if cfg == nil {
		log.Warn("tenant not provisioned")
		return nil, ErrProvisioningUnavailable
	}

	// Lookup construido por request: se pasa como parámetro explícito al
	// engine, nunca se rebindea estado compartido (ver engine.UserLookup).
	lookup := func(ctx context.Context, username, _ string) (*repository.UserRecord, error) {
		rec, err := s.deps.Users.GetByUsername(ctx, username)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}

		if rec.LoginMode == repository.LoginModeURAC && cfg.Pin.Enabled {
			rec.PinLocked = true
			scope := EvaluateTenantAccess(rec, in.TenantID, *cfg)
			if scope == nil {
				log.Info("grant denied", logger.UserID(rec.ID), logger.Err(ErrTenantNotAuthorized))
				return nil, ErrTenantNotAuthorized
			}
			if !scope.Pin.Allowed {
				log.Info("grant denied, pin required", logger.UserID(rec.ID))
				return nil, ErrPinRequired
			}
		}
		return rec, nil
	}

	pair, err := s.deps.Engine.Grant(ctx, *cfg, GrantRequest{
		GrantType: repository.GrantPassword,
		TenantID:  in.TenantID,
		Username:  in.Username,
		Password:  in.Password,
	}, lookup)
	if err != nil {
		return nil, WrapEngine(err)
	}

	log.Info("password grant issued", logger.Grant(repository.GrantPassword))
	return pair, nil
}

// PinGrant emite tokens por PIN. El PIN grant saltea la verificación de
// password por diseño: el lookup por PIN ya es suficientemente selectivo.
func (s *grantService) PinGrant(ctx context.Context, in PinGrantInput) (*TokenPair, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("oauth.grant"),
		logger.Op("PinGrant"),
		logger.TenantID(in.TenantID),
	)

	cfg := s.deps.Provision.Get(in.TenantID)
	if cfg == nil {
		log.Warn("tenant not provisioned")
		return nil, ErrProvisioningUnavailable
	}

	lookup := func(ctx context.Context, _, _ string) (*repository.UserRecord, error) {
		rec, err := s.deps.Users.GetByPin(ctx, in.Pin)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, ErrPinNotFound
			}
			return nil, err
		}
		return rec, nil
	}

	// El engine siempre espera el par username/password; se fuerzan
	// sentinels antes de delegar (shim de adaptación).
	pair, err := s.deps.Engine.Grant(ctx, *cfg, GrantRequest{
		GrantType: repository.GrantPin,
		TenantID:  in.TenantID,
		Username:  SentinelCredential,
		Password:  SentinelCredential,
	}, lookup)
	if err != nil {
		return nil, WrapEngine(err)
	}

	log.Info("pin grant issued", logger.Grant(repository.GrantPin))
	return pair, nil
}

// RefreshGrant rota un refresh token vigente.
func (s *grantService) RefreshGrant(ctx context.Context, in RefreshGrantInput) (*TokenPair, error) {
	cfg := s.deps.Provision.Get(in.TenantID)
	if cfg == nil {
		return nil, ErrProvisioningUnavailable
	}

	// El refresh grant no pasa por el lookup de usuario: el engine resuelve
	// el dueño desde el token persistido.
	pair, err := s.deps.Engine.Grant(ctx, *cfg, GrantRequest{
		GrantType:    repository.GrantRefreshToken,
		TenantID:     in.TenantID,
		RefreshToken: in.RefreshToken,
	}, nil)
	if err != nil {
		return nil, WrapEngine(err)
	}
	return pair, nil
}
