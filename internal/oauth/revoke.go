package oauth

import (
	"context"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
	"github.com/rockspoon/soajs.oauth/internal/observability/logger"
	tokens "github.com/rockspoon/soajs.oauth/internal/security/token"
)

// Removed reporta cuántos tokens afectó una revocación.
type Removed struct {
	Removed int64 `json:"removed"`
}

// RevokeService implementa la revocación en cascada de tokens.
//
// Todas las operaciones son idempotentes: "nada que borrar" es éxito con
// removed=0, nunca un error. El caller no puede distinguir "ya revocado" de
// "nunca existió"; es una simplificación deliberada del contrato.
type RevokeService interface {
	DeleteAccessToken(ctx context.Context, token string) (Removed, error)
	DeleteRefreshToken(ctx context.Context, token string) (Removed, error)
	DeleteAllForUser(ctx context.Context, rawUserID string) (Removed, error)
	DeleteAllForClient(ctx context.Context, clientID string) (Removed, error)
}

// RevokeDeps contiene las dependencias del servicio.
type RevokeDeps struct {
	Tokens repository.TokenRepository
	Users  repository.UserRepository
}

type revokeService struct {
	deps RevokeDeps
}

// NewRevokeService crea un RevokeService.
func NewRevokeService(deps RevokeDeps) RevokeService {
	return &revokeService{deps: deps}
}

func (s *revokeService) DeleteAccessToken(ctx context.Context, token string) (Removed, error) {
	n, err := s.deps.Tokens.DeleteAccessToken(ctx, tokens.Hash(token))
	if err != nil {
		return Removed{}, WrapEngine(err)
	}
	s.logRemoved(ctx, "DeleteAccessToken", n)
	return Removed{Removed: n}, nil
}

func (s *revokeService) DeleteRefreshToken(ctx context.Context, token string) (Removed, error) {
	n, err := s.deps.Tokens.DeleteRefreshToken(ctx, tokens.Hash(token))
	if err != nil {
		return Removed{}, WrapEngine(err)
	}
	s.logRemoved(ctx, "DeleteRefreshToken", n)
	return Removed{Removed: n}, nil
}

// DeleteAllForUser revoca todos los tokens del usuario, en todos los clients.
// El id crudo pasa por ValidateID del store: un id malformado es
// ErrInvalidIdentifier, no "not found".
func (s *revokeService) DeleteAllForUser(ctx context.Context, rawUserID string) (Removed, error) {
	userID, err := s.deps.Users.ValidateID(rawUserID)
	if err != nil {
		return Removed{}, ErrInvalidIdentifier
	}
	n, err := s.deps.Tokens.DeleteAllByUser(ctx, userID)
	if err != nil {
		return Removed{}, WrapEngine(err)
	}
	s.logRemoved(ctx, "DeleteAllForUser", n)
	return Removed{Removed: n}, nil
}

func (s *revokeService) DeleteAllForClient(ctx context.Context, clientID string) (Removed, error) {
	n, err := s.deps.Tokens.DeleteAllByClient(ctx, clientID)
	if err != nil {
		return Removed{}, WrapEngine(err)
	}
	s.logRemoved(ctx, "DeleteAllForClient", n)
	return Removed{Removed: n}, nil
}

func (s *revokeService) logRemoved(ctx context.Context, op string, n int64) {
	logger.From(ctx).Info("tokens revoked",
		logger.Layer("service"),
		logger.Component("oauth.revoke"),
		logger.Op(op),
		logger.Removed(n),
	)
}
