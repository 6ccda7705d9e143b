package repository

import (
	"context"
	"time"
)

// Token es un access o refresh token asociado a un usuario y a un
// tenant/client. El servicio solo es dueño de la asociación; el valor en sí
// es opaco y lo acuña el grant engine.
type Token struct {
	Token     string
	UserID    string
	ClientID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenRepository define las operaciones de tracking y revocación de tokens.
//
// Las operaciones Delete* son idempotentes: reportan filas afectadas y nunca
// fallan cuando el target no existe (0 removidos es éxito).
type TokenRepository interface {
	// SaveAccessToken persiste la asociación de un access token.
	SaveAccessToken(ctx context.Context, t Token) error

	// SaveRefreshToken persiste la asociación de un refresh token.
	SaveRefreshToken(ctx context.Context, t Token) error

	// GetRefreshToken busca un refresh token vigente.
	// Retorna ErrNotFound si no existe o expiró.
	GetRefreshToken(ctx context.Context, token string) (*Token, error)

	// DeleteAccessToken elimina un access token. Retorna 0 o 1.
	DeleteAccessToken(ctx context.Context, token string) (int64, error)

	// DeleteRefreshToken elimina un refresh token. Retorna 0 o 1.
	DeleteRefreshToken(ctx context.Context, token string) (int64, error)

	// DeleteAllByUser elimina todos los tokens (access y refresh) de un
	// usuario, en todos los clients. Retorna el total removido.
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)

	// DeleteAllByClient elimina todos los tokens emitidos contra un
	// tenant/client. Retorna el total removido.
	DeleteAllByClient(ctx context.Context, clientID string) (int64, error)
}
