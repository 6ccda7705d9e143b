package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
)

// Tokens retorna el repositorio de tokens.
func (s *Store) Tokens() repository.TokenRepository {
	return &tokenRepo{pool: s.pool}
}

type tokenRepo struct{ pool queryer }

var _ repository.TokenRepository = (*tokenRepo)(nil)

func (r *tokenRepo) SaveAccessToken(ctx context.Context, t repository.Token) error {
	const q = `
		INSERT INTO access_tokens (token, user_id, client_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())`
	_, err := r.pool.Exec(ctx, q, t.Token, t.UserID, t.ClientID, t.ExpiresAt)
	return err
}

func (r *tokenRepo) SaveRefreshToken(ctx context.Context, t repository.Token) error {
	const q = `
		INSERT INTO refresh_tokens (token, user_id, client_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())`
	_, err := r.pool.Exec(ctx, q, t.Token, t.UserID, t.ClientID, t.ExpiresAt)
	return err
}

func (r *tokenRepo) GetRefreshToken(ctx context.Context, token string) (*repository.Token, error) {
	const q = `
		SELECT token, user_id, client_id, expires_at, created_at
		FROM refresh_tokens WHERE token = $1 AND expires_at > NOW()`
	var t repository.Token
	err := r.pool.QueryRow(ctx, q, token).Scan(&t.Token, &t.UserID, &t.ClientID, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Los deletes reportan filas afectadas: 0 no es error (contrato idempotente).

func (r *tokenRepo) DeleteAccessToken(ctx context.Context, token string) (int64, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM access_tokens WHERE token = $1`, token)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *tokenRepo) DeleteRefreshToken(ctx context.Context, token string) (int64, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *tokenRepo) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	ct, err := r.pool.Exec(ctx, `DELETE FROM access_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	total += ct.RowsAffected()

	ct, err = r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return total, err
	}
	total += ct.RowsAffected()
	return total, nil
}

func (r *tokenRepo) DeleteAllByClient(ctx context.Context, clientID string) (int64, error) {
	var total int64
	ct, err := r.pool.Exec(ctx, `DELETE FROM access_tokens WHERE client_id = $1`, clientID)
	if err != nil {
		return 0, err
	}
	total += ct.RowsAffected()

	ct, err = r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE client_id = $1`, clientID)
	if err != nil {
		return total, err
	}
	total += ct.RowsAffected()
	return total, nil
}
