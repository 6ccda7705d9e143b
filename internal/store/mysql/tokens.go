package mysql

import (
	"context"
	"database/sql"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
)

// Tokens retorna el repositorio de tokens.
func (s *Store) Tokens() repository.TokenRepository {
	return &tokenRepo{db: s.db}
}

type tokenRepo struct{ db *sql.DB }

var _ repository.TokenRepository = (*tokenRepo)(nil)

func (r *tokenRepo) SaveAccessToken(ctx context.Context, t repository.Token) error {
	const q = `
		INSERT INTO access_tokens (token, user_id, client_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, NOW())`
	_, err := r.db.ExecContext(ctx, q, t.Token, t.UserID, t.ClientID, t.ExpiresAt)
	return err
}

func (r *tokenRepo) SaveRefreshToken(ctx context.Context, t repository.Token) error {
	const q = `
		INSERT INTO refresh_tokens (token, user_id, client_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, NOW())`
	_, err := r.db.ExecContext(ctx, q, t.Token, t.UserID, t.ClientID, t.ExpiresAt)
	return err
}

func (r *tokenRepo) GetRefreshToken(ctx context.Context, token string) (*repository.Token, error) {
	const q = `
		SELECT token, user_id, client_id, expires_at, created_at
		FROM refresh_tokens WHERE token = ? AND expires_at > NOW()`
	var t repository.Token
	err := r.db.QueryRowContext(ctx, q, token).Scan(&t.Token, &t.UserID, &t.ClientID, &t.ExpiresAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepo) DeleteAccessToken(ctx context.Context, token string) (int64, error) {
	return r.exec(ctx, `DELETE FROM access_tokens WHERE token = ?`, token)
}

func (r *tokenRepo) DeleteRefreshToken(ctx context.Context, token string) (int64, error) {
	return r.exec(ctx, `DELETE FROM refresh_tokens WHERE token = ?`, token)
}

func (r *tokenRepo) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	n, err := r.exec(ctx, `DELETE FROM access_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	m, err := r.exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return n, err
	}
	return n + m, nil
}

func (r *tokenRepo) DeleteAllByClient(ctx context.Context, clientID string) (int64, error) {
	n, err := r.exec(ctx, `DELETE FROM access_tokens WHERE client_id = ?`, clientID)
	if err != nil {
		return 0, err
	}
	m, err := r.exec(ctx, `DELETE FROM refresh_tokens WHERE client_id = ?`, clientID)
	if err != nil {
		return n, err
	}
	return n + m, nil
}

func (r *tokenRepo) exec(ctx context.Context, q string, arg any) (int64, error) {
	res, err := r.db.ExecContext(ctx, q, arg)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
