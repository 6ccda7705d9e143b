package mysql

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
)

// Users retorna el repositorio de user records.
func (s *Store) Users() repository.UserRepository {
	return &userRepo{db: s.db}
}

type userRepo struct{ db *sql.DB }

var _ repository.UserRepository = (*userRepo)(nil)

const userColumns = `id, username, password_hash, login_mode, tenant_id, tenant_code, tenant_pin_allowed`

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*repository.UserRecord, error) {
	if strings.TrimSpace(username) == "" {
		return nil, repository.ErrInvalidInput
	}
	const q = `SELECT ` + userColumns + ` FROM oauth_urac WHERE username = ?`
	return r.scanOne(ctx, q, username)
}

func (r *userRepo) GetByPin(ctx context.Context, pin string) (*repository.UserRecord, error) {
	if strings.TrimSpace(pin) == "" {
		return nil, repository.ErrInvalidInput
	}
	const q = `SELECT ` + userColumns + ` FROM oauth_urac WHERE pin = ?`
	return r.scanOne(ctx, q, pin)
}

func (r *userRepo) ValidateID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", repository.ErrInvalidInput
	}
	return id.String(), nil
}

func (r *userRepo) scanOne(ctx context.Context, q string, arg any) (*repository.UserRecord, error) {
	var rec repository.UserRecord
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&rec.ID, &rec.Username, &rec.PasswordHash, &rec.LoginMode,
		&rec.Tenant.ID, &rec.Tenant.Code, &rec.Tenant.Pin.Allowed,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
