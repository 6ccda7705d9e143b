package mysql

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "password_hash", "login_mode",
		"tenant_id", "tenant_code", "tenant_pin_allowed",
	})
}

func TestUsers_GetByUsername(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM oauth_urac WHERE username = \?`).
		WithArgs("jane").
		WillReturnRows(userRows().AddRow(
			"5f1c2a000000000000000001", "jane", "$argon2id$...", "urac",
			"TEN1", "TEN", true,
		))

	rec, err := st.Users().GetByUsername(context.Background(), "jane")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.LoginMode != repository.LoginModeURAC {
		t.Fatalf("login mode = %q", rec.LoginMode)
	}
	if rec.Tenant.ID != "TEN1" || !rec.Tenant.Pin.Allowed {
		t.Fatalf("tenant = %+v", rec.Tenant)
	}
	if rec.PinLocked {
		t.Fatal("PinLocked is transient, must never come from the store")
	}
}

func TestUsers_GetByUsernameNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM oauth_urac WHERE username = \?`).
		WithArgs("ghost").
		WillReturnRows(userRows())

	_, err := st.Users().GetByUsername(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUsers_GetByPin(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM oauth_urac WHERE pin = \?`).
		WithArgs("1234").
		WillReturnRows(userRows().AddRow(
			"id-1", "jane", "h", "oauth", "TEN1", "TEN", false,
		))

	rec, err := st.Users().GetByPin(context.Background(), "1234")
	if err != nil {
		t.Fatalf("get by pin: %v", err)
	}
	if rec.Username != "jane" {
		t.Fatalf("username = %q", rec.Username)
	}
}

func TestUsers_EmptyInputIsInvalid(t *testing.T) {
	st, _ := newMockStore(t)

	if _, err := st.Users().GetByUsername(context.Background(), "  "); !repository.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := st.Users().GetByPin(context.Background(), ""); !repository.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUsers_ValidateID(t *testing.T) {
	st, _ := newMockStore(t)

	if _, err := st.Users().ValidateID("not-a-uuid"); !repository.IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	id, err := st.Users().ValidateID(" 7b7a0a9e-3c6f-4a46-9a34-111111111111 ")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if id != "7b7a0a9e-3c6f-4a46-9a34-111111111111" {
		t.Fatalf("id = %q", id)
	}
}
