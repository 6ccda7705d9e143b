package repository

import "context"

// LoginMode values. Records created through the user-management system carry
// "urac"; plain oauth credential records carry "oauth".
const (
	LoginModeURAC  = "urac"
	LoginModeOauth = "oauth"
)

// PinGrant indica si un tenant permite grants con PIN.
type PinGrant struct {
	Allowed bool
}

// TenantRef es la referencia al tenant dueño de un user record, incluyendo
// el pin grant de ese tenant tal como viene del registro de usuario.
type TenantRef struct {
	ID   string
	Code string
	Pin  PinGrant
}

// UserRecord representa un registro de usuario/credencial.
//
// PinLocked es derivado, nunca persistido: se marca durante la evaluación de
// un grant cuando el tenant exige PIN, y se descarta con el request.
type UserRecord struct {
	ID           string
	Username     string
	PasswordHash string
	LoginMode    string
	Tenant       TenantRef
	PinLocked    bool
}

// UserRepository define el contrato de lectura sobre user records,
// independiente de la tecnología de storage.
type UserRepository interface {
	// GetByUsername busca un record por username.
	// Retorna ErrNotFound si no existe.
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)

	// GetByPin busca un record por su PIN.
	// Retorna ErrNotFound si no existe.
	GetByPin(ctx context.Context, pin string) (*UserRecord, error)

	// ValidateID normaliza y valida un identificador crudo.
	// Retorna ErrInvalidInput si es malformado (distinto de not found).
	ValidateID(raw string) (string, error)
}
