package oauth

import (
	"errors"
	"fmt"
)

// Error es un error de negocio con código estable. Los códigos numéricos se
// mantienen compatibles con el servicio original para que los clientes puedan
// branchear sobre ellos (ej: 450 dispara el flujo de PIN en las apps).
type Error struct {
	Code int
	Msg  string
	// Cause es el error subyacente cuando este Error envuelve una falla
	// externa (engine, store). Puede ser nil.
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (code %d): %v", e.Msg, e.Code, e.Cause)
	}
	return fmt.Sprintf("%s (code %d)", e.Msg, e.Code)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is permite errors.Is contra los sentinels de este paquete comparando por
// código, aunque la instancia haya sido creada con Cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

var (
	// ErrUserNotFound: no existe un record con ese username.
	ErrUserNotFound = &Error{Code: 401, Msg: "unable to log in the user, user not found"}

	// ErrPinNotFound: no existe un record con ese PIN.
	ErrPinNotFound = &Error{Code: 402, Msg: "unable to log in the user, pin not found"}

	// ErrTenantNotAuthorized: no hay relación de confianza entre el tenant
	// del usuario y el tenant solicitante.
	ErrTenantNotAuthorized = &Error{Code: 403, Msg: "user does not have access to this tenant"}

	// ErrInvalidIdentifier: identificador malformado (distinto de not found).
	ErrInvalidIdentifier = &Error{Code: 426, Msg: "invalid identifier provided"}

	// ErrPinRequired: el tenant exige PIN y el scope efectivo no lo permite.
	// Código fijo: las apps cliente branchean sobre 450.
	ErrPinRequired = &Error{Code: 450, Msg: "you need to provide a pin code to login"}

	// ErrProvisioningUnavailable: el tenant no está en el snapshot de provisión.
	ErrProvisioningUnavailable = &Error{Code: 600, Msg: "tenant oauth configuration not provisioned"}
)

// WrapEngine envuelve una falla del grant engine (o del store subyacente)
// como error de código 601. Si err ya es un *Error de negocio, se retorna
// sin envolver para preservar su código estable.
func WrapEngine(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: 601, Msg: "grant engine failure", Cause: err}
}

// AsError extrae el *Error de negocio de err, si lo hay.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
