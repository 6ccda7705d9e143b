package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar HTTP.

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// Campos estándar de negocio.

// TenantID crea un campo para el tenant.
func TenantID(v string) zap.Field {
	return zap.String("tenant_id", v)
}

// ClientID crea un campo para el client OAuth.
func ClientID(v string) zap.Field {
	return zap.String("client_id", v)
}

// UserID crea un campo para el usuario.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Username crea un campo para el username (nunca loguear passwords/pins).
func Username(v string) zap.Field {
	return zap.String("username", v)
}

// Grant crea un campo para el grant type solicitado.
func Grant(v string) zap.Field {
	return zap.String("grant", v)
}

// Removed crea un campo para el conteo de tokens revocados.
func Removed(v int64) zap.Field {
	return zap.Int64("removed", v)
}

// Campos de infraestructura.

// Layer identifica la capa (handler, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Component identifica el componente dentro de la capa.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op identifica la operación.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Err crea un campo de error.
func Err(err error) zap.Field {
	return zap.Error(err)
}
