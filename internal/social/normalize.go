package social

import (
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Normalize mapea la respuesta de un provider al perfil canónico.
//
// Si la respuesta trae un id_token, su payload reemplaza al perfil de alto
// nivel como fuente de claims. El id_token se decodifica SIN verificar firma:
// la verificación criptográfica es responsabilidad del provider adapter que
// completó el flujo; acá solo se extraen claims.
func Normalize(resp ProviderResponse) Profile {
	source := resp.Profile
	if idt := resp.Params["id_token"]; idt != "" {
		if claims := decodeIDToken(idt); claims != nil {
			source = claims
		}
	}

	p := Profile{
		FirstName:       str(source, "given_name"),
		LastName:        str(source, "family_name"),
		Email:           str(source, "email"),
		OriginalProfile: source,
		AccessToken:     resp.AccessToken,
		RefreshToken:    resp.RefreshToken,
	}

	// email claim explícito, después el principal name.
	if p.Email == "" {
		p.Email = str(source, "upn")
	}

	// id y username salen ambos del subject opaco del provider.
	sub := str(source, "oid")
	if sub == "" {
		sub = str(source, "sub")
	}
	p.ID = sub
	p.Username = sub

	// Fallback de nombre: si given/family faltan y hay un "name" combinado,
	// se parte en el PRIMER espacio. El resto después del índice queda como
	// apellido tal cual (sin trim de espacios múltiples, comportamiento
	// legacy preservado). Sin espacio, ambos quedan vacíos.
	if p.FirstName == "" && p.LastName == "" {
		if name := str(source, "name"); name != "" {
			if i := strings.Index(name, " "); i != -1 {
				p.FirstName = name[:i]
				if i+1 < len(name) {
					p.LastName = name[i+1:]
				}
			}
		}
	}

	return p
}

// decodeIDToken extrae los claims del payload de un JWT sin validar firma.
// Retorna nil si el token no parsea.
func decodeIDToken(raw string) map[string]any {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil
	}
	return map[string]any(claims)
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
