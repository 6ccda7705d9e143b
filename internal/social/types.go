// Package social normaliza perfiles de identity providers externos a la
// forma canónica que consume el resto del servicio.
package social

// ProviderResponse es la tupla opaca que produce un provider adapter al
// completar su flujo OAuth/OIDC. El servicio no participa del flujo en sí;
// solo consume este resultado.
type ProviderResponse struct {
	AccessToken  string
	RefreshToken string
	// Params son los parámetros crudos del token endpoint del provider
	// (ej: id_token).
	Params map[string]string
	// Profile es el perfil de alto nivel que ya armó el adapter, si lo hay.
	Profile map[string]any
}

// Profile es el perfil canónico.
type Profile struct {
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName"`
	Email           string         `json:"email"`
	Username        string         `json:"username"`
	ID              string         `json:"id"`
	OriginalProfile map[string]any `json:"originalProfile"`
	AccessToken     string         `json:"accessToken"`
	RefreshToken    string         `json:"refreshToken"`
}
