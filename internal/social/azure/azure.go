// Package azure implementa el provider adapter para Azure AD OAuth2.
package azure

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rockspoon/soajs.oauth/internal/social"
)

const ProviderName = "azure_ad_oauth2"

// Config es la configuración del adapter.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	// Tenant restringe el login a un directorio específico; vacío usa el
	// endpoint común multi-tenant.
	Tenant            string
	Resource          string
	UseCommonEndpoint bool
}

// Provider es el adapter de Azure AD.
type Provider struct {
	cfg Config
}

// New valida la configuración y crea el adapter.
func New(cfg Config) (*Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.CallbackURL == "" {
		return nil, fmt.Errorf("azure: configuration is not complete")
	}
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	return &Provider{cfg: cfg}, nil
}

// Name retorna el nombre del provider.
func (p *Provider) Name() string { return ProviderName }

// AuthorizeURL arma la URL de autorización de Azure AD.
func (p *Provider) AuthorizeURL(state string) string {
	tenant := p.cfg.Tenant
	if tenant == "" || p.cfg.UseCommonEndpoint {
		tenant = "common"
	}
	q := url.Values{}
	q.Set("client_id", p.cfg.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", p.cfg.CallbackURL)
	q.Set("state", state)
	if p.cfg.Resource != "" {
		q.Set("resource", p.cfg.Resource)
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/authorize?%s", tenant, q.Encode())
}

// MapProfile normaliza el resultado del flujo de Azure. El id_token, si
// vino, pisa al perfil crudo (ver social.Normalize).
func (p *Provider) MapProfile(resp social.ProviderResponse) social.Profile {
	return social.Normalize(resp)
}
