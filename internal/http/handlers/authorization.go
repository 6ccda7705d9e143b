package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	httpx "github.com/rockspoon/soajs.oauth/internal/http"
	"github.com/rockspoon/soajs.oauth/internal/oauth"
	"github.com/rockspoon/soajs.oauth/internal/provision"
)

// Authorization maneja GET /authorization: genera el valor de Authorization
// estático del tenant a partir de su provisión (id:secret en base64).
func Authorization(cache *provision.Cache) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := strings.TrimSpace(r.Header.Get(TenantHeader))
		if tenantID == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "missing tenant", 0)
			return
		}

		cfg := cache.Get(tenantID)
		if cfg == nil {
			httpx.WriteOauthError(w, oauth.ErrProvisioningUnavailable)
			return
		}

		value := "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.TenantID+":"+cfg.Secret))
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"authorization": value})
	})
}
