package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rockspoon/soajs.oauth/internal/social/azure"
)

// AzureLogin maneja GET /azure/login: redirige al endpoint de
// autorización de Azure AD con un state fresco.
func AzureLogin(p *azure.Provider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")
		if state == "" {
			state = uuid.NewString()
		}
		http.Redirect(w, r, p.AuthorizeURL(state), http.StatusFound)
	})
}
