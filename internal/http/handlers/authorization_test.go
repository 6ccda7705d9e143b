package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rockspoon/soajs.oauth/internal/provision"
)

func TestAuthorization_BuildsBasicValue(t *testing.T) {
	cache := provision.NewCache(staticTenantsSource{})
	if !cache.Reload(context.Background()) {
		t.Fatal("reload failed")
	}
	h := Authorization(cache)

	req := httptest.NewRequest(http.MethodGet, "/authorization", nil)
	req.Header.Set(TenantHeader, "TEN1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}
	var body struct {
		Authorization string `json:"authorization"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("TEN1:s"))
	if body.Authorization != want {
		t.Fatalf("authorization = %q, want %q", body.Authorization, want)
	}
}

func TestAuthorization_UnknownTenantIs503(t *testing.T) {
	cache := provision.NewCache(staticTenantsSource{})
	_ = cache.Reload(context.Background())
	h := Authorization(cache)

	req := httptest.NewRequest(http.MethodGet, "/authorization", nil)
	req.Header.Set(TenantHeader, "GHOST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestAuthorization_MissingTenant(t *testing.T) {
	h := Authorization(provision.NewCache(staticTenantsSource{}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/authorization", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
