package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
	"github.com/rockspoon/soajs.oauth/internal/oauth"
	"github.com/rockspoon/soajs.oauth/internal/provision"
)

type fakeRevokes struct {
	removed  int64
	err      error
	lastArg  string
	lastCall string
}

func (f *fakeRevokes) DeleteAccessToken(_ context.Context, token string) (oauth.Removed, error) {
	f.lastCall, f.lastArg = "access", token
	return oauth.Removed{Removed: f.removed}, f.err
}
func (f *fakeRevokes) DeleteRefreshToken(_ context.Context, token string) (oauth.Removed, error) {
	f.lastCall, f.lastArg = "refresh", token
	return oauth.Removed{Removed: f.removed}, f.err
}
func (f *fakeRevokes) DeleteAllForUser(_ context.Context, userID string) (oauth.Removed, error) {
	f.lastCall, f.lastArg = "user", userID
	return oauth.Removed{Removed: f.removed}, f.err
}
func (f *fakeRevokes) DeleteAllForClient(_ context.Context, clientID string) (oauth.Removed, error) {
	f.lastCall, f.lastArg = "client", clientID
	return oauth.Removed{Removed: f.removed}, f.err
}

// revokeRouter monta los handlers igual que el router real para que
// chi.URLParam resuelva.
func revokeRouter(svc oauth.RevokeService) http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodDelete, "/accessToken/{token}", DeleteAccessToken(svc))
	r.Method(http.MethodDelete, "/refreshToken/{token}", DeleteRefreshToken(svc))
	r.Method(http.MethodDelete, "/tokens/user/{userId}", DeleteUserTokens(svc))
	r.Method(http.MethodDelete, "/tokens/tenant/{clientId}", DeleteClientTokens(svc))
	return r
}

func doDelete(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRevokeHandlers_RouteToService(t *testing.T) {
	cases := []struct {
		path     string
		wantCall string
		wantArg  string
	}{
		{"/accessToken/tok-a", "access", "tok-a"},
		{"/refreshToken/tok-r", "refresh", "tok-r"},
		{"/tokens/user/u-1", "user", "u-1"},
		{"/tokens/tenant/TEN1", "client", "TEN1"},
	}
	for _, tc := range cases {
		svc := &fakeRevokes{removed: 1}
		rr := doDelete(t, revokeRouter(svc), tc.path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tc.path, rr.Code)
		}
		if svc.lastCall != tc.wantCall || svc.lastArg != tc.wantArg {
			t.Fatalf("%s: call = %s(%q)", tc.path, svc.lastCall, svc.lastArg)
		}

		var out oauth.Removed
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s: decode: %v", tc.path, err)
		}
		if out.Removed != 1 {
			t.Fatalf("%s: removed = %d", tc.path, out.Removed)
		}
	}
}

func TestRevokeHandlers_NotFoundIsStillOK(t *testing.T) {
	svc := &fakeRevokes{removed: 0}
	rr := doDelete(t, revokeRouter(svc), "/accessToken/ghost")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with removed=0", rr.Code)
	}
	var out oauth.Removed
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	if out.Removed != 0 {
		t.Fatalf("removed = %d, want 0", out.Removed)
	}
}

func TestRevokeHandlers_InvalidIdentifier(t *testing.T) {
	svc := &fakeRevokes{err: oauth.ErrInvalidIdentifier}
	rr := doDelete(t, revokeRouter(svc), "/tokens/user/bad-id")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var body struct {
		ErrorCode int `json:"error_code"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if body.ErrorCode != 426 {
		t.Fatalf("error_code = %d, want 426", body.ErrorCode)
	}
}

// staticTenantsSource es un ProvisionSource fijo para armar el cache.
type staticTenantsSource struct{}

func (staticTenantsSource) Load(context.Context) (map[string]repository.TenantOauthConfig, error) {
	return map[string]repository.TenantOauthConfig{
		"TEN1": {TenantID: "TEN1", Secret: "s"},
	}, nil
}

func TestReloadProvision_APIKeyGate(t *testing.T) {
	cache := provision.NewCache(staticTenantsSource{})

	h := ReloadProvision(cache, "sekret")

	req := httptest.NewRequest(http.MethodGet, "/admin/provision/reload", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without key", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/provision/reload", nil)
	req.Header.Set("X-Admin-API-Key", "sekret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var body struct {
		Result  bool `json:"result"`
		Tenants int  `json:"tenants"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Result {
		t.Fatal("expected result=true")
	}
}

func TestReadyz_LifeCycle(t *testing.T) {
	cache := provision.NewCache(staticTenantsSource{})
	h := Readyz(cache)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 before first load", rr.Code)
	}

	if !cache.Reload(context.Background()) {
		t.Fatal("reload failed")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 after load", rr.Code)
	}
}
