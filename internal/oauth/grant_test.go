package oauth

import (
	"context"
	"errors"
	"testing"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
	"github.com/rockspoon/soajs.oauth/internal/provision"
)

// fakeUsers implementa repository.UserRepository en memoria.
type fakeUsers struct {
	byUsername map[string]*repository.UserRecord
	byPin      map[string]*repository.UserRecord
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*repository.UserRecord, error) {
	if rec, ok := f.byUsername[username]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByPin(_ context.Context, pin string) (*repository.UserRecord, error) {
	if rec, ok := f.byPin[pin]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) ValidateID(raw string) (string, error) {
	if raw == "" {
		return "", repository.ErrInvalidInput
	}
	return raw, nil
}

// fakeEngine reproduce el contrato del engine real: invoca el lookup que le
// llega por parámetro y propaga su error. No verifica passwords ni persiste.
type fakeEngine struct {
	lastReq GrantRequest
	lastRec *repository.UserRecord
}

func (f *fakeEngine) Grant(ctx context.Context, cfg repository.TenantOauthConfig, req GrantRequest, lookup UserLookup) (*TokenPair, error) {
	f.lastReq = req
	if lookup != nil {
		rec, err := lookup(ctx, req.Username, req.Password)
		if err != nil {
			return nil, err
		}
		f.lastRec = rec
	}
	return &TokenPair{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", ExpiresIn: 3600}, nil
}

// staticSource es un ProvisionSource fijo para armar el cache en tests.
type staticSource struct {
	tenants map[string]repository.TenantOauthConfig
	err     error
}

func (s *staticSource) Load(context.Context) (map[string]repository.TenantOauthConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tenants, nil
}

func newProvision(t *testing.T, tenants map[string]repository.TenantOauthConfig) *provision.Cache {
	t.Helper()
	c := provision.NewCache(&staticSource{tenants: tenants})
	if !c.Reload(context.Background()) {
		t.Fatal("provision reload failed")
	}
	return c
}

func uracUser(tenantID string, pinAllowed bool) *repository.UserRecord {
	return &repository.UserRecord{
		ID:           "u-1",
		Username:     "jane",
		PasswordHash: "$argon2id$...",
		LoginMode:    repository.LoginModeURAC,
		Tenant: repository.TenantRef{
			ID:  tenantID,
			Pin: repository.PinGrant{Allowed: pinAllowed},
		},
	}
}

func TestPasswordGrant_TenantNotProvisioned(t *testing.T) {
	svc := NewGrantService(GrantDeps{
		Users:     &fakeUsers{},
		Provision: newProvision(t, nil),
		Engine:    &fakeEngine{},
	})
	_, err := svc.PasswordGrant(context.Background(), PasswordGrantInput{TenantID: "ghost", Username: "jane", Password: "pw"})
	if !errors.Is(err, ErrProvisioningUnavailable) {
		t.Fatalf("expected 600, got %v", err)
	}
}

func TestPasswordGrant_UserNotFound(t *testing.T) {
	svc := NewGrantService(GrantDeps{
		Users:     &fakeUsers{},
		Provision: newProvision(t, map[string]repository.TenantOauthConfig{"A": {TenantID: "A"}}),
		Engine:    &fakeEngine{},
	})
	_, err := svc.PasswordGrant(context.Background(), PasswordGrantInput{TenantID: "A", Username: "nobody", Password: "pw"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestPasswordGrant_PinRequired(t *testing.T) {
	// Tenant con PIN habilitado y usuario urac cuyo scope efectivo no
	// permite pin: el grant se corta con 450 aunque las credenciales sean
	// correctas (el engine ni llega a verificar el password).
	users := &fakeUsers{byUsername: map[string]*repository.UserRecord{
		"jane": uracUser("A", false),
	}}
	svc := NewGrantService(GrantDeps{
		Users: users,
		Provision: newProvision(t, map[string]repository.TenantOauthConfig{
			"A": {TenantID: "A", Pin: repository.PinPolicy{Enabled: true}},
		}),
		Engine: &fakeEngine{},
	})
	_, err := svc.PasswordGrant(context.Background(), PasswordGrantInput{TenantID: "A", Username: "jane", Password: "correct"})
	if !errors.Is(err, ErrPinRequired) {
		t.Fatalf("expected 450, got %v", err)
	}
}

func TestPasswordGrant_TenantNotAuthorized(t *testing.T) {
	// Usuario de otro tenant sin entry en allowedTenants del solicitante.
	users := &fakeUsers{byUsername: map[string]*repository.UserRecord{
		"jane": uracUser("HOME", true),
	}}
	svc := NewGrantService(GrantDeps{
		Users: users,
		Provision: newProvision(t, map[string]repository.TenantOauthConfig{
			"OTHER": {TenantID: "OTHER", Pin: repository.PinPolicy{Enabled: true}},
		}),
		Engine: &fakeEngine{},
	})
	_, err := svc.PasswordGrant(context.Background(), PasswordGrantInput{TenantID: "OTHER", Username: "jane", Password: "pw"})
	if !errors.Is(err, ErrTenantNotAuthorized) {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestPasswordGrant_PinAllowedPasses(t *testing.T) {
	users := &fakeUsers{byUsername: map[string]*repository.UserRecord{
		"jane": uracUser("A", true),
	}}
	eng := &fakeEngine{}
	svc := NewGrantService(GrantDeps{
		Users: users,
		Provision: newProvision(t, map[string]repository.TenantOauthConfig{
			"A": {TenantID: "A", Pin: repository.PinPolicy{Enabled: true}},
		}),
		Engine: eng,
	})
	pair, err := svc.PasswordGrant(context.Background(), PasswordGrantInput{TenantID: "A", Username: "jane", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if eng.lastRec == nil || !eng.lastRec.PinLocked {
		t.Fatalf("expected pin-locked record reaching the engine, got %+v", eng.lastRec)
	}
}

func TestPasswordGrant_OauthModeSkipsPinGate(t *testing.T) {
	// login_mode=oauth no pasa por el gate de PIN aunque el tenant lo tenga
	// habilitado.
	rec := uracUser("A", false)
	rec.LoginMode = repository.LoginModeOauth
	users := &fakeUsers{byUsername: map[string]*repository.UserRecord{"jane": rec}}
	svc := NewGrantService(GrantDeps{
		Users: users,
		Provision: newProvision(t, map[string]repository.TenantOauthConfig{
			"A": {TenantID: "A", Pin: repository.PinPolicy{Enabled: true}},
		}),
		Engine: &fakeEngine{},
	})
	if _, err := svc.PasswordGrant(context.Background(), PasswordGrantInput{TenantID: "A", Username: "jane", Password: "pw"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPinGrant_SentinelShim(t *testing.T) {
	users := &fakeUsers{byPin: map[string]*repository.UserRecord{
		"1234": uracUser("A", true),
	}}
	eng := &fakeEngine{}
	svc := NewGrantService(GrantDeps{
		Users:     users,
		Provision: newProvision(t, map[string]repository.TenantOauthConfig{"A": {TenantID: "A"}}),
		Engine:    eng,
	})
	if _, err := svc.PinGrant(context.Background(), PinGrantInput{TenantID: "A", Pin: "1234"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.lastReq.Username != SentinelCredential || eng.lastReq.Password != SentinelCredential {
		t.Fatalf("expected sentinel credentials, got %q/%q", eng.lastReq.Username, eng.lastReq.Password)
	}
}

func TestPinGrant_PinNotFound(t *testing.T) {
	svc := NewGrantService(GrantDeps{
		Users:     &fakeUsers{},
		Provision: newProvision(t, map[string]repository.TenantOauthConfig{"A": {TenantID: "A"}}),
		Engine:    &fakeEngine{},
	})
	_, err := svc.PinGrant(context.Background(), PinGrantInput{TenantID: "A", Pin: "0000"})
	if !errors.Is(err, ErrPinNotFound) {
		t.Fatalf("expected 402, got %v", err)
	}
}

func TestGrant_EngineFailureWrappedAs601(t *testing.T) {
	users := &fakeUsers{byUsername: map[string]*repository.UserRecord{
		"jane": uracUser("A", true),
	}}
	boom := errors.New("store down")
	svc := NewGrantService(GrantDeps{
		Users:     users,
		Provision: newProvision(t, map[string]repository.TenantOauthConfig{"A": {TenantID: "A"}}),
		Engine:    failingEngine{err: boom},
	})
	_, err := svc.PasswordGrant(context.Background(), PasswordGrantInput{TenantID: "A", Username: "jane", Password: "pw"})
	e, ok := AsError(err)
	if !ok || e.Code != 601 {
		t.Fatalf("expected code 601, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
}

type failingEngine struct{ err error }

func (f failingEngine) Grant(context.Context, repository.TenantOauthConfig, GrantRequest, UserLookup) (*TokenPair, error) {
	return nil, f.err
}
