package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
	"github.com/rockspoon/soajs.oauth/internal/oauth"
	"github.com/rockspoon/soajs.oauth/internal/security/password"
	tokens "github.com/rockspoon/soajs.oauth/internal/security/token"
)

type memTokens struct {
	access  map[string]repository.Token
	refresh map[string]repository.Token
}

func newMemTokens() *memTokens {
	return &memTokens{access: map[string]repository.Token{}, refresh: map[string]repository.Token{}}
}

func (m *memTokens) SaveAccessToken(_ context.Context, t repository.Token) error {
	m.access[t.Token] = t
	return nil
}
func (m *memTokens) SaveRefreshToken(_ context.Context, t repository.Token) error {
	m.refresh[t.Token] = t
	return nil
}
func (m *memTokens) GetRefreshToken(_ context.Context, token string) (*repository.Token, error) {
	if t, ok := m.refresh[token]; ok {
		return &t, nil
	}
	return nil, repository.ErrNotFound
}
func (m *memTokens) DeleteAccessToken(_ context.Context, token string) (int64, error) {
	if _, ok := m.access[token]; ok {
		delete(m.access, token)
		return 1, nil
	}
	return 0, nil
}
func (m *memTokens) DeleteRefreshToken(_ context.Context, token string) (int64, error) {
	if _, ok := m.refresh[token]; ok {
		delete(m.refresh, token)
		return 1, nil
	}
	return 0, nil
}
func (m *memTokens) DeleteAllByUser(context.Context, string) (int64, error)   { return 0, nil }
func (m *memTokens) DeleteAllByClient(context.Context, string) (int64, error) { return 0, nil }

func lookupFor(rec *repository.UserRecord) oauth.UserLookup {
	return func(context.Context, string, string) (*repository.UserRecord, error) {
		return rec, nil
	}
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	// Parámetros bajos para que el test no pague 64MB por hash.
	h, err := password.Hash(password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}, plain)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h
}

func TestGrant_RejectsDisallowedGrantType(t *testing.T) {
	e := New(Deps{Tokens: newMemTokens()})
	cfg := repository.TenantOauthConfig{TenantID: "A", Grants: []string{"refresh_token"}}

	_, err := e.Grant(context.Background(), cfg, oauth.GrantRequest{
		GrantType: repository.GrantPassword, Username: "jane", Password: "pw",
	}, lookupFor(nil))
	if !errors.Is(err, ErrGrantNotAllowed) {
		t.Fatalf("expected ErrGrantNotAllowed, got %v", err)
	}
}

func TestGrant_MissingCredentials(t *testing.T) {
	e := New(Deps{Tokens: newMemTokens()})
	cfg := repository.TenantOauthConfig{TenantID: "A", Grants: []string{"password"}}

	_, err := e.Grant(context.Background(), cfg, oauth.GrantRequest{
		GrantType: repository.GrantPassword, Username: "jane",
	}, lookupFor(nil))
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestGrant_PasswordVerified(t *testing.T) {
	store := newMemTokens()
	e := New(Deps{Tokens: store})
	cfg := repository.TenantOauthConfig{TenantID: "A", Grants: []string{"password"}}
	rec := &repository.UserRecord{ID: "u-1", Username: "jane", PasswordHash: mustHash(t, "s3cret")}

	// Password incorrecto.
	_, err := e.Grant(context.Background(), cfg, oauth.GrantRequest{
		GrantType: repository.GrantPassword, Username: "jane", Password: "wrong",
	}, lookupFor(rec))
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}

	// Password correcto: par emitido y hashes persistidos.
	pair, err := e.Grant(context.Background(), cfg, oauth.GrantRequest{
		GrantType: repository.GrantPassword, Username: "jane", Password: "s3cret",
	}, lookupFor(rec))
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("incomplete pair: %+v", pair)
	}
	if pair.TokenType != "Bearer" {
		t.Fatalf("token type = %q, want Bearer", pair.TokenType)
	}
	if _, ok := store.access[tokens.Hash(pair.AccessToken)]; !ok {
		t.Fatal("access token hash not persisted")
	}
	if _, ok := store.refresh[tokens.Hash(pair.RefreshToken)]; !ok {
		t.Fatal("refresh token hash not persisted")
	}
	// Nunca se persiste el valor plano.
	if _, ok := store.access[pair.AccessToken]; ok {
		t.Fatal("plain access token persisted")
	}
}

func TestGrant_PinSkipsPasswordCheck(t *testing.T) {
	e := New(Deps{Tokens: newMemTokens()})
	cfg := repository.TenantOauthConfig{TenantID: "A", Grants: []string{"pin"}}
	// El hash no corresponde al sentinel: si el engine verificara password
	// en el PIN grant, esto fallaría.
	rec := &repository.UserRecord{ID: "u-1", PasswordHash: mustHash(t, "otracosa")}

	_, err := e.Grant(context.Background(), cfg, oauth.GrantRequest{
		GrantType: repository.GrantPin,
		Username:  oauth.SentinelCredential,
		Password:  oauth.SentinelCredential,
	}, lookupFor(rec))
	if err != nil {
		t.Fatalf("pin grant: %v", err)
	}
}

func TestGrant_RefreshRotation(t *testing.T) {
	store := newMemTokens()
	e := New(Deps{Tokens: store})
	cfg := repository.TenantOauthConfig{
		TenantID: "A",
		Grants:   []string{"password", "refresh_token"},
	}
	rec := &repository.UserRecord{ID: "u-1", Username: "jane", PasswordHash: mustHash(t, "pw")}

	first, err := e.Grant(context.Background(), cfg, oauth.GrantRequest{
		GrantType: repository.GrantPassword, Username: "jane", Password: "pw",
	}, lookupFor(rec))
	if err != nil {
		t.Fatalf("initial grant: %v", err)
	}

	second, err := e.Grant(context.Background(), cfg, oauth.GrantRequest{
		GrantType: repository.GrantRefreshToken, RefreshToken: first.RefreshToken,
	}, nil)
	if err != nil {
		t.Fatalf("refresh grant: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh token not rotated")
	}

	// El refresh viejo quedó inválido.
	_, err = e.Grant(context.Background(), cfg, oauth.GrantRequest{
		GrantType: repository.GrantRefreshToken, RefreshToken: first.RefreshToken,
	}, nil)
	if !errors.Is(err, ErrBadRefreshToken) {
		t.Fatalf("expected ErrBadRefreshToken on reuse, got %v", err)
	}
}

func TestGrant_RefreshRejectsCrossTenant(t *testing.T) {
	store := newMemTokens()
	e := New(Deps{Tokens: store})

	// Refresh emitido para el tenant A.
	refresh, _ := tokens.GenerateOpaque(32)
	_ = store.SaveRefreshToken(context.Background(), repository.Token{
		Token:     tokens.Hash(refresh),
		UserID:    "u-1",
		ClientID:  "A",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	cfgB := repository.TenantOauthConfig{TenantID: "B", Grants: []string{"refresh_token"}}
	_, err := e.Grant(context.Background(), cfgB, oauth.GrantRequest{
		GrantType: repository.GrantRefreshToken, RefreshToken: refresh,
	}, nil)
	if !errors.Is(err, ErrBadRefreshToken) {
		t.Fatalf("expected ErrBadRefreshToken cross tenant, got %v", err)
	}
}
