package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/rockspoon/soajs.oauth/internal/domain/repository"
)

type fakeSource struct {
	tenants map[string]repository.TenantOauthConfig
	err     error
	calls   int
}

func (f *fakeSource) Load(context.Context) (map[string]repository.TenantOauthConfig, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tenants, nil
}

func TestCache_GetBeforeLoadIsNil(t *testing.T) {
	c := NewCache(&fakeSource{})
	if cfg := c.Get("A"); cfg != nil {
		t.Fatalf("expected nil before load, got %+v", cfg)
	}
	if !c.LoadedAt().IsZero() {
		t.Fatal("expected zero LoadedAt before load")
	}
}

func TestCache_ReloadPublishes(t *testing.T) {
	src := &fakeSource{tenants: map[string]repository.TenantOauthConfig{
		"A": {TenantID: "A", Secret: "s1"},
		"B": {TenantID: "B", Secret: "s2"},
	}}
	c := NewCache(src)
	if !c.Reload(context.Background()) {
		t.Fatal("reload failed")
	}
	if c.Count() != 2 {
		t.Fatalf("count = %d, want 2", c.Count())
	}
	if cfg := c.Get("A"); cfg == nil || cfg.Secret != "s1" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if c.LoadedAt().IsZero() {
		t.Fatal("expected LoadedAt set after reload")
	}
}

func TestCache_FailedReloadKeepsSnapshot(t *testing.T) {
	src := &fakeSource{tenants: map[string]repository.TenantOauthConfig{
		"A": {TenantID: "A", Secret: "old"},
	}}
	c := NewCache(src)
	if !c.Reload(context.Background()) {
		t.Fatal("reload failed")
	}

	src.err = errors.New("db down")
	if c.Reload(context.Background()) {
		t.Fatal("expected reload to report failure")
	}
	// El snapshot anterior sigue sirviendo.
	if cfg := c.Get("A"); cfg == nil || cfg.Secret != "old" {
		t.Fatalf("previous snapshot lost: %+v", cfg)
	}
}

func TestCache_SnapshotIsolation(t *testing.T) {
	// Una config ya leída no cambia aunque un reload publique otra versión.
	src := &fakeSource{tenants: map[string]repository.TenantOauthConfig{
		"A": {TenantID: "A", Secret: "v1"},
	}}
	c := NewCache(src)
	_ = c.Reload(context.Background())

	held := c.Get("A")

	src.tenants = map[string]repository.TenantOauthConfig{
		"A": {TenantID: "A", Secret: "v2"},
	}
	if !c.Reload(context.Background()) {
		t.Fatal("second reload failed")
	}

	if held.Secret != "v1" {
		t.Fatalf("held config mutated by reload: %q", held.Secret)
	}
	if fresh := c.Get("A"); fresh == nil || fresh.Secret != "v2" {
		t.Fatalf("expected new snapshot visible to new reads, got %+v", fresh)
	}
}

func TestCache_GetReturnsCopy(t *testing.T) {
	src := &fakeSource{tenants: map[string]repository.TenantOauthConfig{
		"A": {TenantID: "A", Grants: []string{"password"}},
	}}
	c := NewCache(src)
	_ = c.Reload(context.Background())

	a := c.Get("A")
	a.Secret = "mutated"

	if b := c.Get("A"); b.Secret == "mutated" {
		t.Fatal("Get must return a copy, snapshot was mutated through it")
	}
}
