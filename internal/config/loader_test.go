// internal/config/loader_test.go
//
// Unit-tests for the layered config loader: YAML base, env overlay, and
// validation failures.
//
// Run: go test ./internal/config -v

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const baseYAML = `
http:
  listen_addr: "127.0.0.1:8080"
  force_https: false
database:
  dsn: "folio:%s@tcp(127.0.0.1:3306)/folio"
  password: "hunter2"
session:
  cookie_name: "folio_session"
  ttl: "24h"
mail:
  host: ""
  port: 587
`

// writeConf lays out <tmp>/conf/global.yaml and points FOLIO_ROOT at it.
func writeConf(t *testing.T, yaml string) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FOLIO_ROOT", root)
}

func TestLoad(t *testing.T) {
	writeConf(t, baseYAML)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.ListenAddr != "127.0.0.1:8080" {
		t.Errorf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Session.CookieName != "folio_session" {
		t.Errorf("cookie_name = %q", cfg.Session.CookieName)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("ttl = %v, want 24h", cfg.Session.TTL)
	}
	if got := cfg.MySQLDSN(); got != "folio:hunter2@tcp(127.0.0.1:3306)/folio" {
		t.Errorf("MySQLDSN = %q", got)
	}
	if Get() != cfg {
		t.Error("Get() does not return the cached config")
	}
}

func TestLoad_EnvOverlay(t *testing.T) {
	writeConf(t, baseYAML)
	t.Setenv("FOLIO_HTTP__LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("FOLIO_SESSION__COOKIE_NAME", "folio_alt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != "127.0.0.1:9999" {
		t.Errorf("env overlay ignored: listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Session.CookieName != "folio_alt" {
		t.Errorf("env overlay ignored: cookie_name = %q", cfg.Session.CookieName)
	}
	// YAML values not overridden stay intact.
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("overlay clobbered ttl: %v", cfg.Session.TTL)
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	writeConf(t, `
http:
  listen_addr: "not-a-hostport"
session:
  cookie_name: "folio_session"
  ttl: "1h"
`)

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted a malformed listen address")
	}
}

func TestLoad_MissingSession(t *testing.T) {
	writeConf(t, `
http:
  listen_addr: "127.0.0.1:8080"
`)

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted a config without the session block")
	}
}
