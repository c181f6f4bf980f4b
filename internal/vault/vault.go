// internal/vault/vault.go
//
// Vault client wrapper for Folio.
//
// Context
// -------
//   - Thin wrapper around the HashiCorp Vault Go SDK, scoped to what the
//     boot path needs: the config loader resolves `vault:path#key`
//     references for the database and SMTP passwords, once per Load().
//   - Secrets are read synchronously and handed to config; nothing holds a
//     lease afterwards, so there is no renewal loop and no cache here.
//     Reload() simply resolves again.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, zap.S().Infof)  // lazily, on first ref.
//  2. pw,  err := cli.GetKV(ctx, path, key)      // per reference.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// Client is safe for concurrent use.  Zero value is invalid; construct via
// New.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)
}

// New constructs a Vault client from the standard environment.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token with read access to the referenced secrets.
func New(_ context.Context, logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	logFn("vault client ready, addr=%s", cfg.Address)
	return &Client{api: apiCli, logFn: logFn}, nil
}

// GetKV fetches a single key from a KV-v2 secret.  secretPath is
// "<mount>/<relative path>", e.g. "secret/folio".
func (c *Client) GetKV(ctx context.Context, secretPath, key string) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}

	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	return sval, nil
}

// splitMount separates the KV mount from the path below it.
func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
