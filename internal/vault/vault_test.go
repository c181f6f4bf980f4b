// internal/vault/vault_test.go
//
// Unit-tests for the reference-path helpers; network behavior is covered
// by the Vault SDK itself.
//
// Run: go test ./internal/vault -v

package vault

import (
	"context"
	"testing"
)

func TestSplitMount(t *testing.T) {
	cases := []struct {
		in    string
		mount string
		rel   string
	}{
		{"secret/folio", "secret", "folio"},
		{"secret/team/folio", "secret", "team/folio"},
		{"secret", "secret", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		mount, rel := splitMount(tc.in)
		if mount != tc.mount || rel != tc.rel {
			t.Errorf("splitMount(%q) = (%q, %q), want (%q, %q)",
				tc.in, mount, rel, tc.mount, tc.rel)
		}
	}
}

func TestGetKV_RejectsEmptyArgs(t *testing.T) {
	c := &Client{logFn: func(string, ...any) {}}

	if _, err := c.GetKV(context.Background(), "", "key"); err == nil {
		t.Error("empty path accepted")
	}
	if _, err := c.GetKV(context.Background(), "secret/folio", ""); err == nil {
		t.Error("empty key accepted")
	}
}
