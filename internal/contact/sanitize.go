// internal/contact/sanitize.go
//
// Folio – Submission field sanitizer.
//
// Context
//   Submitted fields are neutralized (escaped, not stripped) before they are
//   logged, persisted, or embedded in the outbound email.  Escaping happens
//   after the CSRF gate; rejected requests never reach it.
//
//   Clean is idempotent: Clean(Clean(x)) == Clean(x).  Plain EscapeString is
//   not (its “&” doubles on every pass), so Clean normalizes entities first.
//   Handlers may therefore apply it defensively at more than one layer
//   without corrupting the text.
//
//------------------------------------------------------------------------------

package contact

import (
	"html"
	"strings"
)

// Clean trims surrounding whitespace and HTML-escapes markup-significant
// characters (<, >, &, quotes).
func Clean(s string) string {
	return html.EscapeString(html.UnescapeString(strings.TrimSpace(s)))
}

// CleanAll applies Clean to every value and returns a new slice in the same
// order.
func CleanAll(vals ...string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = Clean(v)
	}
	return out
}
