// internal/csrf/csrf.go
//
// Folio – Session-bound CSRF tokens.
//
// Context
//   The contact form embeds a hidden `csrf_token` input populated from
//   GET /api/contact.  The server must verify this token on POST to ensure
//   the request originated from a page that recently loaded this session’s
//   form.  Unlike a stateless HMAC design, the token here is a plain
//   *session-scoped secret*:
//
//      hex( 32 random bytes )   stored in the visitor’s session
//
//   Exactly one live token exists per session.  Issuance is lazy and
//   idempotent: the first read generates and stores the value, every later
//   read returns it unchanged.  The token survives a successful submission
//   (clients re-fetch after sending and simply receive the same value);
//   only session expiry ends its life.
//
// Workflow
//   •  Token(sess)              → issue-or-get, for the page-load fetch.
//   •  Validate(sess, presented) → constant-time verify; false on any failure.
//
//------------------------------------------------------------------------------

package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"

	"github.com/foliohq/folio/internal/metrics"
	"github.com/foliohq/folio/internal/session"
)

// tokenBytes is the entropy of one token; hex-encoding doubles the length
// on the wire (64 characters).
const tokenBytes = 32

// Token returns the session’s anti-forgery token, generating and storing
// one on first read.  It never fails for an existing token; the only error
// source is the system randomness pool.
func Token(s *session.Session) (string, error) {
	if tok := s.CSRFToken(); tok != "" {
		return tok, nil
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	// If two first-load requests race, SetCSRFTokenIfEmpty keeps exactly
	// one winner and both callers observe the same value.
	tok := s.SetCSRFTokenIfEmpty(hex.EncodeToString(raw))
	metrics.CSRFIssuedTotal.Inc()
	return tok, nil
}

// Validate reports whether presented exactly matches the session’s live
// token.  An absent or empty presented token always fails, as does a
// session that has never issued one.  Comparison is constant-time.
func Validate(s *session.Session, presented string) bool {
	current := s.CSRFToken()
	if presented == "" || current == "" {
		return false
	}
	return hmac.Equal([]byte(presented), []byte(current))
}
