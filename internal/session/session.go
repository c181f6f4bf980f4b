// internal/session/session.go
//
// Folio – Visitor sessions.
//
// Context
//   The contact flow needs exactly one piece of per-visitor server state:
//   the anti-forgery token bound to the visitor’s session.  A session is
//   identified by a random 32-byte hex ID carried in an HttpOnly cookie;
//   the ID is the only thing the browser ever holds, the token itself stays
//   server-side and is echoed back through the hidden form field.
//
//   Manager.Middleware guarantees every request downstream of it carries a
//   live *Session in its context, creating one (and setting the cookie) on
//   first contact.  All session state is owned here; handlers only read.
//
//------------------------------------------------------------------------------

package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/foliohq/folio/internal/metrics"
)

// Session is one visitor’s server-side state.  The CSRF token is guarded by
// its own mutex so concurrent first-issue requests agree on a single value.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time

	mu   sync.Mutex
	csrf string
}

// Expired reports whether the session is past its deadline at now.
func (s *Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

// CSRFToken returns the session’s current anti-forgery token, or "" when
// none has been issued yet.
func (s *Session) CSRFToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.csrf
}

// SetCSRFTokenIfEmpty installs tok unless a token already exists, and
// returns whichever value is live afterwards.  This makes lazy issuance
// idempotent even when two requests race on a fresh session.
func (s *Session) SetCSRFTokenIfEmpty(tok string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.csrf == "" {
		s.csrf = tok
	}
	return s.csrf
}

// ResetCSRFToken clears the token so the next issue call generates a fresh
// one.  Unused by the submission flow (tokens deliberately survive a
// successful send); exposed for session-reset style admin tooling.
func (s *Session) ResetCSRFToken() {
	s.mu.Lock()
	s.csrf = ""
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Manager: cookie handling + middleware
// -----------------------------------------------------------------------------

// Manager ties a Store to a named cookie and a TTL.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
}

// NewManager wires a Store to cookie parameters from config.
func NewManager(store Store, cookieName string, ttl time.Duration) *Manager {
	return &Manager{store: store, cookieName: cookieName, ttl: ttl}
}

type ctxKey struct{}

// FromContext returns the session attached by Middleware, or nil when the
// middleware has not run.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// Middleware ensures the request has a live session, creating one and
// setting the cookie when the visitor is new or their session expired.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.lookup(r)
		if s == nil {
			var err error
			if s, err = m.create(); err != nil {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			m.setCookie(w, r, s)
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// lookup returns the request’s live session or nil.
func (m *Manager) lookup(r *http.Request) *Session {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	s, ok := m.store.Get(c.Value)
	if !ok {
		return nil
	}
	return s
}

// create mints a session with a fresh random ID and stores it.
func (m *Manager) create() (*Session, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Session{
		ID:        hex.EncodeToString(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	m.store.Put(s)
	metrics.SessionsCreatedTotal.Inc()
	return s, nil
}

// setCookie writes the session cookie.  Secure is keyed off the live
// connection; behind a TLS-terminating proxy, ForceHTTPS upstream ensures
// browsers only ever see HTTPS anyway.
func (m *Manager) setCookie(w http.ResponseWriter, r *http.Request, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.ExpiresAt,
	})
}

// Destroy removes the request’s session and clears the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		m.store.Delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
