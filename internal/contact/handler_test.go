// internal/contact/handler_test.go
//
// End-to-end tests for the contact endpoint: token issuance, CSRF
// enforcement, delivery outcomes, and the refresh-after-success contract.
//
// Workflow / Structure
// --------------------
// fakeMailer ── records Send calls and optionally fails, so tests can
// assert the delivery collaborator is (or is not) invoked.
//
// Each test builds the same stack main() does: session middleware wrapping
// the handler routes, then drives it with httptest requests that carry the
// session cookie between calls.
//
// Run: go test ./internal/contact -v

package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foliohq/folio/internal/message"
	"github.com/foliohq/folio/internal/session"
)

// fakeMailer counts deliveries and can be told to fail.
type fakeMailer struct {
	calls int
	last  message.Email
	fail  bool
}

func (f *fakeMailer) Send(_ context.Context, msg message.Email) error {
	f.calls++
	f.last = msg
	if f.fail {
		return errors.New("relay down")
	}
	return nil
}

// newStack wires session middleware + handler the way cmd/web does.
func newStack(mailer message.Mailer) http.Handler {
	manager := session.NewManager(session.NewMemory(), "folio_session", time.Hour)
	r := chi.NewRouter()
	r.Route("/api/contact", func(api chi.Router) {
		api.Use(manager.Middleware)
		api.Mount("/", NewHandler(mailer, nil, "owner@example.com").Routes())
	})
	return r
}

// fetchToken performs the page-load GET and returns the token plus the
// session cookie to echo on subsequent requests.
func fetchToken(t *testing.T, h http.Handler) (string, *http.Cookie) {
	t.Helper()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/contact", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("GET Content-Type = %q", ct)
	}

	var body struct {
		Token string `json:"csrf_token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode GET body: %v", err)
	}
	if len(body.Token) != 64 {
		t.Fatalf("token length = %d, want 64", len(body.Token))
	}

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	return body.Token, cookies[0]
}

// post submits the form with the given token and cookie.
func post(h http.Handler, cookie *http.Cookie, fields url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact",
		strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeOutcome(t *testing.T, rr *httptest.ResponseRecorder) outcome {
	t.Helper()
	var o outcome
	if err := json.Unmarshal(rr.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	return o
}

func TestSubmit_Success(t *testing.T) {
	mailer := &fakeMailer{}
	h := newStack(mailer)
	tok, cookie := fetchToken(t, h)

	rr := post(h, cookie, url.Values{
		"name":       {"Jane"},
		"email":      {"j@x.com"},
		"message":    {"<b>hi</b>"},
		"csrf_token": {tok},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rr.Code, rr.Body)
	}
	o := decodeOutcome(t, rr)
	if o.Status != "success" || o.Message != msgSuccess {
		t.Fatalf("outcome = %+v", o)
	}
	if mailer.calls != 1 {
		t.Fatalf("mailer calls = %d, want 1", mailer.calls)
	}

	// Sanitized fields reach the mailer escaped, never raw.
	if strings.Contains(mailer.last.Text, "<b>") {
		t.Errorf("unescaped markup in delivered text: %q", mailer.last.Text)
	}
	if !strings.Contains(mailer.last.Text, "&lt;b&gt;hi&lt;/b&gt;") {
		t.Errorf("escaped message missing from delivered text: %q", mailer.last.Text)
	}
	if mailer.last.ReplyTo != "j@x.com" {
		t.Errorf("ReplyTo = %q", mailer.last.ReplyTo)
	}
}

func TestSubmit_CSRFRejected(t *testing.T) {
	mailer := &fakeMailer{}
	h := newStack(mailer)
	_, cookie := fetchToken(t, h)

	for _, tok := range []string{"", "wrong"} {
		rr := post(h, cookie, url.Values{
			"name":       {"Jane"},
			"email":      {"j@x.com"},
			"message":    {"hi"},
			"csrf_token": {tok},
		})

		if rr.Code != http.StatusForbidden {
			t.Fatalf("token %q: status = %d, want 403", tok, rr.Code)
		}
		o := decodeOutcome(t, rr)
		if o.Status != "error" || o.Message != msgCSRFFailed {
			t.Fatalf("token %q: outcome = %+v", tok, o)
		}
	}

	if mailer.calls != 0 {
		t.Fatalf("delivery collaborator invoked %d times on rejected submissions", mailer.calls)
	}
}

func TestSubmit_NoSessionCookie(t *testing.T) {
	// Without a prior GET there is no token to match; a fresh session is
	// minted for the POST and validation deterministically fails.
	mailer := &fakeMailer{}
	h := newStack(mailer)

	rr := post(h, nil, url.Values{
		"name":       {"Jane"},
		"email":      {"j@x.com"},
		"message":    {"hi"},
		"csrf_token": {"abc123"},
	})

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
	if mailer.calls != 0 {
		t.Fatal("delivery collaborator invoked without a valid token")
	}
}

func TestSubmit_DeliveryFailed(t *testing.T) {
	mailer := &fakeMailer{fail: true}
	h := newStack(mailer)
	tok, cookie := fetchToken(t, h)

	rr := post(h, cookie, url.Values{
		"name":       {"Jane"},
		"email":      {"j@x.com"},
		"message":    {"hi"},
		"csrf_token": {tok},
	})

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
	o := decodeOutcome(t, rr)
	if o.Status != "error" || o.Message != msgDeliveryFailed {
		t.Fatalf("outcome = %+v", o)
	}
}

func TestTokenRefreshAfterSuccess(t *testing.T) {
	mailer := &fakeMailer{}
	h := newStack(mailer)
	tok, cookie := fetchToken(t, h)

	rr := post(h, cookie, url.Values{
		"name":       {"Jane"},
		"email":      {"j@x.com"},
		"message":    {"hi"},
		"csrf_token": {tok},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	// The client re-fetches after success.  The token is not rotated by a
	// submission, so the same still-valid value comes back, and a second
	// send with it succeeds.
	req := httptest.NewRequest(http.MethodGet, "/api/contact", nil)
	req.AddCookie(cookie)
	rr2 := httptest.NewRecorder()
	h.ServeHTTP(rr2, req)

	var body struct {
		Token string `json:"csrf_token"`
	}
	if err := json.Unmarshal(rr2.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode refresh body: %v", err)
	}
	if body.Token != tok {
		t.Fatalf("token rotated across submissions: %q != %q", body.Token, tok)
	}

	rr3 := post(h, cookie, url.Values{
		"name":       {"Jane"},
		"email":      {"j@x.com"},
		"message":    {"again"},
		"csrf_token": {body.Token},
	})
	if rr3.Code != http.StatusOK {
		t.Fatalf("second submit status = %d, want 200", rr3.Code)
	}
	if mailer.calls != 2 {
		t.Fatalf("mailer calls = %d, want 2", mailer.calls)
	}
}

func TestGetToken_Idempotent(t *testing.T) {
	h := newStack(&fakeMailer{})
	tok, cookie := fetchToken(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/contact", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var body struct {
		Token string `json:"csrf_token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Token != tok {
		t.Fatalf("two reads disagree: %q != %q", body.Token, tok)
	}
}
