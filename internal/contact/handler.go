// internal/contact/handler.go
//
// Folio – Contact endpoint: token issuance and form submission.
//
// Context
//   One path, method-dispatched, always application/json:
//
//     GET  /api/contact  → {"csrf_token":"<64-hex>"}          (issue-or-get)
//     POST /api/contact  → {"status":"...","message":"..."}   (submit)
//
//   POST ordering is strict: the presented token is checked against the
//   session *before* any submitted field is read or sanitized.  A mismatch
//   is a 403 and the delivery collaborator is never invoked.  When the
//   token passes, fields are trimmed + escaped, archived, and handed to the
//   Mailer; delivery failure is reported honestly as a 502 instead of a
//   blanket success.
//
//------------------------------------------------------------------------------

package contact

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/foliohq/folio/internal/csrf"
	"github.com/foliohq/folio/internal/message"
	"github.com/foliohq/folio/internal/metrics"
	"github.com/foliohq/folio/internal/requestinfo"
	"github.com/foliohq/folio/internal/session"
)

// Visitor-facing messages.  The success string is part of the public
// contract with the form client and its tests.
const (
	msgSuccess        = "Email Sent Successfully, Hoorray 🎉🎉🎉!"
	msgCSRFFailed     = "CSRF validation failed"
	msgDeliveryFailed = "Message could not be delivered, please try again later"
)

// outcome is the JSON body of every POST response.
type outcome struct {
	Status  string `json:"status"`  // "success" or "error"
	Message string `json:"message"` // human-readable
}

// Handler serves the contact endpoint.
type Handler struct {
	mailer message.Mailer
	store  *Store // nil disables archiving
	to     string // site owner’s inbox
}

// NewHandler wires the endpoint’s collaborators.
func NewHandler(mailer message.Mailer, store *Store, to string) *Handler {
	return &Handler{mailer: mailer, store: store, to: to}
}

// Routes mounts the endpoint on a fresh chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.getToken)
	r.Post("/", h.submit)
	return r
}

// -----------------------------------------------------------------------------
// GET: token issuance
// -----------------------------------------------------------------------------

// getToken returns the session’s token, creating it on first read.
func (h *Handler) getToken(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusInternalServerError,
			outcome{Status: "error", Message: "session unavailable"})
		return
	}

	tok, err := csrf.Token(sess)
	if err != nil {
		zap.S().Errorw("csrf token generation failed", "err", err)
		writeJSON(w, http.StatusInternalServerError,
			outcome{Status: "error", Message: "could not issue token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": tok})
}

// -----------------------------------------------------------------------------
// POST: submission
// -----------------------------------------------------------------------------

// submit validates, sanitizes, archives, and delivers one submission.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusInternalServerError,
			outcome{Status: "error", Message: "session unavailable"})
		return
	}

	// The client posts either urlencoded or multipart; FormValue reads both
	// once the multipart body (if any) is parsed.
	if err := r.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
		writeJSON(w, http.StatusBadRequest,
			outcome{Status: "error", Message: "malformed form body"})
		return
	}

	// CSRF gate first.  No submitted field is touched before this passes.
	if !csrf.Validate(sess, r.FormValue("csrf_token")) {
		metrics.CSRFRejectedTotal.Inc()
		metrics.SubmissionsTotal.WithLabelValues("csrf_failed").Inc()
		writeJSON(w, http.StatusForbidden,
			outcome{Status: "error", Message: msgCSRFFailed})
		return
	}

	name := Clean(r.FormValue("name"))
	email := Clean(r.FormValue("email"))
	body := Clean(r.FormValue("message"))

	sub := Submission{Name: name, Email: email, Message: body}
	if ri := requestinfo.FromContext(r.Context()); ri != nil {
		sub.UserAgent = ri.UA.Raw
		sub.Country = ri.Geo.CountryISO
	}

	// Archive before delivery so a dead relay never loses the message.
	if h.store != nil {
		if err := h.store.Insert(r.Context(), &sub); err != nil {
			zap.S().Errorw("submission archive failed", "err", err)
		}
	}

	err := h.mailer.Send(r.Context(), message.Email{
		To:      []string{h.to},
		ReplyTo: email,
		Subject: "Portfolio contact from " + name,
		Text:    body + "\n\n— " + name + " <" + email + ">",
	})
	if err != nil {
		zap.S().Errorw("submission delivery failed", "err", err, "email", email)
		metrics.SubmissionsTotal.WithLabelValues("delivery_failed").Inc()
		writeJSON(w, http.StatusBadGateway,
			outcome{Status: "error", Message: msgDeliveryFailed})
		return
	}

	zap.S().Infow("submission delivered", "name", name, "email", email)
	metrics.SubmissionsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, outcome{Status: "success", Message: msgSuccess})
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

// writeJSON emits v with the given status.  Every response from this
// endpoint is JSON, including failures.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}
