// internal/contact/store.go
//
// Folio – Submission archive.
//
// Context
//   Every accepted submission is archived in MySQL before delivery is
//   attempted, so a flaky relay never loses a message.  The archive is
//   best-effort from the visitor’s point of view: an insert failure is
//   logged and surfaced in metrics, but the handler still tries to deliver.
//
//------------------------------------------------------------------------------

package contact

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Submission is one archived contact-form send.
type Submission struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Message   string    `db:"message"`
	UserAgent string    `db:"user_agent"`
	Country   string    `db:"country"`
	CreatedAt time.Time `db:"created_at"`
}

// Store wraps the submission table.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// schema is applied idempotently at boot.
const schema = `
CREATE TABLE IF NOT EXISTS contact_submission (
    id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    name       VARCHAR(255)  NOT NULL,
    email      VARCHAR(255)  NOT NULL,
    message    TEXT          NOT NULL,
    user_agent VARCHAR(512)  NOT NULL DEFAULT '',
    country    CHAR(2)       NOT NULL DEFAULT '',
    created_at TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP,
    KEY idx_created (created_at)
)`

// EnsureSchema creates the table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Insert archives one submission and fills in its ID.
func (s *Store) Insert(ctx context.Context, sub *Submission) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_submission (name, email, message, user_agent, country) VALUES (?, ?, ?, ?, ?)`,
		sub.Name, sub.Email, sub.Message, sub.UserAgent, sub.Country,
	)
	if err != nil {
		return err
	}
	sub.ID, _ = res.LastInsertId()
	return nil
}

// Recent returns the latest submissions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []Submission
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, name, email, message, user_agent, country, created_at
		   FROM contact_submission ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	return out, err
}
