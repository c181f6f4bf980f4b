// internal/contact/store_test.go
//
// Unit-tests for the submission archive using sqlmock.
//
// Run: go test ./internal/contact -v

package contact

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestStoreInsert(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO contact_submission (name, email, message, user_agent, country) VALUES (?, ?, ?, ?, ?)`,
	)).
		WithArgs("Jane", "j@x.com", "&lt;b&gt;hi&lt;/b&gt;", "Mozilla/5.0", "US").
		WillReturnResult(sqlmock.NewResult(7, 1))

	sub := Submission{
		Name:      "Jane",
		Email:     "j@x.com",
		Message:   "&lt;b&gt;hi&lt;/b&gt;",
		UserAgent: "Mozilla/5.0",
		Country:   "US",
	}
	if err := store.Insert(context.Background(), &sub); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if sub.ID != 7 {
		t.Fatalf("ID = %d, want 7", sub.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestStoreRecent(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, name, email, message, user_agent, country, created_at
		   FROM contact_submission ORDER BY created_at DESC, id DESC LIMIT ?`,
	)).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "email", "message", "user_agent", "country", "created_at"}).
			AddRow(2, "B", "b@x.com", "later", "", "", now).
			AddRow(1, "A", "a@x.com", "earlier", "", "", now.Add(-time.Hour)))

	got, err := store.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].Name != "B" || got[1].Name != "A" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
