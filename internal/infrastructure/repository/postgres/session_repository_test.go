package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/itshmoh/exambot/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*SessionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &SessionRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetSessionReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, user_id, session_name, context").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetSession(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetSessionUnmarshalsContext(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	contextJSON := `[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]`
	rows := sqlmock.NewRows([]string{"id", "user_id", "session_name", "context", "created_at", "updated_at"}).
		AddRow("s-1", "u-1", "Chat", []byte(contextJSON), now, now)

	mock.ExpectQuery("SELECT id, user_id, session_name, context").
		WithArgs("s-1").
		WillReturnRows(rows)

	session, err := repo.GetSession(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if len(session.Context) != 2 || session.Context[0].Role != "user" {
		t.Fatalf("unexpected context %+v", session.Context)
	}
}

func TestUpdateSessionContextReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs("missing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSessionContext(context.Background(), "missing", []domain.ChatMessage{{Role: "user", Content: "hi"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteSessionReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM chat_sessions").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteSession(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCreateUserReturnsExistingOnConflict(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"id", "name", "created_at"}).
		AddRow("existing-id", "moh", time.Now().UTC())

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "moh", sqlmock.AnyArg()).
		WillReturnRows(rows)

	user, err := repo.CreateUser(context.Background(), "moh")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID != "existing-id" {
		t.Fatalf("expected existing user id, got %s", user.ID)
	}
}
