package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/itshmoh/exambot/internal/core/domain"
)

// SessionRepository persists users and chat sessions. Session context is
// stored as one JSON document per session, matching how the conversational
// layer consumes it (whole history per turn).
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	session_name TEXT NOT NULL,
	context JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_sessions_user_id ON chat_sessions(user_id, updated_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// CreateUser returns the existing user when the name is already taken.
func (r *SessionRepository) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	now := time.Now().UTC()
	user := domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
	}

	row := r.db.QueryRowContext(ctx, `
INSERT INTO users (id, name, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, created_at
`, user.ID, user.Name, user.CreatedAt)

	if err := row.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (r *SessionRepository) GetUserByName(ctx context.Context, name string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, created_at
FROM users
WHERE name = $1
`, name)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrUserNotFound, "get user by name", err)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

func (r *SessionRepository) CreateSession(ctx context.Context, userID, name string) (*domain.ChatSession, error) {
	now := time.Now().UTC()
	if name == "" {
		name = "Chat " + now.Format("01/02 15:04")
	}
	session := domain.ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Context:   []domain.ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO chat_sessions (id, user_id, session_name, context, created_at, updated_at)
VALUES ($1, $2, $3, '[]'::jsonb, $4, $4)
`, session.ID, session.UserID, session.Name, now)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, session_name, created_at, updated_at
FROM chat_sessions
WHERE user_id = $1
ORDER BY updated_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ChatSession, 0, 8)
	for rows.Next() {
		var session domain.ChatSession
		if err := rows.Scan(&session.ID, &session.UserID, &session.Name, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, session_name, context, created_at, updated_at
FROM chat_sessions
WHERE id = $1
`, sessionID)

	var session domain.ChatSession
	var contextRaw []byte
	if err := row.Scan(&session.ID, &session.UserID, &session.Name, &contextRaw, &session.CreatedAt, &session.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", err)
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if err := json.Unmarshal(contextRaw, &session.Context); err != nil {
		return nil, fmt.Errorf("unmarshal session context: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) UpdateSessionContext(ctx context.Context, sessionID string, messages []domain.ChatMessage) error {
	contextJSON, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal session context: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE chat_sessions
SET context = $2, updated_at = $3
WHERE id = $1
`, sessionID, contextJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update session context: %w", err)
	}
	return r.requireSessionRow(result, "update session context")
}

func (r *SessionRepository) RenameSession(ctx context.Context, sessionID, name string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE chat_sessions
SET session_name = $2, updated_at = $3
WHERE id = $1
`, sessionID, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("rename session: %w", err)
	}
	return r.requireSessionRow(result, "rename session")
}

func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	result, err := r.db.ExecContext(ctx, `
DELETE FROM chat_sessions
WHERE id = $1
`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return r.requireSessionRow(result, "delete session")
}

func (r *SessionRepository) requireSessionRow(result sql.Result, operation string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrSessionNotFound, operation, sql.ErrNoRows)
	}
	return nil
}
