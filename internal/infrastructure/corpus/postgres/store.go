package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/itshmoh/exambot/internal/core/domain"
)

// Store is the full-text-searchable Q&A corpus on PostgreSQL. Relevance
// scores come from ts_rank over per-field tsvector columns.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/loader startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS qa_pairs (
	id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	explanation TEXT,
	topic TEXT,
	type TEXT,
	difficulty TEXT,
	question_tsv TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', question)) STORED,
	answer_tsv TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', answer)) STORED,
	content_tsv TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', question || ' ' || answer)) STORED
);

CREATE INDEX IF NOT EXISTS idx_qa_pairs_question_tsv ON qa_pairs USING GIN (question_tsv);
CREATE INDEX IF NOT EXISTS idx_qa_pairs_answer_tsv ON qa_pairs USING GIN (answer_tsv);
CREATE INDEX IF NOT EXISTS idx_qa_pairs_content_tsv ON qa_pairs USING GIN (content_tsv);
CREATE INDEX IF NOT EXISTS idx_qa_pairs_difficulty ON qa_pairs(difficulty);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func tsvColumn(field domain.SearchableField) (string, error) {
	switch field {
	case domain.FieldQuestion:
		return "question_tsv", nil
	case domain.FieldAnswer:
		return "answer_tsv", nil
	case domain.FieldContent:
		return "content_tsv", nil
	default:
		return "", fmt.Errorf("unknown searchable field: %q", field)
	}
}

func (s *Store) SearchField(ctx context.Context, term string, field domain.SearchableField, limit int) ([]domain.FieldHit, error) {
	column, err := tsvColumn(field)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	query := fmt.Sprintf(`
SELECT id, question, answer, COALESCE(explanation, ''), COALESCE(topic, ''), COALESCE(type, ''), COALESCE(difficulty, ''),
	ts_rank(%s, plainto_tsquery('english', $1)) AS score
FROM qa_pairs
WHERE %s @@ plainto_tsquery('english', $1)
ORDER BY score DESC
LIMIT $2
`, column, column)

	rows, err := s.db.QueryContext(ctx, query, term, limit)
	if err != nil {
		return nil, fmt.Errorf("search %s field: %w", field, err)
	}
	defer rows.Close()

	out := make([]domain.FieldHit, 0, limit)
	for rows.Next() {
		var hit domain.FieldHit
		if err := rows.Scan(
			&hit.Record.ID,
			&hit.Record.Question,
			&hit.Record.Answer,
			&hit.Record.Explanation,
			&hit.Record.Topic,
			&hit.Record.Type,
			&hit.Record.Difficulty,
			&hit.Score,
		); err != nil {
			return nil, fmt.Errorf("scan %s field hit: %w", field, err)
		}
		out = append(out, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s field hits: %w", field, err)
	}
	return out, nil
}

func (s *Store) QueryAll(ctx context.Context, filter domain.CorpusFilter) ([]domain.QARecord, error) {
	query := `
SELECT id, question, answer, COALESCE(explanation, ''), COALESCE(topic, ''), COALESCE(type, ''), COALESCE(difficulty, '')
FROM qa_pairs
`
	args := []any{}
	if filter.Difficulty != "" {
		query += "WHERE LOWER(difficulty) = LOWER($1)\n"
		args = append(args, filter.Difficulty)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query all records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *Store) SampleRandom(ctx context.Context, limit int) ([]domain.QARecord, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, question, answer, COALESCE(explanation, ''), COALESCE(topic, ''), COALESCE(type, ''), COALESCE(difficulty, '')
FROM qa_pairs
ORDER BY random()
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("sample random records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *Store) BulkInsert(ctx context.Context, records []domain.QARecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO qa_pairs (id, question, answer, explanation, topic, type, difficulty)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE
SET question = EXCLUDED.question, answer = EXCLUDED.answer, explanation = EXCLUDED.explanation,
	topic = EXCLUDED.topic, type = EXCLUDED.type, difficulty = EXCLUDED.difficulty
`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.ExecContext(ctx,
			record.ID, record.Question, record.Answer,
			record.Explanation, record.Topic, record.Type, record.Difficulty,
		); err != nil {
			return fmt.Errorf("insert record %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert tx: %w", err)
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]domain.QARecord, error) {
	out := make([]domain.QARecord, 0, 16)
	for rows.Next() {
		var record domain.QARecord
		if err := rows.Scan(
			&record.ID,
			&record.Question,
			&record.Answer,
			&record.Explanation,
			&record.Topic,
			&record.Type,
			&record.Difficulty,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
