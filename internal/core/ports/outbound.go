package ports

import (
	"context"

	"github.com/itshmoh/exambot/internal/core/domain"
)

// CorpusStore is the full-text-searchable Q&A corpus. The retrieval engine
// only reads through it; writes happen on the ingestion path.
type CorpusStore interface {
	// SearchField runs a full-text search scoped to one record field and
	// returns hits with backend relevance scores, best first.
	SearchField(ctx context.Context, term string, field domain.SearchableField, limit int) ([]domain.FieldHit, error)
	// QueryAll returns every record matching the filter, unscored.
	QueryAll(ctx context.Context, filter domain.CorpusFilter) ([]domain.QARecord, error)
	// SampleRandom returns up to limit records chosen at random.
	SampleRandom(ctx context.Context, limit int) ([]domain.QARecord, error)
}

// CorpusWriter loads ingested records into the corpus.
type CorpusWriter interface {
	BulkInsert(ctx context.Context, records []domain.QARecord) error
}

// SessionStore persists users, chat sessions and their message context.
type SessionStore interface {
	CreateUser(ctx context.Context, name string) (*domain.User, error)
	GetUserByName(ctx context.Context, name string) (*domain.User, error)
	CreateSession(ctx context.Context, userID, name string) (*domain.ChatSession, error)
	ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error)
	GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error)
	UpdateSessionContext(ctx context.Context, sessionID string, context []domain.ChatMessage) error
	RenameSession(ctx context.Context, sessionID, name string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// ToolDefinition describes one callable tool in the wire shape the chat
// completion API expects.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ChatCompletion is one model turn: either assistant text or tool calls.
type ChatCompletion struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatCompleter talks to the chat completion backend.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []domain.ChatMessage, tools []ToolDefinition) (*ChatCompletion, error)
}

// DatasetQueue publishes/consumes dataset load jobs.
type DatasetQueue interface {
	PublishLoadJob(ctx context.Context, path string) error
	SubscribeLoadJobs(ctx context.Context, handler func(context.Context, string) error) error
}

// DatasetReader parses one dataset file format into corpus records.
type DatasetReader interface {
	Read(ctx context.Context, path string) ([]domain.QARecord, error)
}
