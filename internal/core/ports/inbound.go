package ports

import (
	"context"

	"github.com/itshmoh/exambot/internal/core/domain"
)

// QuestionRetriever is the inbound contract of the retrieval engine — the
// two operations exposed to the conversational tool layer.
type QuestionRetriever interface {
	// FetchPracticeQuestion returns one practice question for the topic
	// (random topic when empty), optionally filtered by difficulty.
	// A nil record with nil error means the corpus has nothing to offer.
	FetchPracticeQuestion(ctx context.Context, topic, difficulty string) (*domain.QARecord, error)
	// SearchRelevantPairs returns Q&A pairs ranked by relevance to the
	// free-text query.
	SearchRelevantPairs(ctx context.Context, query string, limit int) ([]domain.ScoredCandidate, error)
}

// ChatService processes one user message inside a session.
type ChatService interface {
	ProcessMessage(ctx context.Context, sessionID, message string) (*domain.ChatTurnResult, error)
}

// DatasetLoader ingests one dataset file into the corpus.
type DatasetLoader interface {
	LoadFile(ctx context.Context, path string) (int, error)
}
