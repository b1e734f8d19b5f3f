package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/itshmoh/exambot/internal/core/domain"
	"github.com/itshmoh/exambot/internal/core/ports"
)

const (
	defaultFieldSearchLimit   = 5
	defaultCandidatePoolSize  = 5
	defaultSearchLimit        = 3
	defaultFieldSearchTimeout = 3 * time.Second
)

// RetrievalUseCase implements the two retrieval operations the
// conversational tool layer calls. It holds no mutable state; every call is
// an independent read against the corpus.
type RetrievalUseCase struct {
	corpus ports.CorpusStore
	topics []string

	fieldLimit    int
	poolSize      int
	searchTimeout time.Duration
}

type RetrievalOptions struct {
	Topics             []string
	FieldSearchLimit   int
	CandidatePoolSize  int
	FieldSearchTimeout time.Duration
}

func NewRetrievalUseCase(corpus ports.CorpusStore, options RetrievalOptions) *RetrievalUseCase {
	topics := options.Topics
	if len(topics) == 0 {
		topics = defaultTopicVocabulary
	}
	fieldLimit := options.FieldSearchLimit
	if fieldLimit <= 0 {
		fieldLimit = defaultFieldSearchLimit
	}
	poolSize := options.CandidatePoolSize
	if poolSize <= 0 {
		poolSize = defaultCandidatePoolSize
	}
	searchTimeout := options.FieldSearchTimeout
	if searchTimeout <= 0 {
		searchTimeout = defaultFieldSearchTimeout
	}

	return &RetrievalUseCase{
		corpus:        corpus,
		topics:        topics,
		fieldLimit:    fieldLimit,
		poolSize:      poolSize,
		searchTimeout: searchTimeout,
	}
}

// FetchPracticeQuestion resolves the effective topic, searches the question
// and answer fields concurrently, fuses the hits and picks one candidate at
// random among the best. A nil record with nil error means the corpus holds
// no matching data at all.
func (uc *RetrievalUseCase) FetchPracticeQuestion(ctx context.Context, topic, difficulty string) (*domain.QARecord, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = uc.randomTopic()
		slog.Debug("retrieval_random_topic", "topic", topic)
	}

	fused, searchErr := uc.searchAndFuse(ctx, topic, uc.poolSize)

	candidates := filterByDifficulty(fused, difficulty)
	if len(candidates) == 0 {
		fallback, fallbackErr := uc.fallbackCandidates(ctx, difficulty)
		if fallbackErr != nil {
			if searchErr != nil {
				return nil, domain.WrapError(
					domain.ErrRetrievalUnavailable,
					"fetch practice question",
					errors.Join(searchErr, fallbackErr),
				)
			}
			return nil, fmt.Errorf("fetch practice question: %w", fallbackErr)
		}
		candidates = fallback
	}

	picked, ok := pickCandidate(candidates, uc.poolSize)
	if !ok {
		return nil, nil
	}

	record := picked.Record
	return &record, nil
}

// SearchRelevantPairs returns the fused, ranked candidate list for a
// free-text query. No difficulty filter and no random pick: the caller (an
// LLM, usually) decides how to use the ranking.
func (uc *RetrievalUseCase) SearchRelevantPairs(ctx context.Context, query string, limit int) ([]domain.ScoredCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search relevant pairs", errors.New("query text is required"))
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	fused, searchErr := uc.searchAndFuse(ctx, query, limit)
	if searchErr != nil && len(fused) == 0 {
		return nil, domain.WrapError(domain.ErrRetrievalUnavailable, "search relevant pairs", searchErr)
	}
	return fused, nil
}

type fieldSearchResult struct {
	field domain.SearchableField
	hits  []domain.FieldHit
	err   error
}

// searchAndFuse issues both field-scoped searches concurrently and fuses
// the results. A failed or timed-out field contributes an empty list;
// the returned error is non-nil only when every field failed.
func (uc *RetrievalUseCase) searchAndFuse(ctx context.Context, term string, limit int) ([]domain.ScoredCandidate, error) {
	fields := []domain.SearchableField{domain.FieldQuestion, domain.FieldAnswer}
	results := make(chan fieldSearchResult, len(fields))

	searchCtx, cancel := context.WithTimeout(ctx, uc.searchTimeout)
	defer cancel()

	for _, field := range fields {
		go func(field domain.SearchableField) {
			hits, err := uc.corpus.SearchField(searchCtx, term, field, uc.fieldLimit)
			results <- fieldSearchResult{field: field, hits: hits, err: err}
		}(field)
	}

	hitsByField := make(map[domain.SearchableField][]domain.FieldHit, len(fields))
	fieldErrs := make([]error, 0, len(fields))
	for range fields {
		result := <-results
		if result.err != nil {
			slog.Warn("field_search_failed", "field", string(result.field), "term", term, "error", result.err)
			fieldErrs = append(fieldErrs, fmt.Errorf("%s field: %w", result.field, result.err))
			continue
		}
		hitsByField[result.field] = result.hits
	}

	fused := fuseFieldHits(hitsByField[domain.FieldQuestion], hitsByField[domain.FieldAnswer], limit)
	if len(fieldErrs) == len(fields) {
		return fused, errors.Join(fieldErrs...)
	}
	return fused, nil
}
