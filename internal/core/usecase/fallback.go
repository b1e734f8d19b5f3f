package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/itshmoh/exambot/internal/core/domain"
)

// fallbackScore is the neutral score attached to records pulled in by the
// broad fallback query, which carries no relevance ranking.
const fallbackScore = 1.0

// filterByDifficulty keeps candidates whose record difficulty equals the
// requested level, case-insensitively. An empty filter keeps everything.
func filterByDifficulty(candidates []domain.ScoredCandidate, difficulty string) []domain.ScoredCandidate {
	if difficulty == "" {
		return candidates
	}
	filter := domain.CorpusFilter{Difficulty: difficulty}
	out := candidates[:0:0]
	for _, c := range candidates {
		if filter.MatchesDifficulty(c.Record) {
			out = append(out, c)
		}
	}
	return out
}

// fallbackCandidates runs the broad corpus query used when targeted search
// (or post-hoc filtering) leaves nothing. An empty result here means the
// corpus genuinely has no matching records, which is a valid outcome.
func (uc *RetrievalUseCase) fallbackCandidates(ctx context.Context, difficulty string) ([]domain.ScoredCandidate, error) {
	var (
		records []domain.QARecord
		err     error
	)
	if difficulty == "" {
		records, err = uc.corpus.SampleRandom(ctx, uc.poolSize)
	} else {
		records, err = uc.corpus.QueryAll(ctx, domain.CorpusFilter{Difficulty: difficulty})
	}
	if err != nil {
		return nil, fmt.Errorf("fallback corpus query: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	slog.Debug("retrieval_fallback_activated", "difficulty", difficulty, "records", len(records))

	out := make([]domain.ScoredCandidate, 0, len(records))
	for _, record := range records {
		out = append(out, domain.ScoredCandidate{
			Record: record,
			Score:  fallbackScore,
			Match:  domain.MatchFallback,
		})
	}
	return out, nil
}
