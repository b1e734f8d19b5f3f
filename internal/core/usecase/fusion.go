package usecase

import (
	"sort"

	"github.com/itshmoh/exambot/internal/core/domain"
)

// multiFieldBonus rewards records matching in more than one field so that
// they outrank single-field hits of similar magnitude.
const multiFieldBonus = 0.2

// fuseFieldHits merges the question-field and answer-field result sets into
// one deduplicated candidate list, best first. Field scores come straight
// from the search backend and are not normalized across fields: a record
// present in both lists keeps the larger of its two scores plus the
// multi-field bonus.
func fuseFieldHits(questionHits, answerHits []domain.FieldHit, limit int) []domain.ScoredCandidate {
	acc := make(map[string]domain.ScoredCandidate, len(questionHits)+len(answerHits))
	order := make([]string, 0, len(questionHits)+len(answerHits))

	for _, hit := range questionHits {
		id := hit.Record.ID
		if _, ok := acc[id]; ok {
			continue
		}
		acc[id] = domain.ScoredCandidate{
			Record: hit.Record,
			Score:  hit.Score,
			Match:  domain.MatchQuestion,
		}
		order = append(order, id)
	}

	seenAnswer := make(map[string]bool, len(answerHits))
	for _, hit := range answerHits {
		id := hit.Record.ID
		if seenAnswer[id] {
			continue
		}
		seenAnswer[id] = true
		existing, ok := acc[id]
		if !ok {
			acc[id] = domain.ScoredCandidate{
				Record: hit.Record,
				Score:  hit.Score,
				Match:  domain.MatchAnswer,
			}
			order = append(order, id)
			continue
		}

		score := existing.Score
		if hit.Score > score {
			score = hit.Score
		}
		existing.Score = score + multiFieldBonus
		existing.Match = domain.MatchBoth
		acc[id] = existing
	}

	out := make([]domain.ScoredCandidate, 0, len(acc))
	for _, id := range order {
		out = append(out, acc[id])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Record.ID < out[j].Record.ID
	})

	return trimCandidates(out, limit)
}

func trimCandidates(candidates []domain.ScoredCandidate, limit int) []domain.ScoredCandidate {
	if limit <= 0 || len(candidates) <= limit {
		return candidates
	}
	return candidates[:limit]
}
