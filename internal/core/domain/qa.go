package domain

import "strings"

// QARecord is one question/answer pair from the exam corpus. Records are
// written once at ingestion and never mutated by the retrieval path.
type QARecord struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
	Topic       string `json:"topic,omitempty"`
	Type        string `json:"type,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// MatchType records which corpus field(s) produced a candidate.
type MatchType string

const (
	MatchQuestion MatchType = "question"
	MatchAnswer   MatchType = "answer"
	MatchBoth     MatchType = "both"
	MatchFallback MatchType = "fallback"
)

// ScoredCandidate is a fused search hit. At most one candidate exists per
// record id within a fusion pass; a record matching several fields is
// updated in place rather than duplicated.
type ScoredCandidate struct {
	Record QARecord  `json:"record"`
	Score  float64   `json:"score"`
	Match  MatchType `json:"match_type"`
}

// SearchableField names one full-text-indexed column of the corpus.
type SearchableField string

const (
	FieldQuestion SearchableField = "question"
	FieldAnswer   SearchableField = "answer"
	FieldContent  SearchableField = "content"
)

// FieldHit is a single result of a field-scoped full-text search. Score
// semantics belong to the search backend; higher is better, and scores
// from different fields are not assumed comparable.
type FieldHit struct {
	Record QARecord
	Score  float64
}

// CorpusFilter narrows unscored corpus queries.
type CorpusFilter struct {
	Difficulty string
}

func (f CorpusFilter) MatchesDifficulty(record QARecord) bool {
	if f.Difficulty == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(record.Difficulty), strings.TrimSpace(f.Difficulty))
}
