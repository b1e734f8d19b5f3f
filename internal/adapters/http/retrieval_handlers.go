package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/itshmoh/exambot/internal/core/domain"
)

func (rt *Router) randomQuestion(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	difficulty := strings.TrimSpace(r.URL.Query().Get("difficulty"))

	start := time.Now()
	record, err := rt.retriever.FetchPracticeQuestion(r.Context(), topic, difficulty)
	if rt.options.Metrics != nil && err == nil {
		match := "none"
		candidates := 0
		if record != nil {
			match = "hit"
			candidates = 1
		}
		rt.options.Metrics.RecordRetrieval(rt.options.Service, "random_question", match, candidates, time.Since(start))
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no questions available"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) searchPairs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	candidates, err := rt.retriever.SearchRelevantPairs(r.Context(), req.Query, req.Limit)
	if rt.options.Metrics != nil && err == nil {
		match := "none"
		if len(candidates) > 0 {
			match = string(candidates[0].Match)
		}
		rt.options.Metrics.RecordRetrieval(rt.options.Service, "search_pairs", match, len(candidates), time.Since(start))
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if candidates == nil {
		candidates = []domain.ScoredCandidate{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": candidates})
}
