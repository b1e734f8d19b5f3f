package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/itshmoh/exambot/internal/core/ports"
	"github.com/itshmoh/exambot/internal/observability/metrics"
)

type Router struct {
	chat      ports.ChatService
	retriever ports.QuestionRetriever
	sessions  ports.SessionStore
	options   Options
}

type Options struct {
	Service          string
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
	Metrics          *metrics.HTTPServerMetrics
}

func NewRouter(
	chat ports.ChatService,
	retriever ports.QuestionRetriever,
	sessions ports.SessionStore,
	options Options,
) *Router {
	if options.Service == "" {
		options.Service = "api"
	}
	if options.BackpressureWait <= 0 {
		options.BackpressureWait = 100 * time.Millisecond
	}
	return &Router{
		chat:      chat,
		retriever: retriever,
		sessions:  sessions,
		options:   options,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)

	mux.HandleFunc("POST /v1/users", rt.createUser)
	mux.HandleFunc("GET /v1/users/{name}", rt.getUser)

	mux.HandleFunc("POST /v1/sessions", rt.createSession)
	mux.HandleFunc("GET /v1/sessions", rt.listSessions)
	mux.HandleFunc("GET /v1/sessions/{session_id}", rt.getSession)
	mux.HandleFunc("PATCH /v1/sessions/{session_id}", rt.renameSession)
	mux.HandleFunc("DELETE /v1/sessions/{session_id}", rt.deleteSession)
	mux.HandleFunc("POST /v1/sessions/{session_id}/messages", rt.postMessage)

	mux.HandleFunc("GET /v1/questions/random", rt.randomQuestion)
	mux.HandleFunc("POST /v1/search", rt.searchPairs)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.options.MaxInFlight, rt.options.BackpressureWait)
	handler = rateLimitMiddleware(handler, rt.options.RateLimitRPS, rt.options.RateLimitBurst)
	if rt.options.Metrics != nil {
		handler = rt.options.Metrics.Middleware(rt.options.Service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
