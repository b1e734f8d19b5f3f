package gaia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/itshmoh/exambot/internal/core/domain"
	"github.com/itshmoh/exambot/internal/core/ports"
)

func TestCompleteSendsMessagesAndTools(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  hello  "}}]}`))
	}))
	defer server.Close()

	client := NewWithOptions(server.URL, "qwen", Options{APIKey: "secret"})
	completion, err := client.Complete(context.Background(),
		[]domain.ChatMessage{
			{Role: "system", Content: "you are a tutor"},
			{Role: "user", Content: "quiz me"},
		},
		[]ports.ToolDefinition{{Name: "get_random_question", Description: "fetch a question"}},
	)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if completion.Content != "hello" {
		t.Fatalf("expected trimmed content, got %q", completion.Content)
	}
	if captured.Model != "qwen" {
		t.Fatalf("unexpected model: %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", captured.Messages)
	}
	if len(captured.Tools) != 1 || captured.Tools[0].Function.Name != "get_random_question" {
		t.Fatalf("unexpected tools: %+v", captured.Tools)
	}
	if captured.ToolChoice != "auto" {
		t.Fatalf("expected tool_choice auto, got %q", captured.ToolChoice)
	}
}

func TestCompleteSerializesAssistantToolCalls(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"done"}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "qwen")
	_, err := client.Complete(context.Background(), []domain.ChatMessage{
		{Role: "user", Content: "quiz me"},
		{Role: "assistant", ToolCalls: []domain.MessageToolCall{{
			ID:        "call-1",
			Name:      "get_random_question",
			Arguments: `{"topic":"storage"}`,
		}}},
		{Role: "tool", Content: "question payload", ToolCallID: "call-1"},
	}, nil)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if len(captured.Messages) != 3 {
		t.Fatalf("expected three messages, got %+v", captured.Messages)
	}
	assistant := captured.Messages[1]
	if len(assistant.ToolCalls) != 1 {
		t.Fatalf("expected assistant tool_calls on the wire, got %+v", assistant)
	}
	wire := assistant.ToolCalls[0]
	if wire.ID != "call-1" || wire.Type != "function" {
		t.Fatalf("unexpected wire tool call: %+v", wire)
	}
	if wire.Function.Name != "get_random_question" || !strings.Contains(wire.Function.Arguments, "storage") {
		t.Fatalf("unexpected wire tool call function: %+v", wire.Function)
	}
	if captured.Messages[2].ToolCallID != "call-1" {
		t.Fatalf("tool message must reference the call id, got %+v", captured.Messages[2])
	}
}

func TestCompleteParsesToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"","tool_calls":[{"id":"call-1","function":{"name":"get_random_question","arguments":"{\"topic\":\"networking\"}"}}]}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "qwen")
	completion, err := client.Complete(context.Background(), []domain.ChatMessage{{Role: "user", Content: "quiz me"}}, nil)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if len(completion.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(completion.ToolCalls))
	}
	call := completion.ToolCalls[0]
	if call.ID != "call-1" || call.Name != "get_random_question" {
		t.Fatalf("unexpected tool call: %+v", call)
	}
	if !strings.Contains(call.Arguments, "networking") {
		t.Fatalf("unexpected arguments: %q", call.Arguments)
	}
}

func TestCompleteIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "qwen")
	_, err := client.Complete(context.Background(), []domain.ChatMessage{{Role: "user", Content: "hi"}}, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error kind, got %v", err)
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, "qwen")
	_, err := client.Complete(context.Background(), []domain.ChatMessage{{Role: "user", Content: "hi"}}, nil)
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("expected no-choices error, got %v", err)
	}
}
