package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/itshmoh/exambot/internal/core/domain"
	"github.com/itshmoh/exambot/internal/core/ports"
)

const (
	toolGetRandomQuestion    = "get_random_question"
	toolGetQuestionAndAnswer = "get_question_and_answer"

	chatSystemPrompt = `You are ExamBOT, an exam preparation assistant for Kubernetes certifications.
You have two tools:
1. get_random_question: fetches a practice question by difficulty and topic (both optional).
   Difficulty is one of beginner, intermediate or advanced; leave it empty for any difficulty.
   Leave topic empty when the user does not care about a specific topic.
2. get_question_and_answer: searches the knowledge base for Q&A pairs relevant to a question.
Ask the question first, let the user attempt an answer, then reveal the reference answer.`
)

type ChatLimits struct {
	MaxToolIterations int
	TurnTimeout       time.Duration
	ContextMessages   int
}

// ChatUseCase runs the conversational loop: user message in, model turns
// with optional tool calls, final assistant reply persisted to the session.
type ChatUseCase struct {
	sessions  ports.SessionStore
	completer ports.ChatCompleter
	retriever ports.QuestionRetriever
	limits    ChatLimits
}

func NewChatUseCase(
	sessions ports.SessionStore,
	completer ports.ChatCompleter,
	retriever ports.QuestionRetriever,
	limits ChatLimits,
) *ChatUseCase {
	if limits.MaxToolIterations <= 0 {
		limits.MaxToolIterations = 4
	}
	if limits.TurnTimeout <= 0 {
		limits.TurnTimeout = 60 * time.Second
	}
	if limits.ContextMessages <= 0 {
		limits.ContextMessages = 30
	}
	return &ChatUseCase{
		sessions:  sessions,
		completer: completer,
		retriever: retriever,
		limits:    limits,
	}
}

func (uc *ChatUseCase) ProcessMessage(ctx context.Context, sessionID, message string) (*domain.ChatTurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "process message", errors.New("message is required"))
	}

	session, err := uc.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	turnCtx, cancel := context.WithTimeout(ctx, uc.limits.TurnTimeout)
	defer cancel()

	history := append(session.Context, domain.ChatMessage{Role: "user", Content: message})
	messages := uc.buildModelMessages(history)
	toolsInvoked := make([]string, 0, uc.limits.MaxToolIterations)

	var reply string
	for i := 0; ; i++ {
		// past the iteration cap the model gets no tools, forcing a
		// textual reply instead of an endless tool chain
		tools := uc.toolDefinitions()
		if i >= uc.limits.MaxToolIterations {
			tools = nil
		}

		completion, err := uc.completer.Complete(turnCtx, messages, tools)
		if err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}

		if len(completion.ToolCalls) == 0 || tools == nil {
			reply = completion.Content
			break
		}

		// the assistant message carrying the tool calls must precede the
		// tool results, or the completion API rejects the next request
		assistantMsg := domain.ChatMessage{
			Role:      "assistant",
			Content:   completion.Content,
			ToolCalls: toMessageToolCalls(completion.ToolCalls),
		}
		messages = append(messages, assistantMsg)
		history = append(history, assistantMsg)

		for _, call := range completion.ToolCalls {
			output := uc.executeTool(turnCtx, call)
			toolsInvoked = append(toolsInvoked, call.Name)
			toolMsg := domain.ChatMessage{
				Role:       "tool",
				Content:    output,
				ToolName:   call.Name,
				ToolCallID: call.ID,
			}
			messages = append(messages, toolMsg)
			history = append(history, toolMsg)
		}
	}

	history = append(history, domain.ChatMessage{Role: "assistant", Content: reply})
	if err := uc.sessions.UpdateSessionContext(ctx, sessionID, history); err != nil {
		return nil, fmt.Errorf("persist session context: %w", err)
	}

	return &domain.ChatTurnResult{Reply: reply, ToolsInvoked: toolsInvoked}, nil
}

// executeTool never fails the turn: tool errors are reported back to the
// model as text so it can tell the user retrieval is unavailable.
func (uc *ChatUseCase) executeTool(ctx context.Context, call ports.ToolCall) string {
	switch call.Name {
	case toolGetRandomQuestion:
		var args struct {
			Topic      string `json:"topic"`
			Difficulty string `json:"difficulty"`
		}
		_ = json.Unmarshal([]byte(call.Arguments), &args)
		record, err := uc.retriever.FetchPracticeQuestion(ctx, args.Topic, args.Difficulty)
		if err != nil {
			slog.Warn("tool_call_failed", "tool", call.Name, "error", err)
			return fmt.Sprintf("tool error: %v", err)
		}
		if record == nil {
			return "no questions available for this request"
		}
		payload, _ := json.Marshal(record)
		return string(payload)

	case toolGetQuestionAndAnswer:
		var args struct {
			Question string `json:"question"`
		}
		_ = json.Unmarshal([]byte(call.Arguments), &args)
		candidates, err := uc.retriever.SearchRelevantPairs(ctx, args.Question, defaultSearchLimit)
		if err != nil {
			slog.Warn("tool_call_failed", "tool", call.Name, "error", err)
			return fmt.Sprintf("tool error: %v", err)
		}
		payload, _ := json.Marshal(candidatesToToolResult(candidates))
		return string(payload)

	default:
		return fmt.Sprintf("unknown tool: %s", call.Name)
	}
}

func (uc *ChatUseCase) toolDefinitions() []ports.ToolDefinition {
	return []ports.ToolDefinition{
		{
			Name:        toolGetRandomQuestion,
			Description: "Fetch a random practice question, optionally filtered by topic and difficulty (beginner, intermediate or advanced).",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"topic":      map[string]any{"type": "string", "description": "Subject area, e.g. 'networking' or 'pods'. Empty for any topic."},
					"difficulty": map[string]any{"type": "string", "enum": []string{"beginner", "intermediate", "advanced"}},
				},
			},
		},
		{
			Name:        toolGetQuestionAndAnswer,
			Description: "Search the knowledge base for question and answer pairs relevant to the given question.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{"type": "string", "description": "The question to search for."},
				},
				"required": []string{"question"},
			},
		},
	}
}

func toMessageToolCalls(calls []ports.ToolCall) []domain.MessageToolCall {
	out := make([]domain.MessageToolCall, 0, len(calls))
	for _, call := range calls {
		out = append(out, domain.MessageToolCall{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: call.Arguments,
		})
	}
	return out
}

// buildModelMessages prepends the system prompt and trims old history so
// the request stays inside the model context window.
func (uc *ChatUseCase) buildModelMessages(history []domain.ChatMessage) []domain.ChatMessage {
	start := len(history) - uc.limits.ContextMessages
	if start < 0 {
		start = 0
	}
	out := make([]domain.ChatMessage, 0, len(history)-start+1)
	out = append(out, domain.ChatMessage{Role: "system", Content: chatSystemPrompt})
	out = append(out, history[start:]...)
	return out
}

type toolResultPair struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Topic      string  `json:"topic,omitempty"`
	Type       string  `json:"type,omitempty"`
	Difficulty string  `json:"difficulty,omitempty"`
	Score      float64 `json:"score"`
}

func candidatesToToolResult(candidates []domain.ScoredCandidate) []toolResultPair {
	out := make([]toolResultPair, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, toolResultPair{
			Question:   c.Record.Question,
			Answer:     c.Record.Answer,
			Topic:      c.Record.Topic,
			Type:       c.Record.Type,
			Difficulty: c.Record.Difficulty,
			Score:      c.Score,
		})
	}
	return out
}
