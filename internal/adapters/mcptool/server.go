package mcptool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/itshmoh/exambot/internal/core/ports"
)

const defaultSearchLimit = 3

// Server exposes the retrieval engine over the Model Context Protocol so
// external agents can drive exam practice with the same two tools the
// built-in chat loop uses.
type Server struct {
	retriever ports.QuestionRetriever
	mcp       *server.MCPServer
}

func NewServer(retriever ports.QuestionRetriever, version string) *Server {
	s := &Server{retriever: retriever}

	mcpServer := server.NewMCPServer(
		"exambot",
		version,
		server.WithToolCapabilities(false),
	)

	mcpServer.AddTool(
		mcp.NewTool("get_random_question",
			mcp.WithDescription("Fetch a random Kubernetes practice question, optionally filtered by topic and difficulty."),
			mcp.WithString("topic", mcp.Description("Subject area such as 'networking' or 'pods'. Empty for a random topic.")),
			mcp.WithString("difficulty",
				mcp.Description("Desired difficulty level. Empty for any."),
				mcp.Enum("beginner", "intermediate", "advanced"),
			),
		),
		s.handleGetRandomQuestion,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_question_and_answer",
			mcp.WithDescription("Search the exam corpus for question and answer pairs relevant to a free-text question."),
			mcp.WithString("question",
				mcp.Description("The question to search for."),
				mcp.Required(),
			),
		),
		s.handleGetQuestionAndAnswer,
	)

	s.mcp = mcpServer
	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// ServeHTTP blocks serving the streamable HTTP transport on addr.
func (s *Server) ServeHTTP(addr string) error {
	return server.NewStreamableHTTPServer(s.mcp).Start(addr)
}

func (s *Server) handleGetRandomQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic := request.GetString("topic", "")
	difficulty := request.GetString("difficulty", "")

	record, err := s.retriever.FetchPracticeQuestion(ctx, topic, difficulty)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch practice question: %v", err)), nil
	}
	if record == nil {
		return mcp.NewToolResultText("no questions available for this request"), nil
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal question: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleGetQuestionAndAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	candidates, err := s.retriever.SearchRelevantPairs(ctx, question, defaultSearchLimit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search pairs: %v", err)), nil
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("marshal candidates: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}
