package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ipassist/retrieval-core/internal/orchestrate"
	"github.com/ipassist/retrieval-core/internal/retrieve"
	"github.com/ipassist/retrieval-core/pkg/version"
)

// Server is the MCP server bridging AI clients to the Query Orchestrator
// over the evidence corpus.
type Server struct {
	mcp          *mcp.Server
	orchestrator *orchestrate.Orchestrator
	logger       *slog.Logger
}

// NewServer creates a new MCP server wrapping orchestrator.
func NewServer(orchestrator *orchestrate.Orchestrator) (*Server, error) {
	if orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}

	s := &Server{
		orchestrator: orchestrator,
		logger:       slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "ipretrieve",
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "ipretrieve", version.Version
}

// registerTools registers process_query and retrieve with the MCP server.
func (s *Server) registerTools() {
	s.logger.Debug("registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "process_query",
		Description: "Answer a clinical interventional pulmonology question against the evidence corpus. " +
			"Classifies the query (emergency, coding, procedure, safety, clinical), retrieves and ranks " +
			"supporting evidence, drafts a composed answer with citations, and flags safety concerns " +
			"that the answer did not address.",
	}, s.processQueryHandler)
	s.logger.Debug("registered tool", slog.String("name", "process_query"))

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "retrieve",
		Description: "Retrieve ranked evidence chunks for a query without drafting a composed answer. " +
			"Use this to inspect what evidence the hybrid retriever would surface, or when only the " +
			"underlying sources (not a drafted answer) are needed.",
	}, s.retrieveHandler)
	s.logger.Debug("registered tool", slog.String("name", "retrieve"))

	s.logger.Info("MCP tools registered", slog.Int("count", 2))
}

// processQueryHandler is the MCP SDK handler for the process_query tool.
func (s *Server) processQueryHandler(ctx context.Context, _ *mcp.CallToolRequest, input ProcessQueryInput) (
	*mcp.CallToolResult,
	ProcessQueryOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, ProcessQueryOutput{}, NewInvalidParamsError("query parameter is required and must be non-empty")
	}

	start := time.Now()
	env, err := s.orchestrator.Process(ctx, orchestrate.Request{
		Query:       input.Query,
		TopK:        input.TopK,
		UseReranker: input.UseReranker,
		CurrentYear: time.Now().Year(),
	})
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("process_query failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, ProcessQueryOutput{}, MapError(err)
	}

	s.logger.Info("process_query completed",
		slog.Duration("duration", duration),
		slog.String("query_type", string(env.QueryType)),
		slog.Bool("is_emergency", env.IsEmergency),
		slog.Int("result_count", len(env.Results)))

	return nil, toProcessQueryOutput(env), nil
}

// retrieveHandler is the MCP SDK handler for the retrieve tool.
func (s *Server) retrieveHandler(ctx context.Context, _ *mcp.CallToolRequest, input RetrieveInput) (
	*mcp.CallToolResult,
	RetrieveOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, RetrieveOutput{}, NewInvalidParamsError("query parameter is required and must be non-empty")
	}

	topK := input.TopK
	if topK <= 0 {
		topK = 5
	}

	out, err := s.orchestrator.Retriever.Retrieve(ctx, input.Query, retrieve.Options{
		TopK:        topK,
		UseReranker: input.UseReranker,
		CurrentYear: time.Now().Year(),
	})
	if err != nil {
		s.logger.Error("retrieve failed", slog.String("error", err.Error()))
		return nil, RetrieveOutput{}, MapError(err)
	}

	return nil, RetrieveOutput{
		Results:  toRetrievedChunks(out.Results),
		Warnings: out.Warnings,
	}, nil
}

// Serve starts the server with the specified transport. Only stdio is
// supported; the go-sdk does not yet ship an SSE transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("starting MCP server", slog.String("transport", transport))

	switch transport {
	case "", "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// Close releases server resources. The MCP server itself stops when its
// context is canceled, so there is nothing further to release here.
func (s *Server) Close() error {
	return nil
}
