// Package mcp exposes the assistant's retrieval tools over the Model
// Context Protocol, so external clients (Genkit CLI, editors, other
// agents) can search course content and fetch course outlines through
// a standard stdio transport.
package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/coursewise/coursewise/internal/tools"
)

// Config holds MCP server configuration.
type Config struct {
	Name     string
	Version  string
	Registry *tools.Registry
}

// Server wraps the MCP SDK server around the tool registry.
type Server struct {
	mcpServer *mcp.Server
	registry  *tools.Registry
}

// NewServer creates a new MCP server with both retrieval tools
// registered.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		registry: cfg.Registry,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server on the given transport.
// This is a blocking call that handles all protocol communication.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// registerTools registers the retrieval tools with inferred schemas.
// Input schemas are shared with the Genkit registration so both
// surfaces present identical contracts to callers.
func (s *Server) registerTools() error {
	searchSchema, err := jsonschema.For[tools.SearchInput](nil)
	if err != nil {
		return fmt.Errorf("schema for search tool: %w", err)
	}

	searchTool, ok := s.registry.Get(tools.SearchToolName)
	if !ok {
		return fmt.Errorf("tool %q not registered", tools.SearchToolName)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        tools.SearchToolName,
		Description: searchTool.Description(),
		InputSchema: searchSchema,
	}, s.SearchContent)

	outlineSchema, err := jsonschema.For[tools.OutlineInput](nil)
	if err != nil {
		return fmt.Errorf("schema for outline tool: %w", err)
	}

	outlineTool, ok := s.registry.Get(tools.OutlineToolName)
	if !ok {
		return fmt.Errorf("tool %q not registered", tools.OutlineToolName)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        tools.OutlineToolName,
		Description: outlineTool.Description(),
		InputSchema: outlineSchema,
	}, s.CourseOutline)

	return nil
}

// SearchContent handles the search_course_content MCP tool call.
func (s *Server) SearchContent(ctx context.Context, _ *mcp.CallToolRequest, in tools.SearchInput) (*mcp.CallToolResult, any, error) {
	args := tools.Arguments{"query": in.Query}
	if in.CourseName != "" {
		args["course_name"] = in.CourseName
	}
	if in.LessonNumber != nil {
		args["lesson_number"] = *in.LessonNumber
	}

	result, err := s.registry.Execute(ctx, tools.SearchToolName, args)
	if err != nil {
		return nil, nil, fmt.Errorf("search failed: %w", err)
	}

	return textResult(result), nil, nil
}

// CourseOutline handles the get_course_outline MCP tool call.
func (s *Server) CourseOutline(ctx context.Context, _ *mcp.CallToolRequest, in tools.OutlineInput) (*mcp.CallToolResult, any, error) {
	result, err := s.registry.Execute(ctx, tools.OutlineToolName, tools.Arguments{"course_name": in.CourseName})
	if err != nil {
		return nil, nil, fmt.Errorf("outline failed: %w", err)
	}

	return textResult(result), nil, nil
}

// textResult wraps tool output as MCP text content. Tool output is
// already plain text for a model to read, so no JSON envelope.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
