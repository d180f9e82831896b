package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	mcputils "github.com/mvp-joe/archdiag/internal/mcp-utils"
	"github.com/mvp-joe/archdiag/internal/patterns"
)

// PatternInfo describes one catalog entry.
type PatternInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Direction   string `json:"direction"`
}

// GeneratePatternRequest holds the generate_pattern arguments.
type GeneratePatternRequest struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Output string `json:"output"`
}

// AddPatternTools registers list_patterns and generate_pattern.
func AddPatternTools(s *server.MCPServer) {
	list := mcp.NewTool(
		"list_patterns",
		mcp.WithDescription("List the Azure architecture pattern templates that generate_pattern can produce."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(list, handleListPatterns)

	generate := mcp.NewTool(
		"generate_pattern",
		mcp.WithDescription("Generate a Python script for the diagrams library that draws an Azure architecture pattern. Run it with Python to produce a PNG."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Enum(patterns.Names()...),
			mcp.Description("Pattern name (see list_patterns)")),
		mcp.WithString("title",
			mcp.Description("Diagram title (default: "+patterns.DefaultTitle+")")),
		mcp.WithString("output",
			mcp.Description("Output image base name without extension (default: "+patterns.DefaultOutput+")")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(generate, handleGeneratePattern)
}

func handleListPatterns(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all := patterns.All()
	out := make([]PatternInfo, 0, len(all))
	for _, p := range all {
		out = append(out, PatternInfo{Name: p.Name, Description: p.Description, Direction: p.Direction})
	}
	return marshalToolResponse(out)
}

func handleGeneratePattern(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !hasArgumentMap(request) {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	var req GeneratePatternRequest
	if err := mcputils.CoerceBindArguments(request, &req); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}
	if req.Name == "" {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	code, err := patterns.Generate(req.Name, patterns.NormalizeTitle(req.Title), patterns.NormalizeOutput(req.Output))
	if err != nil {
		if errors.Is(err, patterns.ErrUnknownPattern) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	return mcp.NewToolResultText(code), nil
}
