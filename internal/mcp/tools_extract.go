package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/archdiag/internal/discovery"
	"github.com/mvp-joe/archdiag/internal/extract"
	mcputils "github.com/mvp-joe/archdiag/internal/mcp-utils"
	"github.com/mvp-joe/archdiag/internal/report"
	"go.uber.org/zap"
)

// ExtractRequest holds the extract_ascii_diagrams arguments.
type ExtractRequest struct {
	Paths []string `json:"paths"`
}

// FileSummary is the per-document part of an extraction response. Prompts
// holds the document's conversion request, one prompt per diagram, and is
// empty when the document has no diagrams.
type FileSummary struct {
	Path     string `json:"path"`
	Diagrams int    `json:"diagrams"`
	Skipped  bool   `json:"skipped,omitempty"`
	Prompts  string `json:"prompts,omitempty"`
}

// ExtractResponse is returned by extract_ascii_diagrams. Report is empty
// when no diagram was found.
type ExtractResponse struct {
	Files    []FileSummary          `json:"files"`
	Total    int                    `json:"total"`
	Diagrams []report.ManifestEntry `json:"diagrams"`
	Report   string                 `json:"report,omitempty"`
}

// AddExtractTool registers the extract_ascii_diagrams tool.
func AddExtractTool(s *server.MCPServer, resolver *discovery.Resolver, concurrency int, logger *zap.Logger) {
	tool := mcp.NewTool(
		"extract_ascii_diagrams",
		mcp.WithDescription("Find ASCII-art diagrams inside fenced code blocks of markdown documents. Returns each diagram with its location, nearest heading and suggested image filename, the aggregate conversion report, and per-document conversion prompts (one per diagram)."),
		mcp.WithArray("paths",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Markdown files or glob patterns (e.g., ['docs/**/*.md', 'README.md'])")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createExtractHandler(resolver, extract.NewFileExtractor(concurrency, logger)))
}

func createExtractHandler(resolver *discovery.Resolver, extractor *extract.FileExtractor) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !hasArgumentMap(request) {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var req ExtractRequest
		if err := mcputils.CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if len(req.Paths) == 0 {
			return mcp.NewToolResultError("paths parameter is required"), nil
		}

		files, err := resolver.Resolve(req.Paths)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		// Unreadable documents are reported as skipped; only cancellation fails
		docs, err := extractor.ExtractFiles(ctx, files)
		if err != nil {
			return nil, err
		}

		return marshalToolResponse(buildExtractResponse(docs))
	}
}

func buildExtractResponse(docs []extract.Document) ExtractResponse {
	resp := ExtractResponse{
		Files: make([]FileSummary, 0, len(docs)),
	}
	for _, doc := range docs {
		summary := FileSummary{
			Path:     doc.Path,
			Diagrams: len(doc.Records),
			Skipped:  doc.Skipped,
		}
		if len(doc.Records) > 0 {
			summary.Prompts = report.BuildDocument(doc.Path, doc.Records)
		}
		resp.Files = append(resp.Files, summary)
	}

	entries := report.Entries(docs)
	manifest := report.Manifest(entries)
	resp.Total = manifest.Total
	resp.Diagrams = manifest.Diagrams
	if len(entries) > 0 {
		resp.Report = report.Build(entries)
	}
	return resp
}
