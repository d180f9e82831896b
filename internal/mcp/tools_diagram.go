package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/archdiag/internal/diagram"
	mcputils "github.com/mvp-joe/archdiag/internal/mcp-utils"
)

const defaultDiagramTitle = "Diagram"

// DiagramTypeInfo describes one diagram type.
type DiagramTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Format      string `json:"format"`
}

// GenerateDiagramRequest holds the generate_diagram arguments. Spec is an
// optional YAML or JSON document with the diagram data.
type GenerateDiagramRequest struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Layout string `json:"layout"`
	Spec   string `json:"spec"`
}

// GenerateDiagramResponse carries the generated source.
type GenerateDiagramResponse struct {
	Type   string `json:"type"`
	Format string `json:"format"`
	Source string `json:"source"`
}

// AddDiagramTools registers list_diagram_types and generate_diagram.
func AddDiagramTools(s *server.MCPServer) {
	list := mcp.NewTool(
		"list_diagram_types",
		mcp.WithDescription("List the diagram types generate_diagram supports and the source format each produces."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(list, handleListDiagramTypes)

	generate := mcp.NewTool(
		"generate_diagram",
		mcp.WithDescription("Generate a process, swimlane, ERD, access matrix, timeline (Graphviz DOT) or Gantt, wireframe (SVG) diagram. Without spec data the built-in example is drawn."),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Enum(diagram.TypeNames()...),
			mcp.Description("Diagram type (see list_diagram_types)")),
		mcp.WithString("title",
			mcp.Description("Diagram title (default: "+defaultDiagramTitle+")")),
		mcp.WithString("layout",
			mcp.Enum(diagram.LayoutDashboard, diagram.LayoutList, diagram.LayoutDetail),
			mcp.Description("Wireframe layout (default: dashboard)")),
		mcp.WithString("spec",
			mcp.Description("YAML or JSON diagram data with steps, lanes/flows, tables/relations, matrix, tasks or phases")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(generate, handleGenerateDiagram)
}

func handleListDiagramTypes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	types := diagram.Types()
	out := make([]DiagramTypeInfo, 0, len(types))
	for _, info := range types {
		out = append(out, DiagramTypeInfo{
			Type:        string(info.Type),
			Description: info.Description,
			Format:      info.Format,
		})
	}
	return marshalToolResponse(out)
}

func handleGenerateDiagram(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !hasArgumentMap(request) {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	var req GenerateDiagramRequest
	if err := mcputils.CoerceBindArguments(request, &req); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
	}
	if req.Type == "" {
		return mcp.NewToolResultError("type parameter is required"), nil
	}

	typ, err := diagram.ParseType(req.Type)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var spec *diagram.Spec
	if strings.TrimSpace(req.Spec) != "" {
		spec, err = diagram.ParseSpec([]byte(req.Spec))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid spec: %v", err)), nil
		}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultDiagramTitle
	}

	artifact, err := diagram.Build(typ, title, spec, diagram.Options{Layout: req.Layout})
	if err != nil {
		if errors.Is(err, diagram.ErrInvalidSpec) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	return marshalToolResponse(GenerateDiagramResponse{
		Type:   string(artifact.Type),
		Format: artifact.Format,
		Source: artifact.Body,
	})
}
