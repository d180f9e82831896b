package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// marshalToolResponse converts a response struct to a JSON text result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// hasArgumentMap reports whether the request carries an argument object.
// A missing argument object is accepted for tools without required arguments.
func hasArgumentMap(request mcp.CallToolRequest) bool {
	switch request.GetRawArguments().(type) {
	case map[string]any, nil:
		return true
	default:
		return false
	}
}
