package mcp

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Server:
// - NewServer registers every tool
// - NewServer rejects invalid ignore patterns
// - serve answers a tools/list request over stdio and returns at end of input
// - serve returns when the context is cancelled

func TestNewServer_RegistersTools(t *testing.T) {
	t.Parallel()

	s, err := NewServer(Options{Root: t.TempDir(), Version: "1.2.3"})
	require.NoError(t, err)

	tools := s.MCP().ListTools()
	for _, name := range []string{
		"extract_ascii_diagrams",
		"list_patterns",
		"generate_pattern",
		"list_diagram_types",
		"generate_diagram",
	} {
		assert.Contains(t, tools, name)
	}
	assert.Len(t, tools, 5)
	assert.Equal(t, []string{"paths"}, tools["extract_ascii_diagrams"].Tool.InputSchema.Required)
}

func TestNewServer_InvalidIgnore(t *testing.T) {
	t.Parallel()

	_, err := NewServer(Options{Ignore: []string{"docs/[abc"}})

	assert.Error(t, err)
}

func TestServe_StdioRoundTrip(t *testing.T) {
	s, err := NewServer(Options{Root: t.TempDir()})
	require.NoError(t, err)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, s.serve(context.Background(), strings.NewReader(input), &out))

	assert.Contains(t, out.String(), `"name":"archdiag"`)
	assert.Contains(t, out.String(), `"extract_ascii_diagrams"`)
	assert.Contains(t, out.String(), `"generate_diagram"`)
}

func TestServe_ContextCancel(t *testing.T) {
	s, err := NewServer(Options{Root: t.TempDir()})
	require.NoError(t, err)

	reader, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, reader, io.Discard) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}
