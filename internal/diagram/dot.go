package diagram

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

const defaultFont = "Segoe UI, Arial"

// dotGraph wraps a directed graph and remembers declaration order so the
// rendered DOT is stable across runs.
type dotGraph struct {
	g     graph.Graph[string, string]
	attrs map[string]string
	order []string // statement prefixes in declaration order
}

func newDotGraph(title string, attrs map[string]string) *dotGraph {
	all := map[string]string{
		"bgcolor":  "white",
		"fontname": defaultFont,
	}
	if title != "" {
		all["label"] = escapeText(title)
		all["labelloc"] = "t"
		all["fontsize"] = "16"
	}
	for k, v := range attrs {
		all[k] = v
	}

	return &dotGraph{
		g:     graph.New(graph.StringHash, graph.Directed()),
		attrs: all,
	}
}

// addNode adds a node. id must not contain quotes, backslashes, brackets or newlines.
func (d *dotGraph) addNode(id string, attrs map[string]string) error {
	if err := validateID(id); err != nil {
		return err
	}

	nodeAttrs := map[string]string{"fontname": defaultFont, "fontsize": "10"}
	for k, v := range attrs {
		nodeAttrs[k] = v
	}

	if err := d.g.AddVertex(id, graph.VertexAttributes(nodeAttrs)); err != nil {
		return fmt.Errorf("node %q: %w", id, err)
	}
	d.order = append(d.order, nodePrefix(id))
	return nil
}

// addEdge connects two existing nodes.
func (d *dotGraph) addEdge(source, target string, attrs map[string]string) error {
	edgeAttrs := map[string]string{"fontname": defaultFont, "fontsize": "9"}
	for k, v := range attrs {
		edgeAttrs[k] = v
	}

	if err := d.g.AddEdge(source, target, graph.EdgeAttributes(edgeAttrs)); err != nil {
		return fmt.Errorf("edge %q -> %q: %w", source, target, err)
	}
	d.order = append(d.order, edgePrefix(source, target))
	return nil
}

// render writes the graph as DOT with statements in declaration order.
func (d *dotGraph) render() (string, error) {
	keys := make([]string, 0, len(d.attrs))
	for k := range d.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// draw's option type is unexported; collect lets the compiler infer it.
	opts := collect(draw.GraphAttribute(keys[0], d.attrs[keys[0]]))
	for _, k := range keys[1:] {
		opts = append(opts, draw.GraphAttribute(k, d.attrs[k]))
	}

	var buf bytes.Buffer
	if err := draw.DOT(d.g, &buf, opts...); err != nil {
		return "", fmt.Errorf("failed to render DOT: %w", err)
	}
	return d.reorder(buf.String()), nil
}

func collect[O any](opts ...O) []O {
	return opts
}

// reorder rebuilds draw's output: graph attributes first (sorted), then
// statements in the order nodes and edges were added.
func (d *dotGraph) reorder(raw string) string {
	var header string
	var attrLines []string
	statements := make(map[string]string)

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || trimmed == "}":
		case strings.HasPrefix(trimmed, "strict "):
			header = trimmed
		case strings.HasPrefix(trimmed, `"`):
			statements[statementKey(trimmed)] = trimmed
		default:
			attrLines = append(attrLines, trimmed)
		}
	}
	sort.Strings(attrLines)

	var sb strings.Builder
	sb.WriteString(header + "\n")
	for _, line := range attrLines {
		sb.WriteString("\t" + line + "\n")
	}
	for _, prefix := range d.order {
		if line, ok := statements[prefix]; ok {
			sb.WriteString("\t" + line + "\n")
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

func nodePrefix(id string) string {
	return `"` + id + `"`
}

func edgePrefix(source, target string) string {
	return `"` + source + `" -> "` + target + `"`
}

// statementKey returns the node or edge part of a DOT statement, before its attribute list.
func statementKey(statement string) string {
	if idx := strings.Index(statement, " ["); idx >= 0 {
		return statement[:idx]
	}
	return statement
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, "\"\\\n[") {
		return fmt.Errorf("%w: invalid node id %q", ErrInvalidSpec, id)
	}
	return nil
}

// escapeText makes free text safe inside a quoted DOT attribute value.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

var recordEscaper = strings.NewReplacer(
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
	`"`, `\"`,
	"\n", `\n`,
)

// escapeRecord makes free text safe inside one field of a record label.
func escapeRecord(s string) string {
	return recordEscaper.Replace(s)
}
