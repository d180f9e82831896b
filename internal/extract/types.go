package extract

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Record is one ASCII diagram found inside a fenced block.
type Record struct {
	Content       string `json:"content"`        // text between the fences, fences excluded
	StartLine     int    `json:"start_line"`     // 1-indexed, opening fence
	EndLine       int    `json:"end_line"`       // 1-indexed, closing fence
	ContextBefore string `json:"context_before"` // up to ContextLines lines before the block
	Heading       string `json:"heading"`        // last heading seen, empty if none
}

// String renders the one-line summary used in CLI output.
func (r Record) String() string {
	heading := r.Heading
	if heading == "" {
		heading = "Untitled"
	}
	return fmt.Sprintf("Lines %d-%d: %s", r.StartLine, r.EndLine, heading)
}

// Lines returns the diagram content split into lines.
func (r Record) Lines() []string {
	return strings.Split(r.Content, "\n")
}

// Width returns the widest content line in terminal cells.
// Box-drawing and East Asian characters are measured by display width, not bytes.
func (r Record) Width() int {
	width := 0
	for _, line := range r.Lines() {
		if w := runewidth.StringWidth(line); w > width {
			width = w
		}
	}
	return width
}

// Height returns the number of content lines.
func (r Record) Height() int {
	return len(r.Lines())
}

// Document holds the records extracted from a single source file.
type Document struct {
	Path    string
	Records []Record
	Skipped bool // file could not be read as text
}
