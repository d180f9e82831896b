package extract

import (
	"regexp"
	"strings"
)

const (
	// ContextLines is how many lines before an opening fence are kept as context.
	ContextLines = 5

	fenceMarker   = "```"
	headingMarker = "#"
)

var (
	boxDrawingPattern = regexp.MustCompile(`[─│┌┐└┘├┤┬┴┼═║╔╗╚╝╠╣╦╩╬+\-|]`)
	arrowPattern      = regexp.MustCompile(`(-->|<--|->|<-|=>|<=|>>|<<|\|>|<\||\.\.\.>|>\.\.\.)`)
)

// scanState is the running state of a single top-to-bottom pass.
type scanState struct {
	inBlock    bool
	blockStart int // 0-indexed line of the opening fence
	blockLines []string
	heading    string
}

// Extract scans markdown content and returns every fenced block that looks like
// an ASCII diagram, in document order.
//
// Algorithm:
// 1. A trimmed line starting with # updates the current heading (also inside blocks)
// 2. A trimmed line starting with ``` toggles the in-block state
// 3. On close, the accumulated lines are classified with IsDiagram
// 4. Other lines inside a block are accumulated verbatim
//
// A block that is never closed produces no record.
func Extract(content string) []Record {
	lines := strings.Split(content, "\n")
	records := []Record{}
	state := scanState{}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, headingMarker) {
			state.heading = strings.TrimSpace(strings.TrimLeft(trimmed, headingMarker))
		}

		if strings.HasPrefix(trimmed, fenceMarker) {
			if !state.inBlock {
				state.inBlock = true
				state.blockStart = i
				state.blockLines = []string{}
				continue
			}

			state.inBlock = false
			if IsDiagram(state.blockLines) {
				records = append(records, Record{
					Content:       strings.Join(state.blockLines, "\n"),
					StartLine:     state.blockStart + 1,
					EndLine:       i + 1,
					ContextBefore: ContextWindow(lines, state.blockStart),
					Heading:       state.heading,
				})
			}
			continue
		}

		if state.inBlock {
			state.blockLines = append(state.blockLines, line)
		}
	}

	return records
}

// IsDiagram reports whether the lines of a fenced block look like an ASCII diagram:
// more than two lines, and at least one box-drawing character (including + - |)
// or one arrow token.
func IsDiagram(lines []string) bool {
	if len(lines) <= 2 {
		return false
	}
	content := strings.Join(lines, "\n")
	return boxDrawingPattern.MatchString(content) || arrowPattern.MatchString(content)
}

// ContextWindow returns the trimmed text of the ContextLines lines preceding start.
func ContextWindow(lines []string, start int) string {
	if start > len(lines) {
		start = len(lines)
	}
	from := max(0, start-ContextLines)
	return strings.TrimSpace(strings.Join(lines[from:start], "\n"))
}
