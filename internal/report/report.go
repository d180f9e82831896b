package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mvp-joe/archdiag/internal/extract"
)

// Instruction is the request handed to whoever processes the report.
const Instruction = `"Read this report and convert each ASCII diagram to a proper Azure architecture
diagram using the azure-architecture-diagrams skill. Save each diagram as PNG
and provide updated markdown image links."`

const (
	reportTitle     = "# ASCII Diagram Conversion Report"
	sectionFallback = "N/A"
	imageExtension  = ".png"
)

// slugPattern matches runs outside Unicode letters (\p{L}), decimal and other
// numbers (\p{N}), '_' and '-'.
var slugPattern = regexp.MustCompile(`[^\p{L}\p{N}_\-]+`)

// Entry is one detected diagram tagged with the document it came from.
type Entry struct {
	Source string
	Record extract.Record
}

// Entries flattens documents into report entries, keeping document order and
// record order within each document.
func Entries(docs []extract.Document) []Entry {
	entries := []Entry{}
	for _, doc := range docs {
		for _, record := range doc.Records {
			entries = append(entries, Entry{Source: doc.Path, Record: record})
		}
	}
	return entries
}

// Slug lower-cases text and collapses every run of characters other than
// letters, digits, '_' and '-' into a single '-'.
func Slug(text string) string {
	return slugPattern.ReplaceAllString(strings.ToLower(text), "-")
}

// SuggestedFilename derives the image filename for the n-th diagram (1-based).
func SuggestedFilename(heading string, n int) string {
	name := heading
	if name == "" {
		name = fmt.Sprintf("diagram-%d", n)
	}
	return Slug(name) + imageExtension
}

// Build formats entries into the aggregate conversion report, in input order.
func Build(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString(reportTitle + "\n\n")
	sb.WriteString("**Generated for AI-assisted diagram conversion**\n")
	sb.WriteString(fmt.Sprintf("**Total Diagrams:** %d\n\n", len(entries)))
	sb.WriteString("Use this report with your coding assistant:\n")
	sb.WriteString("```\n" + Instruction + "\n```\n\n")
	sb.WriteString("---\n\n")

	for i, entry := range entries {
		n := i + 1
		record := entry.Record

		section := record.Heading
		if section == "" {
			section = sectionFallback
		}

		sb.WriteString(fmt.Sprintf("## Diagram %d\n", n))
		sb.WriteString(fmt.Sprintf("**Source:** `%s`\n", entry.Source))
		sb.WriteString(fmt.Sprintf("**Lines:** %d-%d\n", record.StartLine, record.EndLine))
		sb.WriteString(fmt.Sprintf("**Section:** %s\n\n", section))
		sb.WriteString(fmt.Sprintf("**Context:**\n%s\n\n", record.ContextBefore))
		sb.WriteString(fmt.Sprintf("**ASCII Diagram:**\n```\n%s\n```\n\n", record.Content))
		sb.WriteString(fmt.Sprintf("**Suggested output filename:** `%s`\n\n", SuggestedFilename(record.Heading, n)))
		sb.WriteString("---\n\n")
	}

	return sb.String()
}

// Prompt formats a single record as a self-contained conversion request.
// index is 0-based.
func Prompt(record extract.Record, index int) string {
	title := record.Heading
	if title == "" {
		title = "Architecture Diagram"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n## Diagram %d: %s\n\n", index+1, title))
	sb.WriteString(fmt.Sprintf("**Context from document:**\n%s\n\n", record.ContextBefore))
	sb.WriteString(fmt.Sprintf("**ASCII Diagram to convert:**\n```\n%s\n```\n\n", record.Content))
	sb.WriteString("**Task:** Convert this ASCII diagram to a proper Azure architecture diagram using the Python diagrams library.\n\n")
	sb.WriteString("Analyze the ASCII art and:\n")
	sb.WriteString("1. Identify the Azure services represented (Logic Apps, Service Bus, Functions, API Management, etc.)\n")
	sb.WriteString("2. Understand the data flow and connections\n")
	sb.WriteString("3. Generate Python code using the diagrams library with official Azure icons\n")
	sb.WriteString("4. Use appropriate clustering/grouping\n")
	sb.WriteString("5. Preserve the logical flow and relationships\n\n")
	sb.WriteString("Generate the Python code that creates an equivalent professional diagram.\n")
	return sb.String()
}

// BuildDocument formats the records of one document with a conversion prompt per diagram.
func BuildDocument(path string, records []extract.Record) string {
	var sb strings.Builder

	sb.WriteString(reportTitle + "\n\n")
	sb.WriteString(fmt.Sprintf("**Source File:** %s\n", path))
	sb.WriteString(fmt.Sprintf("**Diagrams Found:** %d\n\n", len(records)))
	sb.WriteString("---\n\n")

	for i, record := range records {
		sb.WriteString(Prompt(record, i))
		sb.WriteString("\n---\n\n")
	}

	return sb.String()
}

// Write stores content at path, creating parent directories and replacing any existing file.
func Write(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
