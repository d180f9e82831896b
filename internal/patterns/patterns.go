// Package patterns holds the catalog of architecture pattern templates. Each
// template renders a Python script for the diagrams library that draws the
// pattern under a caller-supplied title.
package patterns

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

const (
	// DefaultTitle is used when no diagram title is given.
	DefaultTitle = "Azure Architecture"
	// DefaultOutput is the output file base name when none is given.
	DefaultOutput = "architecture"

	templateSuffix = ".py.tmpl"
)

// Graph directions understood by the diagrams library.
const (
	LeftToRight = "LR"
	TopToBottom = "TB"
)

var (
	// ErrUnknownPattern is wrapped by every lookup of a name outside the catalog.
	ErrUnknownPattern = errors.New("unknown pattern")
	// ErrInvalidSelection indicates a numeric choice outside the catalog range.
	ErrInvalidSelection = errors.New("invalid selection")
)

//go:embed templates/*.py.tmpl
var templateFS embed.FS

// Pattern is one entry of the catalog.
type Pattern struct {
	Name        string
	Description string
	Direction   string
	Template    *template.Template
}

// catalog lists the patterns in presentation order.
var catalog = []Pattern{
	{Name: "api-led", Description: "API-Led Connectivity (3-tier: Experience, Process, System)", Direction: LeftToRight},
	{Name: "hybrid", Description: "Hybrid Integration (On-premises to Azure)", Direction: LeftToRight},
	{Name: "event-driven", Description: "Event-Driven Architecture (Pub/Sub with multiple handlers)", Direction: TopToBottom},
	{Name: "microservices", Description: "Microservices with Service Bus (Domain-driven design)", Direction: TopToBottom},
	{Name: "b2b-edi", Description: "B2B/EDI Integration (Trading partners with Integration Accounts)", Direction: LeftToRight},
	{Name: "data-pipeline", Description: "Data Pipeline (ETL/ELT with Data Factory and Synapse)", Direction: LeftToRight},
	{Name: "secure-private", Description: "Secure Architecture (Private Endpoints and VNet Integration)", Direction: TopToBottom},
	{Name: "multi-region", Description: "Multi-Region HA (Geo-redundant with Front Door)", Direction: TopToBottom},
	{Name: "iot-streaming", Description: "IoT & Streaming (Real-time data ingestion and processing)", Direction: LeftToRight},
}

func init() {
	for i := range catalog {
		name := catalog[i].Name + templateSuffix
		catalog[i].Template = template.Must(
			template.New(name).
				Funcs(sprig.TxtFuncMap()).
				Option("missingkey=error").
				ParseFS(templateFS, "templates/"+name),
		)
	}
}

// UnknownError reports a pattern name outside the catalog.
type UnknownError struct {
	Name  string
	Valid []string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown pattern '%s'. Available patterns: %s", e.Name, strings.Join(e.Valid, ", "))
}

func (e *UnknownError) Unwrap() error {
	return ErrUnknownPattern
}

// templateData is the value every pattern template is executed with.
type templateData struct {
	Title     string
	Output    string
	Direction string
}

// All returns the catalog in presentation order.
func All() []Pattern {
	out := make([]Pattern, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns the pattern names in presentation order.
func Names() []string {
	names := make([]string, len(catalog))
	for i, p := range catalog {
		names[i] = p.Name
	}
	return names
}

// Get looks up a pattern by exact name.
func Get(name string) (Pattern, error) {
	for _, p := range catalog {
		if p.Name == name {
			return p, nil
		}
	}
	return Pattern{}, &UnknownError{Name: name, Valid: Names()}
}

// Generate renders the script for pattern name. title is the diagram title
// and output the image file base name the script writes.
func Generate(name, title, output string) (string, error) {
	p, err := Get(name)
	if err != nil {
		return "", err
	}
	return p.Render(title, output)
}

// Render executes the pattern template.
func (p Pattern) Render(title, output string) (string, error) {
	var buf bytes.Buffer
	data := templateData{
		Title:     title,
		Output:    output,
		Direction: p.Direction,
	}
	if err := p.Template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render pattern %s: %w", p.Name, err)
	}
	return buf.String(), nil
}

// ResolveChoice maps interactive input to a pattern name. A number selects by
// 1-based catalog position; anything else is lower-cased with spaces turned
// into hyphens and must name a pattern.
func ResolveChoice(choice string) (string, error) {
	choice = strings.TrimSpace(choice)

	if isDigits(choice) {
		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(catalog) {
			return "", fmt.Errorf("%w: %s (choose 1-%d)", ErrInvalidSelection, choice, len(catalog))
		}
		return catalog[n-1].Name, nil
	}

	name := strings.ReplaceAll(strings.ToLower(choice), " ", "-")
	if _, err := Get(name); err != nil {
		return "", err
	}
	return name, nil
}

// NormalizeTitle applies the default title to empty input.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return title
}

// NormalizeOutput applies the default output name and strips a trailing .png.
func NormalizeOutput(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		output = DefaultOutput
	}
	return strings.TrimSuffix(output, ".png")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
