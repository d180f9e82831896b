// Package diagram builds the non-architecture diagram types: process flows,
// swimlanes, entity-relationship diagrams, access matrices, Gantt charts,
// phase timelines and UI wireframes. Graph-shaped types are emitted as
// Graphviz DOT, the rest as SVG.
package diagram

import (
	"errors"
	"fmt"
	"strings"
)

// Type names a diagram type.
type Type string

const (
	Process   Type = "process"
	Swimlane  Type = "swimlane"
	ERD       Type = "erd"
	Matrix    Type = "matrix"
	Gantt     Type = "gantt"
	Timeline  Type = "timeline"
	Wireframe Type = "wireframe"
)

// Artifact formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// Wireframe layouts.
const (
	LayoutDashboard = "dashboard"
	LayoutList      = "list"
	LayoutDetail    = "detail"
)

var (
	// ErrUnknownType is returned for a type name outside the closed set.
	ErrUnknownType = errors.New("unknown diagram type")
	// ErrInvalidSpec is returned when diagram input data is inconsistent.
	ErrInvalidSpec = errors.New("invalid diagram spec")
)

// TypeInfo describes one diagram type.
type TypeInfo struct {
	Type        Type
	Description string
	Format      string
}

var typeCatalog = []TypeInfo{
	{Process, "Business process flow with decisions", FormatDOT},
	{Swimlane, "Process flow across actors, one lane per actor", FormatDOT},
	{ERD, "Entity relationship diagram with keys and relations", FormatDOT},
	{Matrix, "Role and entity access control matrix", FormatDOT},
	{Gantt, "Gantt chart of tasks over weeks", FormatSVG},
	{Timeline, "Horizontal project phase timeline", FormatDOT},
	{Wireframe, "UI wireframe (dashboard, list or detail layout)", FormatSVG},
}

// Types returns every diagram type in presentation order.
func Types() []TypeInfo {
	out := make([]TypeInfo, len(typeCatalog))
	copy(out, typeCatalog)
	return out
}

// TypeNames returns the valid type names in presentation order.
func TypeNames() []string {
	names := make([]string, len(typeCatalog))
	for i, info := range typeCatalog {
		names[i] = string(info.Type)
	}
	return names
}

// ParseType validates a type name.
func ParseType(name string) (Type, error) {
	for _, info := range typeCatalog {
		if string(info.Type) == name {
			return info.Type, nil
		}
	}
	return "", fmt.Errorf("%w '%s'. Available types: %s", ErrUnknownType, name, strings.Join(TypeNames(), ", "))
}

// Options tune how a diagram is built.
type Options struct {
	Layout string // wireframe layout; anything unknown falls back to detail
}

// Artifact is the source of a built diagram.
type Artifact struct {
	Type   Type
	Format string // FormatDOT or FormatSVG
	Body   string
}

// Extension returns the file extension for the artifact source, with the dot.
func (a Artifact) Extension() string {
	return "." + a.Format
}

// Build produces the diagram source for typ. A nil spec, or a spec without the
// section typ reads, uses the built-in example data.
func Build(typ Type, title string, spec *Spec, opts Options) (Artifact, error) {
	if spec == nil {
		spec = &Spec{}
	}

	var (
		body   string
		format = FormatDOT
		err    error
	)

	switch typ {
	case Process:
		body, err = buildProcess(title, spec.stepsOrDefault())
	case Swimlane:
		lanes, flows := spec.lanesOrDefault()
		body, err = buildSwimlane(title, lanes, flows)
	case ERD:
		tables, relations := spec.tablesOrDefault()
		body, err = buildERD(title, tables, relations)
	case Matrix:
		body, err = buildMatrix(title, spec.matrixOrDefault())
	case Timeline:
		body, err = buildTimeline(title, spec.phasesOrDefault())
	case Gantt:
		format = FormatSVG
		body, err = buildGantt(title, spec.tasksOrDefault())
	case Wireframe:
		format = FormatSVG
		body, err = buildWireframe(title, opts.Layout)
	default:
		_, err = ParseType(string(typ))
	}
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{Type: typ, Format: format, Body: body}, nil
}
