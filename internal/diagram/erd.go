package diagram

import (
	"fmt"
	"strings"
)

const defaultTableColor = "#4472C4"

// Permission cell colours of the access matrix.
const (
	colorFullAccess    = "#C6EFCE"
	colorPartialAccess = "#FFEB9C"
	colorReadOnly      = "#FFC7CE"
	colorNoAccess      = "#F0F0F0"
)

// PermissionColor returns the cell colour for a permission string: CRUD is
// green, CRU/CR/RU amber, R red and anything else grey.
func PermissionColor(perm string) string {
	switch perm {
	case "CRUD":
		return colorFullAccess
	case "CRU", "CR", "RU":
		return colorPartialAccess
	case "R":
		return colorReadOnly
	default:
		return colorNoAccess
	}
}

func keyMarker(key string) string {
	switch strings.ToUpper(key) {
	case "PK":
		return "PK "
	case "FK":
		return "FK "
	default:
		return ""
	}
}

// tableLabel builds a record label: the table name above one left-aligned
// field listing the columns. With rankdir=LR top-level fields stack vertically.
func tableLabel(table Table) string {
	var rows strings.Builder
	for _, col := range table.Columns {
		rows.WriteString(escapeRecord(keyMarker(col.Key) + col.Name + " : " + col.Type))
		rows.WriteString(`\l`)
	}
	return escapeRecord(table.Name) + "|" + rows.String()
}

func buildERD(title string, tables []Table, relations []Relation) (string, error) {
	g := newDotGraph(title, map[string]string{
		"rankdir": "LR",
		"splines": "spline",
		"nodesep": "0.8",
		"ranksep": "1.5",
	})

	for _, table := range tables {
		color := table.Color
		if color == "" {
			color = defaultTableColor
		}
		err := g.addNode(table.Name, map[string]string{
			"shape":     "record",
			"label":     tableLabel(table),
			"style":     "filled",
			"fillcolor": "white",
			"color":     color,
			"penwidth":  "2",
		})
		if err != nil {
			return "", fmt.Errorf("%w: table %s: %w", ErrInvalidSpec, table.Name, err)
		}
	}

	for _, rel := range relations {
		attrs := map[string]string{
			"dir":       "both",
			"arrowhead": "none",
			"arrowtail": "crow",
		}
		if rel.Label != "" {
			attrs["label"] = escapeText(rel.Label)
		}
		if err := g.addEdge(rel.From, rel.To, attrs); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidSpec, err)
		}
	}

	return g.render()
}

// buildMatrix draws the access matrix as one record node, one column per
// entity, plus a legend of the permission colours.
func buildMatrix(title string, m AccessMap) (string, error) {
	if len(m.Permissions) != len(m.Roles) {
		return "", fmt.Errorf("%w: %d roles but %d permission rows", ErrInvalidSpec, len(m.Roles), len(m.Permissions))
	}
	for i, row := range m.Permissions {
		if len(row) != len(m.Entities) {
			return "", fmt.Errorf("%w: role %s has %d permissions for %d entities", ErrInvalidSpec, m.Roles[i], len(row), len(m.Entities))
		}
	}

	g := newDotGraph(title, map[string]string{"pad": "0.5"})

	columns := make([]string, 0, len(m.Entities)+1)

	header := []string{"Role / Entity"}
	header = append(header, m.Roles...)
	columns = append(columns, recordColumn(header))

	for j, entity := range m.Entities {
		cells := []string{entity}
		for i := range m.Roles {
			cells = append(cells, m.Permissions[i][j])
		}
		columns = append(columns, recordColumn(cells))
	}

	err := g.addNode("matrix", map[string]string{
		"shape":     "record",
		"label":     strings.Join(columns, "|"),
		"style":     "filled",
		"fillcolor": "white",
		"color":     defaultTableColor,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	legend := []struct {
		id    string
		label string
		perm  string
	}{
		{"legend_full", "CRUD: full access", "CRUD"},
		{"legend_partial", "CRU / CR / RU: partial", "CRU"},
		{"legend_read", "R: read only", "R"},
		{"legend_none", "-: no access", "-"},
	}
	prev := "matrix"
	for _, item := range legend {
		err := g.addNode(item.id, map[string]string{
			"label":     escapeText(item.label),
			"shape":     "box",
			"style":     "filled",
			"fillcolor": PermissionColor(item.perm),
			"color":     "#CCCCCC",
			"fontsize":  "9",
		})
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidSpec, err)
		}
		if err := g.addEdge(prev, item.id, map[string]string{"style": "invis"}); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidSpec, err)
		}
		prev = item.id
	}

	return g.render()
}

// recordColumn stacks cells vertically inside a top-to-bottom record.
func recordColumn(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = escapeRecord(c)
	}
	return "{" + strings.Join(escaped, "|") + "}"
}
