package diagram

import (
	"fmt"
	"strings"
)

// phaseLabel stacks name, duration and bulleted items as record fields.
func phaseLabel(phase Phase) string {
	fields := []string{escapeRecord(phase.Name)}
	if phase.Duration != "" {
		fields = append(fields, escapeRecord(phase.Duration))
	}
	if len(phase.Items) > 0 {
		var items strings.Builder
		for _, item := range phase.Items {
			items.WriteString(escapeRecord("• " + item))
			items.WriteString(`\l`)
		}
		fields = append(fields, items.String())
	}
	return strings.Join(fields, "|")
}

func buildTimeline(title string, phases []Phase) (string, error) {
	g := newDotGraph(title, map[string]string{
		"rankdir": "LR",
		"pad":     "0.5",
	})

	prev := ""
	for i, phase := range phases {
		color := phase.Color
		if color == "" {
			color = defaultTableColor
		}
		id := fmt.Sprintf("phase%d", i)

		err := g.addNode(id, map[string]string{
			"shape":     "record",
			"label":     phaseLabel(phase),
			"style":     "filled,rounded",
			"fillcolor": color,
			"fontcolor": "white",
			"color":     color,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidSpec, err)
		}

		if prev != "" {
			if err := g.addEdge(prev, id, nil); err != nil {
				return "", fmt.Errorf("%w: %w", ErrInvalidSpec, err)
			}
		}
		prev = id
	}

	return g.render()
}
