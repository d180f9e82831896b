package diagram

import (
	"fmt"
)

type nodeStyle struct {
	shape     string
	style     string
	fillcolor string
	color     string
}

var stepStyles = map[string]nodeStyle{
	"start":    {"ellipse", "filled", "#E8F5E9", "#4CAF50"},
	"end":      {"ellipse", "filled", "#E8F5E9", "#4CAF50"},
	"process":  {"box", "filled,rounded", "#E3F2FD", "#2196F3"},
	"decision": {"diamond", "filled", "#FFF8E1", "#FFC107"},
	"user":     {"box", "filled", "#F3E5F5", "#9C27B0"},
	"system":   {"box", "filled", "#E0F7FA", "#00BCD4"},
	"data":     {"cylinder", "filled", "#FBE9E7", "#FF5722"},
	"document": {"note", "filled", "#FFFDE7", "#FFEB3B"},
}

// styleFor returns the style of a step kind; unknown kinds are drawn as process.
func styleFor(kind string) nodeStyle {
	if s, ok := stepStyles[kind]; ok {
		return s
	}
	return stepStyles["process"]
}

func buildProcess(title string, steps []Step) (string, error) {
	g := newDotGraph(title, map[string]string{
		"rankdir": "TB",
		"pad":     "0.5",
		"nodesep": "0.8",
		"ranksep": "0.8",
	})

	for _, step := range steps {
		s := styleFor(step.Kind)
		err := g.addNode(step.ID, map[string]string{
			"label":     escapeText(step.Label),
			"shape":     s.shape,
			"style":     s.style,
			"fillcolor": s.fillcolor,
			"color":     s.color,
		})
		if err != nil {
			return "", fmt.Errorf("%w: step %s: %w", ErrInvalidSpec, step.ID, err)
		}
	}

	for _, step := range steps {
		for _, link := range step.Next {
			attrs := map[string]string{}
			if link.Label != "" {
				attrs["label"] = escapeText(link.Label)
			}
			if err := g.addEdge(step.ID, link.To, attrs); err != nil {
				return "", fmt.Errorf("%w: %w", ErrInvalidSpec, err)
			}
		}
	}

	return g.render()
}

// buildSwimlane draws each step filled with its lane colour, with a header
// node per lane. Steps of one lane share a group so dot keeps them aligned.
func buildSwimlane(title string, lanes []Lane, flows []Flow) (string, error) {
	g := newDotGraph(title, map[string]string{
		"rankdir":  "TB",
		"pad":      "0.5",
		"compound": "true",
	})

	for i, lane := range lanes {
		color := lane.Color
		if color == "" {
			color = "#F5F5F5"
		}
		group := fmt.Sprintf("lane_%d", i)

		err := g.addNode(group, map[string]string{
			"label":    escapeText(lane.Name),
			"shape":    "plaintext",
			"fontsize": "12",
			"group":    group,
		})
		if err != nil {
			return "", fmt.Errorf("%w: lane %s: %w", ErrInvalidSpec, lane.Name, err)
		}

		for j, step := range lane.Steps {
			err := g.addNode(step.ID, map[string]string{
				"label":     escapeText(step.Label),
				"shape":     "box",
				"style":     "rounded,filled",
				"fillcolor": color,
				"group":     group,
			})
			if err != nil {
				return "", fmt.Errorf("%w: lane %s: %w", ErrInvalidSpec, lane.Name, err)
			}
			if j == 0 {
				if err := g.addEdge(group, step.ID, map[string]string{"style": "invis"}); err != nil {
					return "", fmt.Errorf("%w: %w", ErrInvalidSpec, err)
				}
			}
		}
	}

	for _, flow := range flows {
		attrs := map[string]string{}
		if flow.Label != "" {
			attrs["label"] = escapeText(flow.Label)
		}
		if err := g.addEdge(flow.From, flow.To, attrs); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidSpec, err)
		}
	}

	return g.render()
}
