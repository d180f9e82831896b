package diagram

import (
	"bytes"
	"embed"
	"fmt"
	"math"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*.svg.tmpl
var svgFS embed.FS

var svgTemplates = template.Must(
	template.New("svg").Funcs(sprig.TxtFuncMap()).ParseFS(svgFS, "templates/*.svg.tmpl"),
)

func renderSVG(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := svgTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Gantt geometry, in pixels.
const (
	ganttWidth     = 1000
	ganttLeft      = 180
	ganttRight     = 40
	ganttTop       = 60
	ganttRow       = 32
	ganttBar       = 19
	ganttAxis      = 40
	ganttLegend    = 50
	ganttLegendGap = 140
)

const ganttFallbackColor = "#5B9BD5"

// ganttCategories lists the category colours in legend order.
var ganttCategories = []struct {
	Name  string
	Color string
}{
	{"Planning", "#4472C4"},
	{"Development", "#ED7D31"},
	{"Testing", "#70AD47"},
	{"Migration", "#FFC000"},
	{"Training", "#9E480E"},
	{"Deployment", "#5B9BD5"},
}

// CategoryColor returns the bar colour of a Gantt category. Empty means
// Development; unknown categories get the fallback colour.
func CategoryColor(category string) string {
	if category == "" {
		category = "Development"
	}
	for _, c := range ganttCategories {
		if c.Name == category {
			return c.Color
		}
	}
	return ganttFallbackColor
}

type ganttBarView struct {
	Label  string
	X      float64
	Y      float64
	Width  float64
	Height float64
	TextY  float64
	Color  string
}

type ganttTickView struct {
	X     float64
	Label int
}

type ganttLegendView struct {
	X     float64
	Name  string
	Color string
}

type ganttView struct {
	Title       string
	Width       int
	Height      int
	ChartLeft   float64
	ChartRight  float64
	ChartTop    float64
	ChartBottom float64
	Bars        []ganttBarView
	Ticks       []ganttTickView
	Legend      []ganttLegendView
	LegendY     float64
}

func buildGantt(title string, tasks []Task) (string, error) {
	weeks := 1.0
	for _, task := range tasks {
		if task.Start < 0 || task.Duration < 0 {
			return "", fmt.Errorf("%w: task %s has negative start or duration", ErrInvalidSpec, task.Name)
		}
		weeks = math.Max(weeks, task.Start+task.Duration)
	}
	weeks = math.Ceil(weeks)

	chartWidth := float64(ganttWidth - ganttLeft - ganttRight)
	scale := chartWidth / weeks
	chartBottom := float64(ganttTop + len(tasks)*ganttRow)
	height := int(chartBottom) + ganttAxis + ganttLegend

	view := ganttView{
		Title:       title,
		Width:       ganttWidth,
		Height:      height,
		ChartLeft:   ganttLeft,
		ChartRight:  ganttWidth - ganttRight,
		ChartTop:    ganttTop,
		ChartBottom: chartBottom,
		LegendY:     float64(height - ganttLegend/2),
	}

	for i, task := range tasks {
		y := float64(ganttTop + i*ganttRow)
		view.Bars = append(view.Bars, ganttBarView{
			Label:  task.Name,
			X:      ganttLeft + task.Start*scale,
			Y:      y + float64(ganttRow-ganttBar)/2,
			Width:  task.Duration * scale,
			Height: ganttBar,
			TextY:  y + float64(ganttRow)/2 + 4,
			Color:  CategoryColor(task.Category),
		})
	}

	for w := 0; w <= int(weeks); w++ {
		view.Ticks = append(view.Ticks, ganttTickView{
			X:     ganttLeft + float64(w)*scale,
			Label: w,
		})
	}

	for i, c := range ganttCategories {
		view.Legend = append(view.Legend, ganttLegendView{
			X:     float64(ganttLeft + i*ganttLegendGap),
			Name:  c.Name,
			Color: c.Color,
		})
	}

	return renderSVG("gantt.svg.tmpl", view)
}

// Wireframe canvas size, in pixels.
const (
	wireframeWidth  = 800
	wireframeHeight = 600
)

type wireframeView struct {
	Title  string
	Width  int
	Height int
}

// WireframeLayout normalises a layout name. Empty means dashboard and
// anything unknown becomes detail.
func WireframeLayout(layout string) string {
	switch layout {
	case "":
		return LayoutDashboard
	case LayoutDashboard, LayoutList:
		return layout
	default:
		return LayoutDetail
	}
}

func buildWireframe(title, layout string) (string, error) {
	view := wireframeView{
		Title:  title,
		Width:  wireframeWidth,
		Height: wireframeHeight,
	}
	return renderSVG("wireframe-"+WireframeLayout(layout)+".svg.tmpl", view)
}
