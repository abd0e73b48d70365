package export

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/verlet/internal/analysis"
)

func TestPlotToSVG(t *testing.T) {
	if PlotToSVG([]analysis.Point{{X: 1, Y: 1}}, PlotOptions{}) != "" {
		t.Error("a single point is not a plot")
	}

	svg := PlotToSVG([]analysis.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}},
		PlotOptions{Width: 200, Height: 100, Stroke: "red", Caption: "ke <t>"})
	if !strings.Contains(svg, `stroke="red"`) {
		t.Error("expected stroke color")
	}
	if !strings.Contains(svg, `width="200" height="100"`) {
		t.Error("expected requested canvas size")
	}
	if strings.Count(svg, " L") != 2 {
		t.Error("expected two line segments")
	}
	// first point sits at the bottom-left corner of the plot area
	if !strings.Contains(svg, `d="M40.0,60.0 `) {
		t.Errorf("unexpected path start in\n%s", svg)
	}
	if !strings.Contains(svg, "ke &lt;t&gt;") {
		t.Error("expected escaped caption")
	}
}

func TestPlotToSVGDefaults(t *testing.T) {
	svg := PlotToSVG([]analysis.Point{{X: 0, Y: 1}, {X: 1, Y: 1}}, PlotOptions{})
	if !strings.Contains(svg, `width="800" height="400"`) {
		t.Error("expected default canvas size")
	}
	if !strings.Contains(svg, `stroke="#00ff88"`) {
		t.Error("expected default stroke")
	}
}

func TestPlotToSVGDropsNonFinite(t *testing.T) {
	svg := PlotToSVG([]analysis.Point{{X: 0, Y: 0}, {X: 1, Y: math.NaN()}, {X: 2, Y: 1}}, PlotOptions{})
	if strings.Count(svg, " L") != 1 {
		t.Errorf("expected one segment, got\n%s", svg)
	}
	if strings.Contains(svg, "NaN") {
		t.Error("NaN leaked into the path")
	}
}
