package export

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/san-kum/verlet/internal/analysis"
)

type PlotOptions struct {
	Width, Height int
	Stroke        string
	Caption       string
}

const plotMargin = 40

// PlotToSVG draws a polyline through points with the value range labelled
// on the left edge. Non-finite points are dropped; fewer than two points
// give an empty string.
func PlotToSVG(points []analysis.Point, opts PlotOptions) string {
	finite := make([]analysis.Point, 0, len(points))
	for _, p := range points {
		if !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0) {
			finite = append(finite, p)
		}
	}
	if len(finite) < 2 {
		return ""
	}
	if opts.Width <= 2*plotMargin || opts.Height <= 2*plotMargin {
		opts.Width, opts.Height = 800, 400
	}
	if opts.Stroke == "" {
		opts.Stroke = "#00ff88"
	}

	lo, hi := finite[0], finite[0]
	for _, p := range finite {
		lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
		lo.Y, hi.Y = math.Min(lo.Y, p.Y), math.Max(hi.Y, p.Y)
	}
	spanX, spanY := hi.X-lo.X, hi.Y-lo.Y
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	plotW := float64(opts.Width - 2*plotMargin)
	plotH := float64(opts.Height - 2*plotMargin)
	toX := func(x float64) float64 { return plotMargin + (x-lo.X)/spanX*plotW }
	toY := func(y float64) float64 { return plotMargin + plotH - (y-lo.Y)/spanY*plotH }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g stroke="#444466" stroke-width="1">
<line x1="%d" y1="%d" x2="%d" y2="%d"/>
<line x1="%d" y1="%d" x2="%d" y2="%d"/>
</g>
`, opts.Width, opts.Height, opts.Width, opts.Height,
		plotMargin, plotMargin, plotMargin, opts.Height-plotMargin,
		plotMargin, opts.Height-plotMargin, opts.Width-plotMargin, opts.Height-plotMargin)

	fmt.Fprintf(&sb, `<g fill="#888899" font-family="monospace" font-size="10">
<text x="2" y="%d">%.4g</text>
<text x="2" y="%d">%.4g</text>
<text x="%d" y="%d">%.4g</text>
<text x="%d" y="%d" text-anchor="end">%.4g</text>
`, plotMargin+4, hi.Y, opts.Height-plotMargin, lo.Y,
		plotMargin, opts.Height-plotMargin+14, lo.X,
		opts.Width-plotMargin, opts.Height-plotMargin+14, hi.X)
	if opts.Caption != "" {
		fmt.Fprintf(&sb, `<text x="%d" y="%d" text-anchor="middle">%s</text>
`, opts.Width/2, opts.Height-8, html.EscapeString(opts.Caption))
	}
	sb.WriteString("</g>\n")

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, opts.Stroke)
	for i, p := range finite {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s%.1f,%.1f", cmd, toX(p.X), toY(p.Y))
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
