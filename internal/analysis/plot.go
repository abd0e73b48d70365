package analysis

import (
	"math"
	"strings"
)

type Point struct{ X, Y float64 }

// PhasePlotASCII plots ys against xs, scaled to fit with a 10% margin.
func PhasePlotASCII(xs, ys []float64, width, height int) string {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n == 0 || width < 2 || height < 2 {
		return ""
	}

	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			points = append(points, Point{xs[i], ys[i]})
		}
	}
	if len(points) == 0 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1

	canvas := newCanvas(width, height)
	for _, p := range points {
		canvas.plot(p.X, p.Y, minX, maxX, minY, maxY, '•')
	}

	// axes where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / (maxX - minX) * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/(maxY-minY)*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	return canvas.String()
}

type canvas [][]rune

func newCanvas(width, height int) canvas {
	c := make(canvas, height)
	for i := range c {
		c[i] = []rune(strings.Repeat(" ", width))
	}
	return c
}

func (c canvas) cell(x, y, minX, maxX, minY, maxY float64) (int, int, bool) {
	height := len(c)
	if height == 0 || maxX <= minX || maxY <= minY || !isFinite(x) || !isFinite(y) {
		return 0, 0, false
	}
	width := len(c[0])
	col := int((x - minX) / (maxX - minX) * float64(width-1))
	row := height - 1 - int((y-minY)/(maxY-minY)*float64(height-1))
	if row < 0 || row >= height || col < 0 || col >= width {
		return 0, 0, false
	}
	return row, col, true
}

func (c canvas) plot(x, y, minX, maxX, minY, maxY float64, r rune) {
	if row, col, ok := c.cell(x, y, minX, maxX, minY, maxY); ok {
		c[row][col] = r
	}
}

func (c canvas) String() string {
	var sb strings.Builder
	for _, row := range c {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
