package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	Panel         lipgloss.Style
	Header        lipgloss.Style
	Label         lipgloss.Style
	Value         lipgloss.Style
	Active        lipgloss.Style
	Subtle        lipgloss.Style
	Graph         lipgloss.Style
	StatusRunning lipgloss.Style
	StatusPaused  lipgloss.Style
	StatusError   lipgloss.Style
	SparkHigh     lipgloss.Style
	SparkMid      lipgloss.Style
	SparkLow      lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Title).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Border),
		Label:         lipgloss.NewStyle().Foreground(t.Muted).Width(16),
		Value:         lipgloss.NewStyle().Foreground(t.Text),
		Active:        lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Subtle:        lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Graph:         lipgloss.NewStyle().Foreground(t.Title).Padding(1, 0),
		StatusRunning: lipgloss.NewStyle().Bold(true).Foreground(t.Good),
		StatusPaused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		StatusError:   lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		SparkHigh:     lipgloss.NewStyle().Foreground(t.Good),
		SparkMid:      lipgloss.NewStyle().Foreground(t.Warning),
		SparkLow:      lipgloss.NewStyle().Foreground(t.Error),
	}
}

func spinner(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return frames[frame%len(frames)]
}

// ProgressBar renders a bar for percent in [0,1].
func (s styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if percent > 0.8 {
		return s.SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return s.SparkMid.Render(bar)
	}
	return s.SparkLow.Render(bar)
}

// Sparkline renders the last width values, scaled between their extremes.
func (s styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return s.Subtle.Render(strings.Repeat("─", width))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			sb.WriteString(s.SparkHigh.Render(c))
		case norm > 0.3:
			sb.WriteString(s.SparkMid.Render(c))
		default:
			sb.WriteString(s.SparkLow.Render(c))
		}
	}
	return sb.String()
}
