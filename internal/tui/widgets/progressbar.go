// ABOUTME: Thin progress bar for how far an article has been scrolled
// ABOUTME: Filled cells use the accent color and the label shows the percentage

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBarConfig holds configuration for the progress bar
type ProgressBarConfig struct {
	Width       int
	FilledColor lipgloss.Color
	EmptyColor  lipgloss.Color
	ShowPercent bool
}

// DefaultProgressBarConfig returns sensible defaults
func DefaultProgressBarConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:       20,
		FilledColor: lipgloss.Color("#3B82F6"),
		EmptyColor:  lipgloss.Color("#374151"),
		ShowPercent: true,
	}
}

// ProgressBar renders fraction (0 to 1) as a bar
func ProgressBar(fraction float64, config ProgressBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}
	fraction = min(max(fraction, 0), 1)

	filled := int(fraction*float64(config.Width) + 0.5)
	bar := lipgloss.NewStyle().Foreground(config.FilledColor).Render(strings.Repeat("━", filled)) +
		lipgloss.NewStyle().Foreground(config.EmptyColor).Render(strings.Repeat("─", config.Width-filled))

	if !config.ShowPercent {
		return bar
	}
	label := lipgloss.NewStyle().Foreground(config.EmptyColor).Render(fmt.Sprintf(" %3.0f%%", fraction*100))
	return bar + label
}

// ReadingProgress renders the scroll position of an article body
// spanning width cells, label included.
func ReadingProgress(fraction float64, width int) string {
	cfg := DefaultProgressBarConfig()
	cfg.Width = max(5, width-5)
	return ProgressBar(fraction, cfg)
}
