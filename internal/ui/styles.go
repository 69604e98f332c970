package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/josephgoksu/smarttask/models"
)

var (
	ColorPrimary   = lipgloss.Color("63")  // Indigo
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorText      = lipgloss.Color("252")
	ColorCyan      = lipgloss.Color("87")

	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleText    = lipgloss.NewStyle().Foreground(ColorText)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	StyleSectionTitle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Underline(true)

	// Result card, left border colored by priority.
	StyleCard = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			PaddingLeft(1).
			MarginBottom(1)

	StylePrefixDone  = lipgloss.NewStyle().Foreground(ColorSuccess)
	StylePrefixWarn  = lipgloss.NewStyle().Foreground(ColorWarning)
	StylePrefixError = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
)

// PriorityColor maps a priority level to its display color.
func PriorityColor(level models.PriorityLevel) lipgloss.Color {
	switch level {
	case models.PriorityHigh:
		return ColorError
	case models.PriorityMedium:
		return ColorWarning
	case models.PriorityLow:
		return ColorSuccess
	}
	return ColorSecondary
}

// PriorityBadge renders level as an upper-case colored badge.
func PriorityBadge(level models.PriorityLevel) string {
	label := string(level)
	if label == "" {
		label = "unranked"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(PriorityColor(level)).
		Bold(true).
		Padding(0, 1).
		Render(strings.ToUpper(label))
}

// Icon returns a styled icon string
func Icon(icon string, style lipgloss.Style) string {
	return style.Render(icon)
}
