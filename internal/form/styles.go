package form

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	colorPrimary = lipgloss.Color("86")  // Cyan
	colorSuccess = lipgloss.Color("42")  // Green
	colorError   = lipgloss.Color("196") // Red
	colorWarning = lipgloss.Color("214") // Orange
	colorMuted   = lipgloss.Color("240") // Gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Padding(0, 1)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	focusedStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	buttonStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 2)

	focusedButtonStyle = buttonStyle.
				Foreground(colorSuccess).
				BorderForeground(colorSuccess).
				Bold(true)

	reportStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true).
			MarginTop(1)
)

const (
	iconTool    = "🔧"
	iconArrow   = "►"
	iconError   = "✗"
	iconWarning = "⚠"
	iconSpinner = "⏳"
)

func renderHeader(text string) string {
	return headerStyle.Render(iconTool + " " + text)
}

func renderSectionHeader(text string) string {
	return sectionHeaderStyle.Render(text)
}

func renderError(text string) string {
	return errorStyle.Render(iconError + " " + text)
}

func renderWarning(text string) string {
	return warningStyle.Render(iconWarning + " " + text)
}

func renderCheckbox(focused, checked bool, text string) string {
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	if focused {
		return focusedStyle.Render(iconArrow + " " + box + " " + text)
	}
	return "  " + box + " " + text
}

func renderButton(focused bool, text string) string {
	if focused {
		return focusedButtonStyle.Render(text)
	}
	return buttonStyle.Render(text)
}

func renderStatusBar(text string) string {
	return statusBarStyle.Render(text)
}
