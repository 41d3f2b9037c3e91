package monitor

import (
	"github.com/auth-xyz/process-info/internal/ui"
	"github.com/charmbracelet/lipgloss"
)

// Base styles for the dashboard
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ui.ColorPrimary).
			Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	PendingStyle = lipgloss.NewStyle().
			Foreground(ui.ColorInfo)

	StoppingStyle = lipgloss.NewStyle().
			Foreground(ui.ColorWarning)
)
