package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Tab bar styles
	TabStyle       = lipgloss.NewStyle().Padding(0, 2)
	ActiveTabStyle = TabStyle.Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))
	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("#888888"))

	// Verdict colors
	VerdictProceedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	VerdictCautionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true)
	VerdictWaitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true)
	VerdictNeutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Bold(true)

	// Conflict severity colors
	SeverityHighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	SeverityMediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	SeverityLowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// Flow colors
	FlowInStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	FlowOutStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	FlowFlatStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// General styles
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	BorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	AlertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)

	// Flow bar colors
	BarInStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	BarOutStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)
