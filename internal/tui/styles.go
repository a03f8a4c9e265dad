package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/bizflow/internal/model"
)

// Color palette
var (
	// Priority colors
	PriorityHighColor   = lipgloss.Color("#FF6B6B") // Red
	PriorityMediumColor = lipgloss.Color("#FFE66D") // Yellow
	PriorityLowColor    = lipgloss.Color("#4ECDC4") // Blue

	// Column accents
	ColumnToDo       = lipgloss.Color("#6C757D")
	ColumnInProgress = lipgloss.Color("#FFB347")
	ColumnInReview   = lipgloss.Color("#A29BFE")
	ColumnDone       = lipgloss.Color("#95E1A3")

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	ColumnStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	ColumnFocusedStyle = ColumnStyle.
				BorderForeground(Primary)

	CardStyle = lipgloss.NewStyle().
			Padding(0, 1)

	CardSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	CardDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	PriorityHighStyle   = lipgloss.NewStyle().Foreground(PriorityHighColor).Bold(true)
	PriorityMediumStyle = lipgloss.NewStyle().Foreground(PriorityMediumColor)
	PriorityLowStyle    = lipgloss.NewStyle().Foreground(PriorityLowColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Detail and input panels
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// ColumnColor returns the accent for a status column
func ColumnColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusInProgress:
		return ColumnInProgress
	case model.StatusInReview:
		return ColumnInReview
	case model.StatusDone:
		return ColumnDone
	default:
		return ColumnToDo
	}
}

// GetPriorityStyle returns the style for a given priority
func GetPriorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityHigh:
		return PriorityHighStyle
	case model.PriorityMedium:
		return PriorityMediumStyle
	default:
		return PriorityLowStyle
	}
}

// FormatPriority returns a one-letter priority badge
func FormatPriority(p model.Priority) string {
	label := "L"
	switch p {
	case model.PriorityHigh:
		label = "H"
	case model.PriorityMedium:
		label = "M"
	}
	return GetPriorityStyle(p).Render(label)
}
