package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tracker-go/internal/app"
)

const (
	appTitle   = "Interactive Learning Tracker"
	appTagline = "Track your progress. Save your wins. Reset if needed."

	indent     = "  "
	cellDone   = "[x]"
	cellEmpty  = "[ ]"
	cellWidth  = 3
	saveLabel  = "[ Save Progress ]"
	resetLabel = "[ Reset Progress ]"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	taglineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	taskNameStyle  = lipgloss.NewStyle().Bold(true)
	effortStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cellDoneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	cellEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	barFilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	buttonStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func noticeStyle(kind app.NoticeKind) lipgloss.Style {
	switch kind {
	case app.NoticeSuccess:
		return successStyle
	case app.NoticeWarning:
		return warningStyle
	default:
		return errorStyle
	}
}

func noticeIcon(kind app.NoticeKind) string {
	switch kind {
	case app.NoticeSuccess:
		return "✓"
	case app.NoticeWarning:
		return "!"
	default:
		return "✗"
	}
}
