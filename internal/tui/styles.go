package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/reportdesk/internal/transcript"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	focusedHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("81")).Padding(0, 1)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	pendingStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)

	heroAccentColor        = lipgloss.Color("#ff8c00")
	heroSecondaryTextColor = lipgloss.Color("#ffb347")

	heroTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	taglineStyle   = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	modeBadgeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(heroSecondaryTextColor).Padding(0, 1)
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	pickerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Padding(0, 1)
	chipStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c"))

	userLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8ecae6"))
	aiLabelStyle     = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	systemLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func senderStyle(sender transcript.Sender) lipgloss.Style {
	switch sender {
	case transcript.User:
		return userLabelStyle
	case transcript.AI:
		return aiLabelStyle
	default:
		return systemLabelStyle
	}
}
