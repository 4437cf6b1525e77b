package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/csheth/reportdesk/internal/attachment"
)

func (m *model) View() string {
	if m.pickerOpen {
		return m.viewPicker()
	}
	m.refreshReportIfDirty()
	m.refreshTranscriptIfDirty()

	parts := []string{
		m.heroView(),
		m.reportPanel(),
		m.transcriptPanel(),
		m.attachmentChip(),
		m.composerPanel(),
	}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if status := m.statusLine(); status != "" {
		parts = append(parts, helperStyle.Render(status))
	}
	if m.helpVisible {
		parts = append(parts, m.keyLegendView())
	}
	parts = append(parts, m.sessionMeterView())
	return joinNonEmpty(parts)
}

func (m *model) viewPicker() string {
	mode := m.chat.Mode()
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Attach " + mode.AcceptHint()))
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render(m.picker.CurrentDirectory))
	b.WriteRune('\n')
	b.WriteRune('\n')
	b.WriteString(m.picker.View())
	b.WriteRune('\n')
	b.WriteString(helperStyle.Render("Enter to choose, ← / Backspace for parent folder, Esc to cancel."))
	parts := []string{m.heroView(), pickerBoxStyle.Render(b.String())}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	title := heroTitleStyle.Render("ReportDesk")
	mode := modeBadgeStyle.Render(m.chat.Mode().Label())
	line := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", mode)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		line,
		taglineStyle.Render(heroTagline),
	)
}

func (m *model) reportPanel() string {
	doc := m.chat.Report()
	header := sectionHeaderStyle.Render("Report")
	if m.focus == focusReport {
		header = focusedHeaderStyle.Render("Report")
	}
	meta := fmt.Sprintf("%s characters", humanize.Comma(int64(doc.CharCount())))
	if doc.DownloadEnabled() {
		meta += fmt.Sprintf("  •  Ctrl+S saves %s", m.chat.Mode().Filename())
	} else {
		meta += "  •  download unavailable"
	}
	return joinNonEmpty([]string{
		lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", helperStyle.Render(meta)),
		m.reportView.View(),
	})
}

func (m *model) transcriptPanel() string {
	header := sectionHeaderStyle.Render("Conversation")
	if m.focus == focusTranscript {
		header = focusedHeaderStyle.Render("Conversation")
	}
	body := strings.TrimRight(m.transcriptView.View(), "\n")
	if strings.TrimSpace(body) == "" {
		body = helperStyle.Render("Messages will appear here.")
	}
	return header + "\n" + body
}

func (m *model) attachmentChip() string {
	file, ok := m.chat.Attachment()
	if !ok {
		if m.attaching {
			return helperStyle.Render(m.spinner.View() + " Reading attachment…")
		}
		return helperStyle.Render("No attachment. Ctrl+O to attach " + m.chat.Mode().AcceptHint() + ".")
	}
	return chipStyle.Render("Attached: " + attachment.Inspect(file) + "  (Ctrl+X to remove)")
}

func (m *model) composerPanel() string {
	header := sectionHeaderStyle.Render("Composer")
	if m.focus == focusComposer {
		header = focusedHeaderStyle.Render("Composer")
	}
	return header + "\n" + m.composer.View()
}

func (m *model) statusLine() string {
	if m.chat.Busy() {
		return m.spinner.View() + " Waiting for the backend… input is disabled until it answers."
	}
	return m.infoMessage
}

func (m *model) sessionMeterView() string {
	stats := []string{
		"Mode " + string(m.chat.Mode()),
		"Workspace " + m.chat.WorkspaceID(),
	}
	if m.chat.Busy() {
		stats = append(stats, "Working…")
	} else {
		stats = append(stats, "Ready")
	}
	if badges := m.jobStatusBadges(); len(badges) > 0 {
		stats = append(stats, badges...)
	}
	stats = append(stats, "Ctrl+G help")
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) jobStatusBadges() []string {
	if len(m.running) == 0 {
		return nil
	}
	counts := map[jobKind]int{}
	for _, snap := range m.running {
		counts[snap.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	badges := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		n := counts[jobKind(kind)]
		if n == 1 {
			badges = append(badges, kind)
			continue
		}
		badges = append(badges, fmt.Sprintf("%s×%d", kind, n))
	}
	return badges
}

func (m *model) keyLegendView() string {
	hints := m.keys.legend()
	rows := []string{sectionHeaderStyle.Render("Keyboard Cheatsheet")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			help := hint.Help()
			k := keyStyle.Render(help.Key)
			desc := keyDescStyle.Width(18).Render(" " + help.Desc)
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, k, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
