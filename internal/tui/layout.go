package tui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/reportdesk/internal/report"
	"github.com/csheth/reportdesk/internal/transcript"
)

type pageLayout struct {
	windowWidth      int
	windowHeight     int
	viewportWidth    int
	reportHeight     int
	transcriptHeight int
	composerHeight   int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:    80,
		reportHeight:     10,
		transcriptHeight: 8,
		composerHeight:   3,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	l.composerHeight = 3
	// header, section titles, chip, status and spacing
	const chrome = 12
	usable := height - chrome - l.composerHeight
	if usable < 10 {
		usable = 10
	}
	l.transcriptHeight = usable * 2 / 5
	if l.transcriptHeight < 4 {
		l.transcriptHeight = 4
	}
	l.reportHeight = usable - l.transcriptHeight
	if l.reportHeight < 6 {
		l.reportHeight = 6
	}
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

func (m *model) refreshReportIfDirty() {
	if !m.reportDirty {
		return
	}
	m.reportDirty = false
	m.reportView.SetContent(m.buildReportContent())
}

func (m *model) refreshTranscriptIfDirty() {
	if !m.transcriptDirty {
		return
	}
	m.transcriptDirty = false
	atBottom := m.transcriptView.AtBottom()
	m.transcriptView.SetContent(m.buildTranscriptContent())
	if atBottom {
		m.transcriptView.GotoBottom()
	}
}

func (m *model) buildReportContent() string {
	doc := m.chat.Report()
	if doc.Empty() {
		return helperStyle.Render(report.Placeholder)
	}
	// Content is shown verbatim, wrapped only for display.
	return wordwrap.String(doc.Text(), m.wrapWidth(2))
}

func (m *model) buildTranscriptContent() string {
	cb := &contentBuilder{}
	entries := m.chat.Transcript().Entries()
	wrap := m.wrapWidth(4)
	for idx, entry := range entries {
		cb.WriteString(senderStyle(entry.Sender).Render(transcript.Label(entry.Sender)))
		cb.WriteRune('\n')
		text := entry.Text
		if entry.Transient {
			text = m.spinner.View() + " " + text
		}
		body := wordwrap.String(text, wrap)
		if entry.Transient {
			body = pendingStyle.Render(body)
		}
		cb.WriteString(indentMultiline(body, "  "))
		cb.WriteRune('\n')
		if idx < len(entries)-1 {
			cb.WriteRune('\n')
		}
	}
	return cb.String()
}

func indentMultiline(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func (m *model) wrapWidth(padding int) int {
	width := m.reportView.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}
