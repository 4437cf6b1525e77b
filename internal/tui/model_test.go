package tui

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/reportdesk/internal/attachment"
	"github.com/csheth/reportdesk/internal/backend"
	"github.com/csheth/reportdesk/internal/chat"
	"github.com/csheth/reportdesk/internal/report"
	"github.com/csheth/reportdesk/internal/workspace"
)

func newTestModel(t *testing.T, client backend.Client) *model {
	t.Helper()
	teaModel, ok := New(Config{
		Controller: chat.New(chat.Config{Mode: report.GeneralReport}),
		Backend:    client,
		ExportDir:  t.TempDir(),
	}).(*model)
	if !ok {
		t.Fatalf("expected *model, got %T", teaModel)
	}
	return teaModel
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func strPtr(s string) *string { return &s }

func lastEntryText(m *model) string {
	entries := m.chat.Transcript().Entries()
	if len(entries) == 0 {
		return ""
	}
	return entries[len(entries)-1].Text
}

func TestEnterOnEmptyComposerInstructs(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	before := m.chat.Transcript().Len()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("empty submission must not dispatch a request")
	}
	if m.chat.Busy() {
		t.Fatal("controller should not be busy")
	}
	if got := m.chat.Transcript().Len(); got != before+1 {
		t.Fatalf("transcript len = %d, want %d", got, before+1)
	}
	if last := lastEntryText(m); last != report.Instruction(report.GeneralReport) {
		t.Fatalf("unexpected instruction: %q", last)
	}
}

func TestSendDispatchesAndCompletes(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m.composer.SetValue("Summarize Q3 sales")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected submit job command")
	}
	if !m.chat.Busy() {
		t.Fatal("controller should be busy after send")
	}
	if m.composer.Value() != "" {
		t.Fatalf("composer not cleared: %q", m.composer.Value())
	}

	m.Update(jobResultEnvelope{
		Snapshot: jobSnapshot{ID: "submit-1", Kind: jobKindSubmit, Status: jobStatusSucceeded},
		Payload: submitResultMsg{seq: 1, resp: backend.Response{
			Status:        "success",
			ReportContent: strPtr("## Q3 Summary..."),
			Message:       "done",
			ActionType:    backend.ActionGenerate,
		}},
	})
	if m.chat.Busy() {
		t.Fatal("controller still busy after completion")
	}
	if got := m.chat.Report().Text(); got != "## Q3 Summary..." {
		t.Fatalf("report = %q", got)
	}
	if !strings.Contains(m.View(), "## Q3 Summary...") {
		t.Fatalf("view does not show the report:\n%s", m.View())
	}
}

func TestTypingIgnoredWhileBusy(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m.composer.SetValue("first")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(runes("x"))
	if got := m.composer.Value(); got != "" {
		t.Fatalf("composer accepted input while busy: %q", got)
	}
}

func TestToggleModeRotatesWorkspace(t *testing.T) {
	fake := &fakeBackend{}
	m := newTestModel(t, fake)
	firstID := m.chat.WorkspaceID()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if cmd == nil {
		t.Fatal("mode change should schedule a discard")
	}
	if m.chat.Mode() != report.BookReport {
		t.Fatalf("mode = %s", m.chat.Mode())
	}
	if m.chat.WorkspaceID() == firstID {
		t.Fatal("workspace not rotated")
	}
	if got := strings.Join(m.picker.AllowedTypes, ","); got != ".pdf,.epub,.txt" {
		t.Fatalf("picker filter = %s", got)
	}
}

func TestToggleModeRejectedWhileBusy(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m.composer.SetValue("first")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.chat.Mode() != report.GeneralReport {
		t.Fatal("mode changed while busy")
	}
	if m.errorMessage == "" {
		t.Fatal("expected an error message")
	}
}

func TestHelpToggleLeavesQuestionMarkTypeable(t *testing.T) {
	m := newTestModel(t, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	if !m.helpVisible {
		t.Fatal("ctrl+g should open the cheatsheet")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	if m.helpVisible {
		t.Fatal("ctrl+g should close the cheatsheet")
	}

	m.Update(runes("?"))
	if m.helpVisible {
		t.Fatal("? must not toggle the cheatsheet")
	}
	if got := m.composer.Value(); got != "?" {
		t.Fatalf("composer = %q, want a leading question mark", got)
	}
}

func TestDownloadWritesExport(t *testing.T) {
	m := newTestModel(t, nil)
	m.chat.Report().SetContent("# Report\n")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	path := filepath.Join(m.config.ExportDir, "report.md")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "# Report\n" {
		t.Fatalf("export = %q", data)
	}
	if m.infoMessage != "Saved report.md." {
		t.Fatalf("info = %q", m.infoMessage)
	}
}

func TestSendWithoutBackendReportsCommunicationError(t *testing.T) {
	m := newTestModel(t, nil)
	m.composer.SetValue("hello")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.chat.Busy() {
		t.Fatal("controller should not stay busy without a backend")
	}
	if last := lastEntryText(m); !strings.HasPrefix(last, "Communication error:") {
		t.Fatalf("unexpected entry: %q", last)
	}
}

func TestAttachResultFillsSlot(t *testing.T) {
	m := newTestModel(t, nil)
	m.attaching = true
	m.Update(attachResultMsg{file: attachment.File{Name: "chart.png", Content: []byte("png")}})

	if m.attaching {
		t.Fatal("attaching flag not cleared")
	}
	file, ok := m.chat.Attachment()
	if !ok || file.Name != "chart.png" {
		t.Fatalf("slot = %+v, %v", file, ok)
	}
	if !strings.Contains(m.View(), "chart.png") {
		t.Fatal("view does not show the attachment chip")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	if _, ok := m.chat.Attachment(); ok {
		t.Fatal("ctrl+x should detach")
	}
}

func TestPickerClosesOnEsc(t *testing.T) {
	m := newTestModel(t, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	if !m.pickerOpen {
		t.Fatal("ctrl+o should open the picker")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.pickerOpen {
		t.Fatal("esc should close the picker")
	}
}

func TestFocusCycles(t *testing.T) {
	m := newTestModel(t, nil)
	want := []focusArea{focusReport, focusTranscript, focusComposer}
	for _, area := range want {
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		if m.focus != area {
			t.Fatalf("focus = %v, want %v", m.focus, area)
		}
	}
	if !m.composer.Focused() {
		t.Fatal("composer should regain focus")
	}
}

func TestViewShowsPlaceholderAndWelcome(t *testing.T) {
	m := newTestModel(t, nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	for _, want := range []string{report.Placeholder, "0 characters", "download unavailable", m.chat.WorkspaceID()} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestJobSignalsTrackRunningJobs(t *testing.T) {
	m := newTestModel(t, nil)
	snap := jobSnapshot{ID: "discard-1", Kind: jobKindDiscard, Status: jobStatusRunning}
	m.Update(jobSignalMsg{Snapshot: snap})
	if badges := m.jobStatusBadges(); len(badges) != 1 || badges[0] != "discard" {
		t.Fatalf("badges = %v", badges)
	}
	m.Update(jobResultEnvelope{Snapshot: snap, Payload: discardResultMsg{workspaceID: "ws-old"}})
	if len(m.running) != 0 {
		t.Fatalf("running = %v", m.running)
	}
}

func TestAttachResultDroppedAfterModeChange(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m.attaching = true
	pending := m.attachGen

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.attaching {
		t.Fatal("mode change should cancel the pending load")
	}
	m.Update(attachResultMsg{generation: pending, file: attachment.File{Name: "chart.png", Content: []byte("png")}})
	if file, ok := m.chat.Attachment(); ok {
		t.Fatalf("slot holds %q after mode change", file.Name)
	}
}

func TestAttachResultDroppedAfterNewSession(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m.attaching = true
	pending := m.attachGen

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m.Update(attachResultMsg{generation: pending, file: attachment.File{Name: "chart.png", Content: []byte("png")}})
	if file, ok := m.chat.Attachment(); ok {
		t.Fatalf("slot holds %q after new session", file.Name)
	}
	if m.attaching {
		t.Fatal("attaching flag survived the reset")
	}
}

func TestAttachResultRejectsFileOutsideModeFilter(t *testing.T) {
	m := newTestModel(t, nil)
	m.attaching = true
	m.Update(attachResultMsg{generation: m.attachGen, file: attachment.File{Name: "novel.epub", Content: []byte("epub")}})
	if _, ok := m.chat.Attachment(); ok {
		t.Fatal("an epub must not be attached in general report mode")
	}
	if !strings.Contains(m.errorMessage, "novel.epub is not accepted") {
		t.Fatalf("error = %q", m.errorMessage)
	}
}

func TestSendWaitsForPendingAttachment(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m.attaching = true
	m.composer.SetValue("hello")
	before := m.chat.Transcript().Len()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("send must not dispatch while the attachment is loading")
	}
	if m.chat.Busy() {
		t.Fatal("controller should stay idle")
	}
	if got := m.chat.Transcript().Len(); got != before {
		t.Fatalf("transcript grew to %d entries", got)
	}
	if m.composer.Value() != "hello" {
		t.Fatalf("composer = %q, prompt should be kept", m.composer.Value())
	}
	if m.infoMessage != "Still reading the attachment…" {
		t.Fatalf("info = %q", m.infoMessage)
	}

	m.Update(attachResultMsg{generation: m.attachGen, file: attachment.File{Name: "chart.png", Content: []byte("png")}})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.chat.Busy() {
		t.Fatal("send should go out once the attachment is held")
	}
}

func TestNewSessionRotatesAndSchedulesJobs(t *testing.T) {
	fake := &fakeBackend{}
	m := newTestModel(t, fake)
	m.config.StatePath = filepath.Join(t.TempDir(), "workspace.json")
	m.chat.Report().SetContent("# Draft")
	firstID := m.chat.WorkspaceID()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if cmd == nil {
		t.Fatal("ctrl+n should schedule discard and state jobs")
	}
	if m.chat.WorkspaceID() == firstID {
		t.Fatal("workspace not rotated")
	}
	if !m.chat.Report().Empty() {
		t.Fatal("report not cleared")
	}
	if m.infoMessage != "New session started." {
		t.Fatalf("info = %q", m.infoMessage)
	}

	kinds := map[jobKind]bool{}
	for _, msg := range execCmd(cmd) {
		if envelope, ok := msg.(jobResultEnvelope); ok {
			kinds[envelope.Snapshot.Kind] = true
		}
	}
	if !kinds[jobKindDiscard] || !kinds[jobKindState] {
		t.Fatalf("finished jobs = %v", kinds)
	}
	fake.mu.Lock()
	discarded := append([]string(nil), fake.discarded...)
	fake.mu.Unlock()
	if len(discarded) != 1 || discarded[0] != firstID {
		t.Fatalf("discarded = %v, want [%s]", discarded, firstID)
	}
	state, err := workspace.Load(m.config.StatePath)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.WorkspaceID != m.chat.WorkspaceID() {
		t.Fatalf("state = %q, want %q", state.WorkspaceID, m.chat.WorkspaceID())
	}
}

var cmdType = reflect.TypeOf((*tea.Cmd)(nil)).Elem()

// execCmd runs cmd and every command nested in batches or sequences,
// returning the leaf messages.
func execCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	v := reflect.ValueOf(msg)
	if v.Kind() == reflect.Slice && v.Type().Elem() == cmdType {
		var out []tea.Msg
		for i := 0; i < v.Len(); i++ {
			if nested, ok := v.Index(i).Interface().(tea.Cmd); ok {
				out = append(out, execCmd(nested)...)
			}
		}
		return out
	}
	return []tea.Msg{msg}
}
