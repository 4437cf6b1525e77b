package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/reportdesk/internal/attachment"
	"github.com/csheth/reportdesk/internal/backend"
	"github.com/csheth/reportdesk/internal/chat"
	"github.com/csheth/reportdesk/internal/report"
)

var errNoBackend = errors.New("no backend configured")

// Config wires runtime options into the TUI program.
type Config struct {
	Controller *chat.Controller
	Backend    backend.Client
	Logger     *zap.Logger
	ExportDir  string
	StatePath  string
	// StartDir is where the file picker opens; empty means the working
	// directory.
	StartDir string
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Controller == nil {
		config.Controller = chat.New(chat.Config{Logger: config.Logger})
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.ExportDir == "" {
		config.ExportDir = "."
	}

	keys := newKeyMap()

	composer := textarea.New()
	composer.Placeholder = composerIdlePlaceholder
	composer.Prompt = "› "
	composer.ShowLineNumbers = false
	composer.CharLimit = 0
	composer.SetWidth(80)
	composer.SetHeight(3)
	composer.KeyMap.InsertNewline = keys.Newline
	composer.Focus()

	picker := filepicker.New()
	picker.CurrentDirectory = pickerStartDir(config.StartDir)
	picker.Height = pickerHeight
	picker.DirAllowed = false
	picker.FileAllowed = true
	picker.AllowedTypes = config.Controller.Mode().AcceptedTypes()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	reportView := viewport.New(80, 10)
	reportView.MouseWheelEnabled = true
	transcriptView := viewport.New(80, 8)
	transcriptView.MouseWheelEnabled = true

	m := &model{
		config:          config,
		chat:            config.Controller,
		logger:          config.Logger,
		jobs:            newJobBus(config.Logger),
		keys:            keys,
		layout:          newPageLayout(),
		composer:        composer,
		picker:          picker,
		spinner:         spin,
		reportView:      reportView,
		transcriptView:  transcriptView,
		focus:           focusComposer,
		running:         map[string]jobSnapshot{},
		reportDirty:     true,
		transcriptDirty: true,
	}
	return m
}

func pickerStartDir(dir string) string {
	if dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

type model struct {
	config Config
	chat   *chat.Controller
	logger *zap.Logger
	jobs   *jobBus
	keys   keyMap
	layout pageLayout

	composer       textarea.Model
	picker         filepicker.Model
	spinner        spinner.Model
	reportView     viewport.Model
	transcriptView viewport.Model

	focus           focusArea
	pickerOpen      bool
	attaching       bool
	attachGen       uint64
	helpVisible     bool
	infoMessage     string
	errorMessage    string
	running         map[string]jobSnapshot
	reportDirty     bool
	transcriptDirty bool
}

func (m *model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		if m.chat.Busy() || m.attaching {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.transcriptDirty = true
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		m.running[msg.Snapshot.ID] = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		delete(m.running, msg.Snapshot.ID)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case submitResultMsg:
		if m.chat.Complete(msg.seq, msg.resp, msg.err) {
			m.infoMessage = ""
			m.composer.Placeholder = composerIdlePlaceholder
			m.markDirty()
			m.transcriptView.GotoBottom()
		}
		return m, nil
	case discardResultMsg:
		if msg.err != nil {
			m.logger.Warn("discard failed", zap.String("workspace", msg.workspaceID), zap.Error(msg.err))
		} else {
			m.logger.Info("workspace discarded", zap.String("workspace", msg.workspaceID))
		}
		return m, nil
	case stateSavedMsg:
		if msg.err != nil {
			m.logger.Warn("workspace state not saved", zap.String("workspace", msg.workspaceID), zap.Error(msg.err))
		}
		return m, nil
	case attachResultMsg:
		if msg.generation != m.attachGen {
			m.logger.Debug("stale attachment dropped", zap.Uint64("generation", msg.generation), zap.Uint64("current", m.attachGen))
			return m, nil
		}
		m.attaching = false
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			m.logger.Warn("attachment load failed", zap.Error(msg.err))
			return m, nil
		}
		if mode := m.chat.Mode(); !attachment.MatchesHint(msg.file.Name, mode.AcceptedTypes()) {
			m.errorMessage = rejectedFileMessage(msg.file.Name, mode)
			return m, nil
		}
		if err := m.chat.Select(msg.file); err != nil {
			m.errorMessage = "Cannot change the attachment while a request is running."
			return m, nil
		}
		m.errorMessage = ""
		m.markDirty()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		if m.focus == focusTranscript {
			m.transcriptView, cmd = m.transcriptView.Update(msg)
		} else {
			m.reportView, cmd = m.reportView.Update(msg)
		}
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	cmds = append(cmds, cmd)
	m.composer, cmd = m.composer.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		return m, nil
	case key.Matches(msg, m.keys.Attach):
		return m, m.openPicker()
	case key.Matches(msg, m.keys.Detach):
		if err := m.chat.Detach(); err != nil {
			m.errorMessage = "Cannot remove the attachment while a request is running."
			return m, nil
		}
		m.markDirty()
		return m, nil
	case key.Matches(msg, m.keys.ToggleMode):
		return m, m.toggleMode()
	case key.Matches(msg, m.keys.Download):
		m.download()
		return m, nil
	case key.Matches(msg, m.keys.NewSession):
		return m, m.newSession()
	case key.Matches(msg, m.keys.Focus):
		m.cycleFocus()
		return m, nil
	case key.Matches(msg, m.keys.Send) && m.focus == focusComposer:
		return m, m.send()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusComposer:
		if m.chat.Busy() {
			return m, nil
		}
		m.composer, cmd = m.composer.Update(msg)
	case focusReport:
		m.reportView, cmd = m.reportView.Update(msg)
	case focusTranscript:
		m.transcriptView, cmd = m.transcriptView.Update(msg)
	}
	return m, cmd
}

func (m *model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Close) || key.Matches(msg, m.keys.Attach) {
		m.pickerOpen = false
		m.infoMessage = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.pickerOpen = false
		m.attaching = true
		m.attachGen++
		m.infoMessage = "Reading " + filepath.Base(path) + "…"
		return m, tea.Batch(cmd, m.spinner.Tick, m.jobs.Start(jobKindAttach, attachJob(path, m.attachGen)))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.errorMessage = rejectedFileMessage(filepath.Base(path), m.chat.Mode())
		return m, cmd
	}
	return m, cmd
}

func rejectedFileMessage(name string, mode report.Mode) string {
	return fmt.Sprintf("%s is not accepted in %s mode; choose %s.", name, mode.Label(), mode.AcceptHint())
}

// cancelAttach forgets any load still in flight.
func (m *model) cancelAttach() {
	m.attachGen++
	m.attaching = false
}

func (m *model) openPicker() tea.Cmd {
	if m.chat.Busy() {
		m.errorMessage = "Cannot change the attachment while a request is running."
		return nil
	}
	m.picker.AllowedTypes = m.chat.Mode().AcceptedTypes()
	m.pickerOpen = true
	m.errorMessage = ""
	m.infoMessage = "Choose " + m.chat.Mode().AcceptHint() + "."
	return m.picker.Init()
}

func (m *model) cycleFocus() {
	idx := 0
	for i, area := range focusSequence {
		if area == m.focus {
			idx = i
			break
		}
	}
	m.focus = focusSequence[(idx+1)%len(focusSequence)]
	if m.focus == focusComposer {
		m.composer.Focus()
	} else {
		m.composer.Blur()
	}
}

func (m *model) send() tea.Cmd {
	if m.attaching {
		m.infoMessage = "Still reading the attachment…"
		return nil
	}
	req, verdict := m.chat.Submit(m.composer.Value())
	switch verdict {
	case chat.VerdictBusy:
		m.infoMessage = "A request is already running."
		return nil
	case chat.VerdictInstructed:
		m.markDirty()
		m.transcriptView.GotoBottom()
		return nil
	case chat.VerdictIgnored:
		m.infoMessage = "Type instructions to refine the report."
		return nil
	}

	m.composer.Reset()
	m.composer.Placeholder = composerBusyPlaceholder
	m.errorMessage = ""
	m.infoMessage = ""
	m.markDirty()
	m.transcriptView.GotoBottom()

	if m.config.Backend == nil {
		m.chat.Complete(req.Seq, backend.Response{}, &backend.TransportError{Err: errNoBackend})
		m.composer.Placeholder = composerIdlePlaceholder
		return nil
	}
	return tea.Batch(
		m.spinner.Tick,
		m.jobs.Start(jobKindSubmit, submitJob(m.config.Backend, req, m.chat.Timeout())),
	)
}

func (m *model) toggleMode() tea.Cmd {
	previous, err := m.chat.SetMode(m.chat.Mode().Toggle())
	if err != nil {
		m.errorMessage = "Wait for the current request before switching modes."
		return nil
	}
	m.cancelAttach()
	m.picker.AllowedTypes = m.chat.Mode().AcceptedTypes()
	m.composer.Reset()
	m.errorMessage = ""
	m.infoMessage = m.chat.Mode().Label() + " mode."
	m.markDirty()
	return m.afterRotate(previous)
}

func (m *model) newSession() tea.Cmd {
	previous, err := m.chat.NewSession()
	if err != nil {
		m.errorMessage = "Wait for the current request before starting a new session."
		return nil
	}
	m.cancelAttach()
	m.composer.Reset()
	m.errorMessage = ""
	m.infoMessage = "New session started."
	m.markDirty()
	return m.afterRotate(previous)
}

// afterRotate discards the replaced workspace on the backend and records the
// new one in the state file.
func (m *model) afterRotate(previous string) tea.Cmd {
	var cmds []tea.Cmd
	if previous != "" && m.config.Backend != nil {
		cmds = append(cmds, m.jobs.Start(jobKindDiscard, discardJob(m.config.Backend, previous)))
	}
	if m.config.StatePath != "" {
		cmds = append(cmds, m.jobs.Start(jobKindState, saveStateJob(m.config.StatePath, m.chat.WorkspaceID())))
	}
	return tea.Batch(cmds...)
}

func (m *model) download() {
	m.infoMessage = ""
	if path, err := m.chat.Download(m.config.ExportDir); err == nil {
		m.infoMessage = "Saved " + filepath.Base(path) + "."
	}
	m.markDirty()
	m.transcriptView.GotoBottom()
}

func (m *model) markDirty() {
	m.reportDirty = true
	m.transcriptDirty = true
}

func (m *model) resize(width, height int) {
	m.layout.Update(width, height)
	m.reportView.Width = m.layout.viewportWidth
	m.reportView.Height = m.layout.reportHeight
	m.transcriptView.Width = m.layout.viewportWidth
	m.transcriptView.Height = m.layout.transcriptHeight
	m.composer.SetWidth(m.layout.viewportWidth)
	m.composer.SetHeight(m.layout.composerHeight)
	m.markDirty()
}
