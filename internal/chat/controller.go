package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/reportdesk/internal/attachment"
	"github.com/csheth/reportdesk/internal/backend"
	"github.com/csheth/reportdesk/internal/report"
	"github.com/csheth/reportdesk/internal/transcript"
	"github.com/csheth/reportdesk/internal/workspace"
)

const (
	defaultTimeout = 60 * time.Second

	unknownFailure  = "An unknown error occurred."
	malformedReply  = "The server returned an unexpected response. Check the backend logs and try again."
	transportPrefix = "Communication error: "
)

// ErrBusy is returned by operations that cannot run while a request is in
// flight.
var ErrBusy = errors.New("a request is already in progress")

// Verdict is the outcome of Submit.
type Verdict int

const (
	// VerdictSent means a Request was built and must be dispatched.
	VerdictSent Verdict = iota
	// VerdictBusy means a request is already in flight.
	VerdictBusy
	// VerdictInstructed means nothing was given; guidance was appended.
	VerdictInstructed
	// VerdictIgnored means nothing was given but a report exists.
	VerdictIgnored
)

func (v Verdict) String() string {
	switch v {
	case VerdictSent:
		return "sent"
	case VerdictBusy:
		return "busy"
	case VerdictInstructed:
		return "instructed"
	default:
		return "ignored"
	}
}

// Request is a submission ready for the backend. Seq ties the eventual
// completion back to this attempt.
type Request struct {
	Seq        uint64
	Submission backend.Submission
}

// Config wires a Controller.
type Config struct {
	Mode     report.Mode
	Identity *workspace.Identity
	Logger   *zap.Logger
	Timeout  time.Duration
}

// Controller is the session view-model: attachment slot, report, transcript,
// workspace identity and the active mode. It is not safe for concurrent use;
// the UI event loop is its only caller.
type Controller struct {
	mode     report.Mode
	identity *workspace.Identity
	logger   *zap.Logger
	timeout  time.Duration

	slot attachment.Slot
	doc  report.Document
	log  *transcript.Transcript

	busy     bool
	seq      uint64
	progress transcript.Handle
	started  time.Time
}

// New builds a controller in its initial mode and greets the user.
func New(cfg Config) *Controller {
	mode := cfg.Mode
	if !mode.Valid() {
		mode = report.GeneralReport
	}
	identity := cfg.Identity
	if identity == nil {
		identity = workspace.NewIdentity()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Controller{
		mode:     mode,
		identity: identity,
		logger:   logger,
		timeout:  timeout,
		log:      transcript.New(),
	}
	c.log.Append(transcript.AI, report.Welcome(mode))
	return c
}

func (c *Controller) Mode() report.Mode                  { return c.mode }
func (c *Controller) Busy() bool                         { return c.busy }
func (c *Controller) Report() *report.Document           { return &c.doc }
func (c *Controller) Transcript() *transcript.Transcript { return c.log }
func (c *Controller) WorkspaceID() string                { return c.identity.ID() }
func (c *Controller) Timeout() time.Duration             { return c.timeout }

// Attachment returns the held file, if any.
func (c *Controller) Attachment() (attachment.File, bool) {
	return c.slot.Current()
}

// SetMode switches the active mode. Switching to the current mode is a no-op.
// The returned id is the workspace that must be discarded on the backend.
func (c *Controller) SetMode(mode report.Mode) (string, error) {
	if !mode.Valid() {
		return "", fmt.Errorf("set mode: unknown mode %q", mode)
	}
	if c.busy {
		return "", ErrBusy
	}
	if mode == c.mode {
		return "", nil
	}
	c.mode = mode
	previous := c.reset()
	c.logger.Info("mode changed",
		zap.String("mode", mode.String()),
		zap.String("workspace", c.identity.ID()),
		zap.String("previous_workspace", previous))
	return previous, nil
}

// NewSession starts over in the current mode under a fresh workspace.
func (c *Controller) NewSession() (string, error) {
	if c.busy {
		return "", ErrBusy
	}
	previous := c.reset()
	c.logger.Info("session reset",
		zap.String("workspace", c.identity.ID()),
		zap.String("previous_workspace", previous))
	return previous, nil
}

func (c *Controller) reset() string {
	c.slot.Clear()
	c.doc.Clear()
	c.log.Reset()
	previous := c.identity.Rotate()
	c.log.Append(transcript.AI, report.Welcome(c.mode))
	return previous
}

// Select replaces the held attachment with the first of files. An empty call
// clears the slot.
func (c *Controller) Select(files ...attachment.File) error {
	if c.busy {
		return ErrBusy
	}
	c.slot.Select(files...)
	if f, ok := c.slot.Current(); ok {
		c.log.Append(transcript.System, "Attached "+attachment.Inspect(f))
	}
	return nil
}

// Detach empties the slot.
func (c *Controller) Detach() error {
	if c.busy {
		return ErrBusy
	}
	if f, ok := c.slot.Current(); ok {
		c.slot.Clear()
		c.log.Append(transcript.System, "Removed "+f.Name)
	}
	return nil
}

// Submit validates the composer input and, when there is something to send,
// moves the controller into its busy state.
func (c *Controller) Submit(text string) (Request, Verdict) {
	if c.busy {
		return Request{}, VerdictBusy
	}
	prompt := strings.TrimSpace(text)
	file, hasFile := c.slot.Current()

	if prompt == "" && !hasFile {
		if c.doc.Empty() {
			c.log.Append(transcript.AI, report.Instruction(c.mode))
			return Request{}, VerdictInstructed
		}
		return Request{}, VerdictIgnored
	}

	shown := prompt
	if shown == "" {
		shown = file.Name
	}
	c.log.Append(transcript.User, shown)

	c.busy = true
	c.seq++
	c.started = time.Now()
	c.progress = c.log.AppendTransient(transcript.AI, report.Progress(c.mode, !c.doc.Empty()))

	sub := backend.Submission{
		Prompt:      prompt,
		Mode:        c.mode,
		WorkspaceID: c.identity.ID(),
	}
	if hasFile {
		f := file
		sub.Attachment = &f
	}
	c.logger.Info("submission prepared",
		zap.Uint64("seq", c.seq),
		zap.String("mode", c.mode.String()),
		zap.String("workspace", sub.WorkspaceID),
		zap.Bool("has_attachment", hasFile),
		zap.Int("prompt_length", len([]rune(prompt))))
	return Request{Seq: c.seq, Submission: sub}, VerdictSent
}

// Complete applies the backend outcome for request seq. It reports false when
// seq does not match the in-flight request.
func (c *Controller) Complete(seq uint64, resp backend.Response, err error) bool {
	if !c.busy || seq != c.seq {
		c.logger.Debug("stale completion ignored", zap.Uint64("seq", seq), zap.Uint64("current", c.seq))
		return false
	}
	defer func() {
		c.busy = false
		c.slot.Clear()
	}()
	c.log.Remove(c.progress)
	elapsed := time.Since(c.started)

	if err != nil {
		failure := backend.Classify(err)
		c.log.Append(transcript.AI, c.describeFailure(failure, err))
		c.logger.Warn("submission failed",
			zap.Uint64("seq", seq),
			zap.String("failure", failure.String()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return true
	}

	if resp.Succeeded() {
		c.doc.SetContent(resp.Report())
		message := strings.TrimSpace(resp.Message)
		if message == "" {
			message = report.Outcome(c.mode, resp.ActionType)
		}
		c.log.Append(transcript.AI, message)
		c.logger.Info("submission completed",
			zap.Uint64("seq", seq),
			zap.String("action", resp.ActionType),
			zap.Int("report_chars", c.doc.CharCount()),
			zap.Duration("elapsed", elapsed))
		return true
	}

	message := strings.TrimSpace(resp.Message)
	if message == "" {
		message = unknownFailure
	}
	c.log.Append(transcript.AI, message)
	if resp.Invalidated() {
		c.doc.Clear()
	}
	c.logger.Warn("backend reported failure",
		zap.Uint64("seq", seq),
		zap.String("status", resp.Status),
		zap.String("action", resp.ActionType),
		zap.Bool("report_cleared", resp.Invalidated()),
		zap.Duration("elapsed", elapsed))
	return true
}

func (c *Controller) describeFailure(failure backend.Failure, err error) string {
	switch failure {
	case backend.FailureTimeout:
		return "Request timed out after " + timeoutWording(c.timeout) + "."
	case backend.FailureMalformed:
		return malformedReply
	default:
		var transport *backend.TransportError
		if errors.As(err, &transport) {
			return transportPrefix + transport.Err.Error()
		}
		return transportPrefix + err.Error()
	}
}

// timeoutWording names whole-second bounds in seconds and anything finer
// with its duration string.
func timeoutWording(d time.Duration) string {
	if d%time.Second != 0 {
		return d.String()
	}
	if secs := int(d / time.Second); secs != 1 {
		return fmt.Sprintf("%d seconds", secs)
	}
	return "1 second"
}

// Download writes the report into dir under the mode's filename.
func (c *Controller) Download(dir string) (string, error) {
	path, err := c.doc.Export(dir, c.mode)
	if err != nil {
		if errors.Is(err, report.ErrNothingToExport) {
			c.log.Append(transcript.System, "There is no report to download yet.")
		} else {
			c.log.Append(transcript.System, "Download failed: "+err.Error())
		}
		c.logger.Warn("export failed", zap.String("dir", dir), zap.Error(err))
		return "", err
	}
	c.log.Append(transcript.System, "Saved "+path)
	c.logger.Info("report exported", zap.String("path", path), zap.Int("chars", c.doc.CharCount()))
	return path, nil
}
