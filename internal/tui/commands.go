package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/reportdesk/internal/attachment"
	"github.com/csheth/reportdesk/internal/backend"
	"github.com/csheth/reportdesk/internal/chat"
	"github.com/csheth/reportdesk/internal/workspace"
)

const discardTimeout = 10 * time.Second

type submitResultMsg struct {
	seq  uint64
	resp backend.Response
	err  error
}

type discardResultMsg struct {
	workspaceID string
	err         error
}

// attachResultMsg carries the generation the pick was made under so a load
// that outlives a mode change or session reset can be dropped.
type attachResultMsg struct {
	generation uint64
	file       attachment.File
	err        error
}

type stateSavedMsg struct {
	workspaceID string
	err         error
}

func submitJob(client backend.Client, req chat.Request, timeout time.Duration) jobRunner {
	sub := req.Submission
	seq := req.Seq
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		resp, err := client.Submit(ctx, sub)
		return submitResultMsg{seq: seq, resp: resp, err: err}, err
	}
}

func discardJob(client backend.Client, workspaceID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, discardTimeout)
		defer cancel()
		err := client.Discard(ctx, workspaceID)
		return discardResultMsg{workspaceID: workspaceID, err: err}, err
	}
}

func attachJob(path string, generation uint64) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		file, err := attachment.Load(path)
		return attachResultMsg{generation: generation, file: file, err: err}, err
	}
}

func saveStateJob(path, workspaceID string) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		err := workspace.Record(path, workspaceID)
		return stateSavedMsg{workspaceID: workspaceID, err: err}, err
	}
}
