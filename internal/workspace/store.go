package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// State is the only client-side data that outlives the process.
type State struct {
	WorkspaceID string    `json:"workspace_id"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Load reads the state file. A missing or empty file yields a zero State.
func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, nil
		}
		return State{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return State{}, nil
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, err
	}
	return state, nil
}

// Save writes the state file, creating its directory when needed.
func Save(path string, state State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Opened is the result of starting a session against a state file.
type Opened struct {
	Identity *Identity
	// Stale is the previous run's identifier, empty when there was none.
	Stale string
}

// Open mints this run's identifier, records it in the state file, and
// returns the identifier left behind by the previous run. Errors concern
// the state file only; the returned Identity is always usable.
func Open(path string) (Opened, error) {
	identity := NewIdentity()
	opened := Opened{Identity: identity}
	if path == "" {
		return opened, nil
	}
	previous, loadErr := Load(path)
	if previous.WorkspaceID != identity.ID() {
		opened.Stale = previous.WorkspaceID
	}
	if err := Save(path, State{WorkspaceID: identity.ID()}); err != nil {
		return opened, err
	}
	return opened, loadErr
}

// Record persists a rotated identifier.
func Record(path, workspaceID string) error {
	if path == "" || workspaceID == "" {
		return nil
	}
	return Save(path, State{WorkspaceID: workspaceID})
}
