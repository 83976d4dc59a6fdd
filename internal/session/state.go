package session

import (
	"path/filepath"

	"github.com/Tiliavir/tsh/internal/model"
	"github.com/Tiliavir/tsh/internal/storage"
)

// State is the selection remembered between invocations.
type State struct {
	ActiveJob  string            `json:"active_job"`
	Convention *model.Convention `json:"convention,omitempty"`
}

func statePath(base string) string {
	return filepath.Join(base, "state.json")
}

// LoadState reads <base>/state.json; a missing file yields the zero State.
func LoadState(base string) (State, error) {
	var st State
	if _, err := storage.ReadJSON(statePath(base), &st); err != nil {
		return State{}, err
	}
	return st, nil
}

// SaveState writes st to <base>/state.json.
func SaveState(base string, st State) error {
	return storage.WriteJSON(statePath(base), st)
}
