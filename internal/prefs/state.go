package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const stateFile = "state.json"

// configDir is swapped in tests.
var configDir = os.UserConfigDir

// State is UI state remembered between runs.
type State struct {
	PickerDir string `json:"picker_dir,omitempty"`
}

func statePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "agentwallet")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFile), nil
}

// Save replaces the stored state atomically.
func Save(st State) error {
	path, err := statePath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the stored state, or the zero State when nothing was saved yet.
func Load() (State, error) {
	path, err := statePath()
	if err != nil {
		return State{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, err
	}
	return st, nil
}
