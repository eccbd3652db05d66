// Package resume persists where an interrupted bank transfer stopped,
// so the next invocation can pick it up instead of starting over. The
// transfer engine reports bytes moved on failure; the CLI records them
// here.
package resume

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/adrg/xdg"
)

// State records one interrupted transfer. Offset is the next device
// address to transfer, Moved the number of file bytes already moved.
type State struct {
	Direction string    `json:"direction"` // "load" or "dump"
	File      string    `json:"file"`
	Bank      string    `json:"bank"`
	Offset    uint32    `json:"offset"`
	Moved     int64     `json:"moved"`
	SavedAt   time.Time `json:"saved_at"`
}

func statePath() (string, error) {
	return xdg.StateFile("drive64/resume.json")
}

// Save writes s as the pending transfer state.
func Save(s *State) error {
	path, err := statePath()
	if err != nil {
		return fmt.Errorf("resolving state path: %w", err)
	}
	s.SavedAt = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load returns the pending transfer state, or nil if there is none.
func Load() (*State, error) {
	path, err := statePath()
	if err != nil {
		return nil, fmt.Errorf("resolving state path: %w", err)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt resume state at %s: %w", path, err)
	}
	return &s, nil
}

// Clear removes any pending transfer state.
func Clear() error {
	path, err := statePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
