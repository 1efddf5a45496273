package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSON-backed console history. Single file, human-readable, portable.

const (
	dataFileName = "history.json"
	MaxEntries   = 100
)

// History keeps the most recent console lines, oldest first.
type History struct {
	mu   sync.Mutex
	path string
}

// New stores history in dir/history.json.
func New(dir string) *History {
	return &History{path: filepath.Join(dir, dataFileName)}
}

func (h *History) Path() string { return h.path }

// Load returns the stored lines; a missing file is an empty history.
func (h *History) Load() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load()
}

func (h *History) load() ([]string, error) {
	b, err := os.ReadFile(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var lines []string
	if err := json.Unmarshal(b, &lines); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return lines, nil
}

// Record appends line, skipping blanks and immediate repeats, and keeps
// only the newest MaxEntries.
func (h *History) Record(line string) error {
	if line == "" {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	lines, err := h.load()
	if err != nil {
		return err
	}
	if n := len(lines); n > 0 && lines[n-1] == line {
		return nil
	}
	lines = append(lines, line)
	if len(lines) > MaxEntries {
		lines = lines[len(lines)-MaxEntries:]
	}
	return h.save(lines)
}

func (h *History) save(lines []string) error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(h.path, b, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Clear removes the history file.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := os.Remove(h.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
