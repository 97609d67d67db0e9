// Package history keeps the recent inputs of a prompt, such as typed
// reminder times, in small TOML files.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// DefaultMaxEntries is how many entries Add keeps
const DefaultMaxEntries = 50

// Manager handles loading and saving history to TOML files
type Manager struct {
	historyDir string
	maxEntries int
}

// HistoryFile represents the structure of a history TOML file
type HistoryFile struct {
	Entries []string `toml:"entries"`
}

// NewManager creates a history manager storing files in dir
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &Manager{
		historyDir: dir,
		maxEntries: DefaultMaxEntries,
	}, nil
}

// Load loads history entries from a TOML file, oldest first
func (m *Manager) Load(filename string) ([]string, error) {
	filePath := filepath.Join(m.historyDir, filename)

	// If file doesn't exist, return empty slice
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	var histFile HistoryFile
	if err := toml.Unmarshal(data, &histFile); err != nil {
		// A corrupted history is not worth failing over
		return []string{}, nil
	}

	return histFile.Entries, nil
}

// Save saves history entries to a TOML file
func (m *Manager) Save(filename string, entries []string) error {
	filePath := filepath.Join(m.historyDir, filename)

	histFile := HistoryFile{
		Entries: entries,
	}

	data, err := toml.Marshal(histFile)
	if err != nil {
		return err
	}

	return os.WriteFile(filePath, data, 0o644)
}

// Append adds entry as the newest entry, moving an existing copy to the end
// and dropping the oldest entries beyond the limit
func Append(entries []string, entry string, maxEntries int) []string {
	if entry == "" {
		return entries
	}
	entries = slices.DeleteFunc(slices.Clone(entries), func(e string) bool { return e == entry })
	entries = append(entries, entry)
	if maxEntries > 0 && len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}
	return entries
}

// Add appends entry to the history file and returns the updated entries
func (m *Manager) Add(filename, entry string) ([]string, error) {
	entries, err := m.Load(filename)
	if err != nil {
		return nil, err
	}
	entries = Append(entries, entry, m.maxEntries)
	if err := m.Save(filename, entries); err != nil {
		return nil, err
	}
	return entries, nil
}
