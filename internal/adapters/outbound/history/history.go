package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/openkraft/portcore/internal/domain"
)

const (
	historyFile = ".portcore/history/runs.json"
	// maxEntries bounds the file; the oldest runs are dropped first.
	maxEntries = 200
)

// FileHistory implements domain.RunHistory using JSON file storage next to
// the solution.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

func (h *FileHistory) Save(solutionDir string, entry domain.RunEntry) error {
	entries, err := h.Load(solutionDir)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	fp := filepath.Join(solutionDir, historyFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

func (h *FileHistory) Load(solutionDir string) ([]domain.RunEntry, error) {
	data, err := os.ReadFile(filepath.Join(solutionDir, historyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Last returns the most recent entry, if any.
func (h *FileHistory) Last(solutionDir string) (domain.RunEntry, bool, error) {
	entries, err := h.Load(solutionDir)
	if err != nil || len(entries) == 0 {
		return domain.RunEntry{}, false, err
	}
	return entries[len(entries)-1], true, nil
}
