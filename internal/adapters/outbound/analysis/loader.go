// Package analysis reads analyzer output dumps.
package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openkraft/portcore/internal/domain"
)

// Dump is the on-disk analyzer output of one solution.
type Dump struct {
	Solution string                  `json:"solution,omitempty"`
	Projects []*domain.ParsedProject `json:"projects"`
}

// Loader implements domain.AnalysisSource for JSON dumps. Both an object with
// a "projects" array and a bare array of projects are accepted.
type Loader struct{}

func New() *Loader {
	return &Loader{}
}

func (l *Loader) Load(path string) ([]*domain.ParsedProject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading analysis: %w", err)
	}
	return Parse(data)
}

// Parse decodes a dump. Projects without a path are rejected.
func Parse(data []byte) ([]*domain.ParsedProject, error) {
	trimmed := bytes.TrimSpace(data)
	var projects []*domain.ParsedProject
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &projects); err != nil {
			return nil, fmt.Errorf("parsing analysis: %w", err)
		}
	} else {
		var dump Dump
		if err := json.Unmarshal(trimmed, &dump); err != nil {
			return nil, fmt.Errorf("parsing analysis: %w", err)
		}
		projects = dump.Projects
	}

	out := projects[:0]
	for i, p := range projects {
		if p == nil {
			continue
		}
		if p.ProjectPath == "" {
			return nil, fmt.Errorf("analysis project %d has no project_path", i)
		}
		out = append(out, p)
	}
	return out, nil
}
