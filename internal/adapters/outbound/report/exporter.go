// Package report exports solution results as JSON files.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkraft/portcore/internal/domain"
	"github.com/openkraft/portcore/internal/fsutil"
	"github.com/openkraft/portcore/internal/logging"
)

const reportDir = ".portcore/reports"

// Exporter implements domain.ReportGenerator by writing one JSON document per
// phase next to the solution, plus a copy named after the run id.
type Exporter struct {
	dir string
}

// NewExporter writes reports below dir/.portcore/reports.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: filepath.Join(dir, reportDir)}
}

// Dir returns the report directory.
func (e *Exporter) Dir() string { return e.dir }

func (e *Exporter) GenerateAnalysisReport(ctx context.Context, result *domain.SolutionResult) error {
	return e.write(ctx, "analysis", result)
}

func (e *Exporter) GenerateRunReport(ctx context.Context, result *domain.SolutionResult) error {
	return e.write(ctx, "run", result)
}

func (e *Exporter) write(ctx context.Context, phase string, result *domain.SolutionResult) error {
	if result == nil {
		return fmt.Errorf("report: nil result")
	}
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s report: %w", phase, err)
	}

	names := []string{phase + ".json"}
	if result.RunID != "" {
		names = append(names, fmt.Sprintf("%s-%s.json", phase, result.RunID))
	}
	for _, name := range names {
		if err := fsutil.WriteAtomic(filepath.Join(e.dir, name), bytes.NewReader(data)); err != nil {
			return err
		}
	}
	logging.FromContext(ctx).WithField("file", filepath.Join(e.dir, names[0])).Debug(phase + " report written")
	return nil
}

// Load reads the latest report of a phase ("analysis" or "run").
func Load(dir, phase string) (*domain.SolutionResult, error) {
	data, err := os.ReadFile(filepath.Join(dir, reportDir, phase+".json"))
	if err != nil {
		return nil, err
	}
	var result domain.SolutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
