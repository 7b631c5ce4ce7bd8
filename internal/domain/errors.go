package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotInitialized is returned when AnalysisRun or Run is called on an
	// orchestrator whose initialization has not completed successfully.
	ErrNotInitialized = errors.New("project port is not initialized")

	// ErrProjectFailed marks a project orchestrator that reached the Failed state.
	ErrProjectFailed = errors.New("project port failed")

	// ErrNotPrepared is returned by a solution orchestrator whose projects
	// have not been paired with their analyses yet.
	ErrNotPrepared = errors.New("solution port is not prepared")
)

// ProjectInitError reports the project that could not be initialized.
type ProjectInitError struct {
	Project string
	Err     error
}

func (e *ProjectInitError) Error() string {
	return fmt.Sprintf("could not initialize project port for %s: %v", e.Project, e.Err)
}

func (e *ProjectInitError) Unwrap() error { return e.Err }

// ConfigMismatchError lists configurations and analyses that did not pair up.
type ConfigMismatchError struct {
	UnanalyzedConfigs    []string
	UnconfiguredProjects []string
}

func (e *ConfigMismatchError) Error() string {
	var parts []string
	if len(e.UnanalyzedConfigs) > 0 {
		parts = append(parts, "configured but not analyzed: "+strings.Join(e.UnanalyzedConfigs, ", "))
	}
	if len(e.UnconfiguredProjects) > 0 {
		parts = append(parts, "analyzed but not configured: "+strings.Join(e.UnconfiguredProjects, ", "))
	}
	return "solution configuration mismatch (" + strings.Join(parts, "; ") + ")"
}
