// Package recommend is a recommendation-only rewrite engine: it matches the
// cached rule resources against the namespaces each file references and
// proposes their recommendations, without editing sources.
package recommend

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/openkraft/portcore/internal/adapters/outbound/rules"
	"github.com/openkraft/portcore/internal/domain"
	"github.com/openkraft/portcore/internal/logging"
)

// Engine implements domain.RewriteEngine.
type Engine struct {
	loader *rules.Loader

	mu    sync.RWMutex
	files map[string]domain.SourceFile
}

// New creates an engine reading rules through loader.
func New(loader *rules.Loader) *Engine {
	return &Engine{loader: loader, files: make(map[string]domain.SourceFile)}
}

// Index remembers the files of the given projects for incremental runs.
func (e *Engine) Index(projects ...*domain.ParsedProject) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range projects {
		if p == nil {
			continue
		}
		for _, f := range p.Files {
			e.files[fileKey(f.Path)] = f
		}
	}
}

// Initialize proposes actions for every file of project using the rules in
// cfg.RulesDir, plus project-level actions for the configured additional
// references. Unreadable rule files are logged and skipped.
func (e *Engine) Initialize(ctx context.Context, project *domain.ParsedProject, cfg *domain.ProjectConfiguration) (*domain.ProjectResult, error) {
	if project == nil || cfg == nil {
		return nil, fmt.Errorf("recommend: project and configuration are required")
	}
	e.Index(project)

	rs, err := e.loader.LoadDir(cfg.RulesDir)
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("project", project.ProjectPath).Warn("some rule files could not be read")
	}

	result := &domain.ProjectResult{
		ProjectFile: project.ProjectPath,
		ProjectType: cfg.ProjectType,
		Features:    project.Features,
	}
	for _, f := range project.Files {
		if acts := actionsForFile(rs, f); len(acts) > 0 {
			result.Actions.Files = append(result.Actions.Files, domain.FileActions{FilePath: f.Path, Actions: acts})
		}
	}
	for _, ref := range cfg.AdditionalReferences {
		if rule, ok := rs.Lookup(ref); ok {
			result.Actions.ProjectLevel = append(result.Actions.ProjectLevel, actionsForRule(rule)...)
		}
	}
	return result, nil
}

// Run accepts the proposed actions. This engine never edits sources, so every
// proposed action is reported as executed.
func (e *Engine) Run(_ context.Context, cfg *domain.ProjectConfiguration, actions domain.ProjectActions) (*domain.ProjectResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("recommend: configuration is required")
	}
	result := &domain.ProjectResult{
		ProjectFile: cfg.ProjectPath,
		ProjectType: cfg.ProjectType,
		Actions:     actions,
	}
	result.ExecutedActions = append(result.ExecutedActions, actions.Files...)
	if len(actions.ProjectLevel) > 0 {
		result.ExecutedActions = append(result.ExecutedActions, domain.FileActions{
			FilePath: cfg.ProjectPath,
			Actions:  actions.ProjectLevel,
		})
	}
	return result, nil
}

// RunIncremental recomputes actions for the changed files only, in input
// order. Files never indexed come back with no actions.
func (e *Engine) RunIncremental(ctx context.Context, rs domain.RuleSet, changedFiles []string) ([]domain.FileActions, error) {
	log := logging.FromContext(ctx)
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.FileActions, 0, len(changedFiles))
	for _, path := range changedFiles {
		fa := domain.FileActions{FilePath: path}
		if f, ok := e.files[fileKey(path)]; ok {
			fa.Actions = actionsForFile(rs, f)
		} else {
			log.WithField("file", path).Debug("file not in analysis, no actions")
		}
		out = append(out, fa)
	}
	return out, nil
}

func actionsForFile(rs domain.RuleSet, f domain.SourceFile) []domain.Action {
	namespaces := domain.NewReferenceSet(f.Usings...)
	namespaces.Add(f.Imports...)
	for _, r := range f.References {
		namespaces.Add(r.Namespace)
	}

	var acts []domain.Action
	for _, ns := range namespaces.Sorted() {
		if rule, ok := rs.Lookup(ns); ok {
			acts = append(acts, actionsForRule(rule)...)
		}
	}
	return acts
}

func actionsForRule(rule domain.Rule) []domain.Action {
	acts := make([]domain.Action, 0, len(rule.Recommendations))
	for _, a := range rule.Recommendations {
		if a.Namespace == "" {
			a.Namespace = rule.Namespace
		}
		acts = append(acts, a)
	}
	sort.SliceStable(acts, func(i, j int) bool { return acts[i].Name < acts[j].Name })
	return acts
}

func fileKey(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
