package application_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/openkraft/portcore/internal/domain"
)

type fakeDetector struct {
	fail map[string]error
}

func (d *fakeDetector) Detect(_ context.Context, p *domain.ParsedProject) (domain.FeatureVector, error) {
	if err, ok := d.fail[p.ProjectPath]; ok {
		return nil, err
	}
	out := domain.FeatureVector{}
	for k, v := range p.Features {
		out[k] = v
	}
	return out, nil
}

func (d *fakeDetector) DetectMany(ctx context.Context, ps []*domain.ParsedProject) (map[string]domain.FeatureVector, error) {
	out := make(map[string]domain.FeatureVector, len(ps))
	for _, p := range ps {
		v, err := d.Detect(ctx, p)
		if err != nil {
			return nil, err
		}
		out[p.ProjectPath] = v
	}
	return out, nil
}

type fakeEngine struct {
	mu          sync.Mutex
	initCalls   map[string]int
	runCalls    map[string]int
	incCalls    int
	incFiles    []string
	initErr     error
	initialized []string

	// applyNothing makes Run report no actions, like an engine that left
	// every file untouched.
	applyNothing bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{initCalls: map[string]int{}, runCalls: map[string]int{}}
}

func (e *fakeEngine) Initialize(_ context.Context, p *domain.ParsedProject, cfg *domain.ProjectConfiguration) (*domain.ProjectResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initCalls[p.ProjectPath]++
	e.initialized = append(e.initialized, p.ProjectPath)
	if e.initErr != nil {
		return nil, e.initErr
	}
	var files []domain.FileActions
	for _, f := range p.Files {
		files = append(files, domain.FileActions{
			FilePath: f.Path,
			Actions:  []domain.Action{{Name: "review", Type: "recommendation"}},
		})
	}
	return &domain.ProjectResult{
		ProjectFile: p.ProjectPath,
		Actions:     domain.ProjectActions{Files: files},
	}, nil
}

func (e *fakeEngine) Run(_ context.Context, cfg *domain.ProjectConfiguration, actions domain.ProjectActions) (*domain.ProjectResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runCalls[cfg.ProjectPath]++
	if e.applyNothing {
		return &domain.ProjectResult{ProjectFile: cfg.ProjectPath}, nil
	}
	return &domain.ProjectResult{ProjectFile: cfg.ProjectPath, Actions: actions, ExecutedActions: actions.Files}, nil
}

func (e *fakeEngine) RunIncremental(_ context.Context, _ domain.RuleSet, files []string) ([]domain.FileActions, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.incCalls++
	e.incFiles = append(e.incFiles, files...)
	out := make([]domain.FileActions, 0, len(files))
	for _, f := range files {
		out = append(out, domain.FileActions{FilePath: f})
	}
	return out, nil
}

func (e *fakeEngine) totalInitCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.initCalls {
		n += c
	}
	return n
}

// fakeCache reports every requested reference as available unless it is
// listed in missing.
type fakeCache struct {
	dir     string
	missing map[string]bool

	mu      sync.Mutex
	fetches int
	asked   map[string]int
	resets  int
}

func newFakeCache(dir string) *fakeCache {
	return &fakeCache{dir: dir, missing: map[string]bool{}, asked: map[string]int{}}
}

func (c *fakeCache) Fetch(_ context.Context, refs domain.ReferenceSet) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches++
	var out []string
	for _, ns := range refs.Sorted() {
		c.asked[ns]++
		if !c.missing[ns] {
			out = append(out, domain.RuleFileName(ns))
		}
	}
	sort.Strings(out)
	return out
}

func (c *fakeCache) Reset(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets++
	return nil
}

func (c *fakeCache) Dir() string { return c.dir }

func (c *fakeCache) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

type fakeReports struct {
	mu       sync.Mutex
	analysis int
	run      int
}

func (r *fakeReports) GenerateAnalysisReport(context.Context, *domain.SolutionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analysis++
	return nil
}

func (r *fakeReports) GenerateRunReport(context.Context, *domain.SolutionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.run++
	return errors.New("disk full")
}

type fakePrefetcher struct {
	done chan struct{}
}

func (p *fakePrefetcher) Prefetch(context.Context) error {
	close(p.done)
	return nil
}

// countingRemote serves every name in available and counts requests.
type countingRemote struct {
	available map[string]string

	mu     sync.Mutex
	exists map[string]int
	fetch  map[string]int
}

func newCountingRemote(available map[string]string) *countingRemote {
	return &countingRemote{available: available, exists: map[string]int{}, fetch: map[string]int{}}
}

func (r *countingRemote) Exists(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exists[name]++
	_, ok := r.available[name]
	return ok, nil
}

func (r *countingRemote) Fetch(_ context.Context, name string) (io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetch[name]++
	return io.NopCloser(strings.NewReader(r.available[name])), nil
}

func (r *countingRemote) fetchCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetch[name]
}

func parsed(path string, features domain.FeatureVector, namespaces ...string) *domain.ParsedProject {
	return &domain.ParsedProject{
		ProjectPath: path,
		Language:    "csharp",
		Features:    features,
		Files: []domain.SourceFile{{
			Path:   strings.TrimSuffix(path, ".csproj") + "/Program.cs",
			Usings: namespaces,
		}},
	}
}

func configFor(path string) *domain.ProjectConfiguration {
	return &domain.ProjectConfiguration{ProjectPath: path, UseDefaultRules: true}
}
