package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/openkraft/portcore/internal/domain"
	"github.com/openkraft/portcore/internal/logging"
	"github.com/openkraft/portcore/internal/telemetry"
)

// SolutionDeps are the collaborators shared by every project of a solution.
type SolutionDeps struct {
	Detector   domain.FeatureDetector
	Engine     domain.RewriteEngine
	Cache      domain.RuleCache
	Installer  domain.RuleInstaller
	Prefetcher domain.AssetPrefetcher
	Reports    domain.ReportGenerator
	Git        domain.GitInfo
}

// SolutionOptions tune a solution run.
type SolutionOptions struct {
	SolutionPath   string
	Parallelism    int
	MismatchPolicy domain.MismatchPolicy
}

// SolutionPort fans project ports out over one solution. It owns the rule
// cache and its negative memo, shared by all of its projects.
type SolutionPort struct {
	deps  SolutionDeps
	opts  SolutionOptions
	runID string

	prefetchDone chan struct{}

	mu       sync.Mutex
	projects []*ProjectPort
	analysis *domain.SolutionResult
	run      *domain.SolutionResult
	adhoc    *domain.SolutionResult
}

// NewSolutionPort resets the rule cache once and starts the asset prefetch in
// the background. Neither failure stops the solution: both are logged.
func NewSolutionPort(ctx context.Context, deps SolutionDeps, opts SolutionOptions) *SolutionPort {
	s := newSolutionPort(deps, opts)
	log := logging.FromContext(ctx).WithField("run_id", s.runID)

	if err := deps.Cache.Reset(ctx); err != nil {
		log.WithError(err).Warn("rule cache reset failed")
	}

	if deps.Prefetcher == nil {
		close(s.prefetchDone)
		return s
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		defer close(s.prefetchDone)
		if err := deps.Prefetcher.Prefetch(bg); err != nil {
			log.WithError(err).Warn("resource prefetch failed")
		}
	}()
	return s
}

// NewIncrementalSolutionPort builds an orchestrator for RunIncremental only.
// It never resets the rule cache and starts no prefetch.
func NewIncrementalSolutionPort(deps SolutionDeps, opts SolutionOptions) *SolutionPort {
	s := newSolutionPort(deps, opts)
	close(s.prefetchDone)
	return s
}

func newSolutionPort(deps SolutionDeps, opts SolutionOptions) *SolutionPort {
	if opts.Parallelism <= 0 {
		opts.Parallelism = domain.DefaultParallelism
	}
	if opts.MismatchPolicy == "" {
		opts.MismatchPolicy = domain.MismatchDrop
	}
	return &SolutionPort{
		deps:         deps,
		opts:         opts,
		runID:        uuid.NewString(),
		prefetchDone: make(chan struct{}),
	}
}

// RunID identifies this solution run.
func (s *SolutionPort) RunID() string { return s.runID }

// PrefetchDone is closed when the background asset prefetch has finished.
func (s *SolutionPort) PrefetchDone() <-chan struct{} { return s.prefetchDone }

// Projects returns the project ports in configuration order.
func (s *SolutionPort) Projects() []*ProjectPort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ProjectPort(nil), s.projects...)
}

func (s *SolutionPort) projectDeps() ProjectDeps {
	return ProjectDeps{
		Detector:        s.deps.Detector,
		Engine:          s.deps.Engine,
		Fetcher:         s.deps.Cache,
		Installer:       s.deps.Installer,
		DefaultRulesDir: s.deps.Cache.Dir(),
	}
}

// Prepare pairs configurations with analyses by project path and builds a
// project port per pair, in configuration order. Unpaired entries are dropped
// or reported according to the mismatch policy.
func (s *SolutionPort) Prepare(ctx context.Context, analyses []*domain.ParsedProject, configs []*domain.ProjectConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projects != nil {
		return fmt.Errorf("solution already prepared")
	}
	log := logging.FromContext(ctx)

	byPath := make(map[string]*domain.ParsedProject, len(analyses))
	for _, a := range analyses {
		if a != nil {
			byPath[pathKey(a.ProjectPath)] = a
		}
	}
	configured := make(map[string]bool, len(configs))

	var (
		projects   []*ProjectPort
		unanalyzed []string
	)
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		key := pathKey(cfg.ProjectPath)
		configured[key] = true
		a, ok := byPath[key]
		if !ok {
			unanalyzed = append(unanalyzed, cfg.ProjectPath)
			continue
		}
		if cfg.SolutionPath == "" {
			cfg.SolutionPath = s.opts.SolutionPath
		}
		projects = append(projects, NewProjectPort(a, cfg, s.projectDeps()))
	}
	var unconfigured []string
	for _, a := range analyses {
		if a != nil && !configured[pathKey(a.ProjectPath)] {
			unconfigured = append(unconfigured, a.ProjectPath)
		}
	}

	if len(unanalyzed)+len(unconfigured) > 0 {
		if s.opts.MismatchPolicy == domain.MismatchFail {
			return &domain.ConfigMismatchError{UnanalyzedConfigs: unanalyzed, UnconfiguredProjects: unconfigured}
		}
		for _, p := range unanalyzed {
			log.WithField("project", p).Debug("dropping configuration without analysis")
		}
		for _, p := range unconfigured {
			log.WithField("project", p).Debug("dropping analysis without configuration")
		}
	}

	s.projects = projects
	if s.projects == nil {
		s.projects = []*ProjectPort{}
	}
	return nil
}

// AnalysisRun initializes every project and aggregates their analyses.
// Memoized after the first success.
func (s *SolutionPort) AnalysisRun(ctx context.Context) (*domain.SolutionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysisLocked(ctx)
}

func (s *SolutionPort) analysisLocked(ctx context.Context) (result *domain.SolutionResult, err error) {
	if s.analysis != nil {
		return s.analysis, nil
	}
	if s.projects == nil {
		return nil, domain.ErrNotPrepared
	}
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "solution.AnalysisRun", attribute.Int("projects", len(s.projects)))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := s.initializeProjects(ctx); err != nil {
		return nil, err
	}

	result = s.newResult(ctx)
	for _, p := range s.projects {
		res, err := p.AnalysisRun(ctx)
		if err != nil {
			return nil, err
		}
		aggregate(result, p)
		result.AnalysisResults = append(result.AnalysisResults, res)
	}
	result.FinishedAt = time.Now()
	s.analysis = result
	telemetry.PhaseDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())

	if s.opts.SolutionPath != "" && s.deps.Reports != nil {
		if err := s.deps.Reports.GenerateAnalysisReport(ctx, result); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("analysis report failed")
		}
	}
	return result, nil
}

// Run analyses (if needed) then runs every project, aggregating in
// configuration order. Memoized after the first success.
func (s *SolutionPort) Run(ctx context.Context) (result *domain.SolutionResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != nil {
		return s.run, nil
	}
	analysis, err := s.analysisLocked(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "solution.Run", attribute.Int("projects", len(s.projects)))
	defer func() { telemetry.EndSpan(span, err) }()

	result = s.newResult(ctx)
	result.StartedAt = analysis.StartedAt
	result.AnalysisResults = analysis.AnalysisResults
	for _, p := range s.projects {
		res, err := p.Run(ctx)
		if err != nil {
			return nil, err
		}
		aggregate(result, p)
		result.RunResults = append(result.RunResults, res)
	}
	result.FinishedAt = time.Now()
	s.run = result
	telemetry.PhaseDuration.WithLabelValues("run").Observe(time.Since(start).Seconds())

	if s.opts.SolutionPath != "" && s.deps.Reports != nil {
		if err := s.deps.Reports.GenerateRunReport(ctx, result); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("run report failed")
		}
	}
	return result, nil
}

// initializeProjects runs Initialize on a bounded pool. Once a project fails
// no new project is started, and the first failure in configuration order
// is returned.
func (s *SolutionPort) initializeProjects(ctx context.Context) error {
	errs := make([]error, len(s.projects))
	var failed atomic.Bool
	var g errgroup.Group
	g.SetLimit(s.opts.Parallelism)
	for i, p := range s.projects {
		g.Go(func() error {
			if failed.Load() {
				return nil
			}
			if err := p.Initialize(ctx); err != nil {
				errs[i] = err
				failed.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// RunProject ports one project outside the prepared set and aggregates it
// into the ad hoc result returned by ProjectRuns.
func (s *SolutionPort) RunProject(ctx context.Context, analysis *domain.ParsedProject, cfg *domain.ProjectConfiguration) (*domain.ProjectResult, error) {
	if cfg != nil && cfg.SolutionPath == "" {
		cfg.SolutionPath = s.opts.SolutionPath
	}
	p := NewProjectPort(analysis, cfg, s.projectDeps())
	if err := p.Initialize(ctx); err != nil {
		return nil, err
	}
	res, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adhoc == nil {
		s.adhoc = s.newResult(ctx)
	}
	aggregate(s.adhoc, p)
	s.adhoc.RunResults = append(s.adhoc.RunResults, res)
	s.adhoc.FinishedAt = time.Now()
	return res, nil
}

// ProjectRuns returns the aggregate of every RunProject call, or nil.
func (s *SolutionPort) ProjectRuns() *domain.SolutionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adhoc
}

// RunIncremental recomputes actions for changed files with previously
// resolved rules. No classification or cache access happens here.
func (s *SolutionPort) RunIncremental(ctx context.Context, rules domain.RuleSet, changedFiles []string) ([]domain.FileActions, error) {
	ctx, span := telemetry.StartSpan(ctx, "solution.RunIncremental", attribute.Int("files", len(changedFiles)))
	out, err := s.deps.Engine.RunIncremental(ctx, rules, changedFiles)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("incremental run: %w", err)
	}
	return out, nil
}

// RunIncrementalFile is RunIncremental for a single file.
func (s *SolutionPort) RunIncrementalFile(ctx context.Context, rules domain.RuleSet, changedFile string) ([]domain.FileActions, error) {
	return s.RunIncremental(ctx, rules, []string{changedFile})
}

func (s *SolutionPort) newResult(ctx context.Context) *domain.SolutionResult {
	result := domain.NewSolutionResult(s.runID, s.opts.SolutionPath)
	if s.deps.Git != nil && s.opts.SolutionPath != "" {
		hash, err := s.deps.Git.CommitHash(solutionDir(s.opts.SolutionPath))
		if err != nil {
			logging.FromContext(ctx).WithError(err).Debug("no commit hash")
		}
		result.CommitHash = hash
	}
	return result
}

func aggregate(result *domain.SolutionResult, p *ProjectPort) {
	result.References.Union(p.References())
	result.DownloadedFiles.Add(p.DownloadedFiles()...)
	result.ProjectTypes[p.ProjectPath()] = p.Configuration().ProjectType
}

// solutionDir accepts either a solution file or its directory.
func solutionDir(p string) string {
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return p
	}
	return filepath.Dir(p)
}

func pathKey(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
