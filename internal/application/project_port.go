package application

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/openkraft/portcore/internal/domain"
	"github.com/openkraft/portcore/internal/logging"
	"github.com/openkraft/portcore/internal/telemetry"
)

// ProjectState is a project orchestrator lifecycle state.
type ProjectState int

const (
	StateUninitialized ProjectState = iota
	StateInitializing
	StateInitialized
	StateAnalyzed
	StateCompleted
	StateFailed
)

func (s ProjectState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	case StateAnalyzed:
		return "analyzed"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ProjectDeps are the collaborators of a project orchestrator.
type ProjectDeps struct {
	Detector  domain.FeatureDetector
	Engine    domain.RewriteEngine
	Fetcher   domain.RuleFetcher
	Installer domain.RuleInstaller
	// DefaultRulesDir is where default and override rules live, normally
	// the rule cache directory.
	DefaultRulesDir string
}

// ProjectPort ports one project through classify → resolve rules → fetch →
// analyse → run. NewProjectPort returns a handle that is not ready; callers
// run Initialize (or wait on Done) before AnalysisRun and Run.
// The configuration is owned by this port and mutated during Initialize.
type ProjectPort struct {
	deps    ProjectDeps
	project *domain.ParsedProject
	cfg     *domain.ProjectConfiguration

	initOnce sync.Once
	done     chan struct{}
	initErr  error

	mu         sync.Mutex
	state      ProjectState
	features   domain.FeatureVector
	references domain.ReferenceSet
	downloaded []string
	analysis   *domain.ProjectResult
	run        *domain.ProjectResult
}

func NewProjectPort(project *domain.ParsedProject, cfg *domain.ProjectConfiguration, deps ProjectDeps) *ProjectPort {
	return &ProjectPort{
		deps:       deps,
		project:    project,
		cfg:        cfg,
		done:       make(chan struct{}),
		references: domain.NewReferenceSet(),
	}
}

// ProjectPath identifies the project.
func (p *ProjectPort) ProjectPath() string {
	if p.cfg != nil && p.cfg.ProjectPath != "" {
		return p.cfg.ProjectPath
	}
	if p.project != nil {
		return p.project.ProjectPath
	}
	return ""
}

// Done is closed once initialization has finished, successfully or not.
func (p *ProjectPort) Done() <-chan struct{} { return p.done }

// Initiated reports whether initialization completed successfully.
func (p *ProjectPort) Initiated() bool {
	select {
	case <-p.done:
		return p.initErr == nil
	default:
		return false
	}
}

func (p *ProjectPort) State() ProjectState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *ProjectPort) Configuration() *domain.ProjectConfiguration { return p.cfg }

// References returns a copy of the resolved reference set.
func (p *ProjectPort) References() domain.ReferenceSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := domain.NewReferenceSet()
	out.Union(p.references)
	return out
}

// DownloadedFiles returns the rule files available for this project.
func (p *ProjectPort) DownloadedFiles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.downloaded...)
}

func (p *ProjectPort) setState(s ProjectState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Initialize classifies the project, resolves its rules and fetches the rule
// resources. It runs once; concurrent and later callers get the same error.
func (p *ProjectPort) Initialize(ctx context.Context) error {
	p.initOnce.Do(func() {
		defer close(p.done)
		if err := p.initialize(ctx); err != nil {
			p.initErr = &domain.ProjectInitError{Project: p.ProjectPath(), Err: err}
			p.setState(StateFailed)
		}
	})
	return p.initErr
}

func (p *ProjectPort) initialize(ctx context.Context) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "project.Initialize", attribute.String("project", p.ProjectPath()))
	defer func() { telemetry.EndSpan(span, err) }()
	log := logging.FromContext(ctx).WithField("project", p.ProjectPath())
	ctx = logging.WithLogger(ctx, log)

	p.setState(StateInitializing)
	if p.project == nil || p.cfg == nil {
		return fmt.Errorf("missing analysis or configuration")
	}

	// 1. Detect features and classify
	features, err := p.deps.Detector.Detect(ctx, p.project)
	if err != nil {
		return fmt.Errorf("detecting features: %w", err)
	}
	p.cfg.ProjectType = domain.Classify(features)
	log = log.WithField("project_type", p.cfg.ProjectType)

	// 2. Resolve rules: overrides go into the default dir, which becomes
	// the configured one
	refs := domain.NewReferenceSet()
	if p.cfg.UseDefaultRules {
		if p.cfg.RulesDir != "" && p.deps.Installer != nil {
			if err := p.deps.Installer.InstallOverrides(ctx, p.cfg.RulesDir, p.deps.DefaultRulesDir); err != nil {
				return fmt.Errorf("resolving rules: %w", err)
			}
		}
		p.cfg.RulesDir = p.deps.DefaultRulesDir
		refs.Union(domain.ExtractReferences(p.project))
	}

	// 3. Fixed rule names
	domain.AugmentWCF(p.cfg)
	domain.AddProjectRecommendation(p.cfg)
	refs.Add(p.cfg.AdditionalReferences...)

	// 4. Fetch
	downloaded := p.deps.Fetcher.Fetch(ctx, refs)

	p.mu.Lock()
	p.features = features
	p.references = refs
	p.downloaded = downloaded
	p.state = StateInitialized
	p.mu.Unlock()

	telemetry.ProjectsProcessed.WithLabelValues("initialize", string(p.cfg.ProjectType)).Inc()
	log.WithField("references", refs.Len()).WithField("rules", len(downloaded)).Info("project initialized")
	return nil
}

// ready fails fast unless initialization completed successfully.
func (p *ProjectPort) ready() error {
	select {
	case <-p.done:
	default:
		return domain.ErrNotInitialized
	}
	if p.initErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrProjectFailed, p.initErr)
	}
	return nil
}

// AnalysisRun asks the engine for proposed actions. The first successful
// result is memoized and returned by every later call.
func (p *ProjectPort) AnalysisRun(ctx context.Context) (*domain.ProjectResult, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.analysisLocked(ctx)
}

func (p *ProjectPort) analysisLocked(ctx context.Context) (*domain.ProjectResult, error) {
	if p.analysis != nil {
		return p.analysis, nil
	}
	ctx, span := telemetry.StartSpan(ctx, "project.AnalysisRun", attribute.String("project", p.ProjectPath()))
	res, err := p.deps.Engine.Initialize(ctx, p.project, p.cfg)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("analysing %s: %w", p.ProjectPath(), err)
	}
	p.analysis = p.complete(res)
	if p.state < StateAnalyzed {
		p.state = StateAnalyzed
	}
	telemetry.ProjectsProcessed.WithLabelValues("analyze", string(p.cfg.ProjectType)).Inc()
	return p.analysis, nil
}

// Run applies the analysed actions, analysing first when needed. Memoized
// like AnalysisRun.
func (p *ProjectPort) Run(ctx context.Context) (*domain.ProjectResult, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.run != nil {
		return p.run, nil
	}

	analysis, err := p.analysisLocked(ctx)
	if err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartSpan(ctx, "project.Run", attribute.String("project", p.ProjectPath()))
	res, err := p.deps.Engine.Run(ctx, p.cfg, analysis.Actions)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", p.ProjectPath(), err)
	}
	p.run = p.complete(res)
	p.state = StateCompleted
	telemetry.ProjectsProcessed.WithLabelValues("run", string(p.cfg.ProjectType)).Inc()
	return p.run, nil
}

// complete stamps orchestrator-owned fields onto an engine result.
// Callers hold p.mu.
func (p *ProjectPort) complete(res *domain.ProjectResult) *domain.ProjectResult {
	if res == nil {
		res = &domain.ProjectResult{}
	}
	if res.ProjectFile == "" {
		res.ProjectFile = p.ProjectPath()
	}
	res.ProjectType = p.cfg.ProjectType
	if res.Features == nil {
		res.Features = p.features
	}
	res.References = domain.NewReferenceSet()
	res.References.Union(p.references)
	res.DownloadedFiles = domain.NewReferenceSet(p.downloaded...)
	return res
}
