// Package bootstrap wires the outbound adapters into the orchestrators for
// one solution directory. The CLI and the MCP server share it.
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openkraft/portcore/internal/adapters/outbound/analysis"
	"github.com/openkraft/portcore/internal/adapters/outbound/cache"
	"github.com/openkraft/portcore/internal/adapters/outbound/config"
	"github.com/openkraft/portcore/internal/adapters/outbound/detector"
	"github.com/openkraft/portcore/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/portcore/internal/adapters/outbound/history"
	"github.com/openkraft/portcore/internal/adapters/outbound/recommend"
	"github.com/openkraft/portcore/internal/adapters/outbound/remote"
	"github.com/openkraft/portcore/internal/adapters/outbound/report"
	"github.com/openkraft/portcore/internal/adapters/outbound/rules"
	"github.com/openkraft/portcore/internal/application"
	"github.com/openkraft/portcore/internal/domain"
	"github.com/openkraft/portcore/internal/logging"
)

const ruleLRUSize = 512

// Workspace holds the configured adapters of one solution directory.
type Workspace struct {
	Dir    string
	Config domain.PortConfig
	Logger *logrus.Logger

	Cache    *cache.Store
	Rules    *rules.Loader
	Engine   *recommend.Engine
	Detector *detector.Detector
	Reports  *report.Exporter
	Git      *gitinfo.GitInfoAdapter
	History  domain.RunHistory

	prefetcher *cache.Prefetcher
	analysis   domain.AnalysisSource
}

type options struct {
	logger  *logrus.Logger
	stores  *remote.Stores
	loader  domain.ConfigLoader
	noFetch bool
}

// Option customises Open.
type Option func(*options)

// WithLogger uses l instead of a logger built from the logging section.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStores replaces the remote stores built from the remote section.
func WithStores(s remote.Stores) Option {
	return func(o *options) { o.stores = &s }
}

// WithConfigLoader replaces the .portcore.yaml loader.
func WithConfigLoader(l domain.ConfigLoader) Option {
	return func(o *options) { o.loader = l }
}

// WithoutPrefetch disables the background template download.
func WithoutPrefetch() Option {
	return func(o *options) { o.noFetch = true }
}

// Open loads the configuration of dir and builds every adapter from it.
func Open(dir string, opts ...Option) (*Workspace, error) {
	o := &options{loader: config.New()}
	for _, opt := range opts {
		opt(o)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := o.loader.Load(absDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.New(cfg.Logging)
	}

	stores := o.stores
	if stores == nil {
		s, err := remote.FromConfig(cfg.Remote)
		if err != nil {
			return nil, fmt.Errorf("remote store: %w", err)
		}
		stores = &s
	}

	loader, err := rules.NewLoader(ruleLRUSize)
	if err != nil {
		return nil, err
	}

	w := &Workspace{
		Dir:      absDir,
		Config:   cfg,
		Logger:   logger,
		Cache:    cache.New(cfg.Cache.Dir, stores.Rules, cache.OptionsFromConfig(cfg)),
		Rules:    loader,
		Engine:   recommend.New(loader),
		Detector: detector.New(),
		Reports:  report.NewExporter(absDir),
		Git:      gitinfo.New(),
		History:  history.New(),
		analysis: analysis.New(),
	}
	if !o.noFetch && stores.Templates != nil {
		w.prefetcher = cache.NewPrefetcher(cfg.Resources.Dir, stores.Templates, cfg.Resources.Templates)
	}
	return w, nil
}

// Context attaches the workspace logger to ctx.
func (w *Workspace) Context(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, w.Logger)
}

// SolutionPath is the configured solution file, or the workspace directory
// when none is configured.
func (w *Workspace) SolutionPath() string {
	if w.Config.Solution != "" {
		return w.Config.Solution
	}
	return w.Dir
}

// LoadAnalysis reads the analyzer dump and indexes its files for incremental
// runs.
func (w *Workspace) LoadAnalysis() ([]*domain.ParsedProject, error) {
	projects, err := w.analysis.Load(w.Config.Analysis)
	if err != nil {
		return nil, err
	}
	w.Engine.Index(projects...)
	return projects, nil
}

// Configurations returns the configured projects. With none configured every
// analyzed project is ported with the default rules.
func (w *Workspace) Configurations(projects []*domain.ParsedProject) []*domain.ProjectConfiguration {
	if len(w.Config.Projects) > 0 {
		return w.Config.Projects
	}
	out := make([]*domain.ProjectConfiguration, 0, len(projects))
	for _, p := range projects {
		out = append(out, &domain.ProjectConfiguration{
			ProjectPath:     p.ProjectPath,
			SolutionPath:    w.Config.Solution,
			UseDefaultRules: true,
		})
	}
	return out
}

// NewSolution builds a solution orchestrator. This resets the rule cache
// and starts the template prefetch.
func (w *Workspace) NewSolution(ctx context.Context) *application.SolutionPort {
	deps := application.SolutionDeps{
		Detector:  w.Detector,
		Engine:    w.Engine,
		Cache:     w.Cache,
		Installer: rules.NewInstaller(),
		Reports:   w.Reports,
		Git:       w.Git,
	}
	if w.prefetcher != nil {
		deps.Prefetcher = w.prefetcher
	}
	return application.NewSolutionPort(w.Context(ctx), deps, application.SolutionOptions{
		SolutionPath:   w.SolutionPath(),
		Parallelism:    w.Config.Parallelism,
		MismatchPolicy: w.Config.MismatchPolicy,
	})
}

// IncrementalSolution builds an orchestrator for incremental re-analysis.
// The rule cache is read as it is: no reset, no prefetch.
func (w *Workspace) IncrementalSolution() *application.SolutionPort {
	return application.NewIncrementalSolutionPort(application.SolutionDeps{
		Engine: w.Engine,
		Cache:  w.Cache,
		Git:    w.Git,
	}, application.SolutionOptions{
		SolutionPath: w.SolutionPath(),
		Parallelism:  w.Config.Parallelism,
	})
}

// PrepareSolution loads the analysis and pairs it with the configurations.
func (w *Workspace) PrepareSolution(ctx context.Context) (*application.SolutionPort, error) {
	projects, err := w.LoadAnalysis()
	if err != nil {
		return nil, err
	}
	sol := w.NewSolution(ctx)
	if err := sol.Prepare(w.Context(ctx), projects, w.Configurations(projects)); err != nil {
		return nil, err
	}
	return sol, nil
}

// RuleSet returns the rules currently held in the cache directory.
func (w *Workspace) RuleSet(ctx context.Context) domain.RuleSet {
	rs, err := w.Rules.LoadDir(w.Cache.Dir())
	if err != nil {
		logging.FromContext(w.Context(ctx)).WithError(err).Warn("some cached rules could not be read")
	}
	return rs
}

// Record appends a run summary to the solution history. Best effort.
func (w *Workspace) Record(result *domain.SolutionResult) {
	projects := result.RunResults
	if len(projects) == 0 {
		projects = result.AnalysisResults
	}
	actions := 0
	for _, p := range projects {
		actions += p.Actions.Count()
	}
	entry := domain.RunEntry{
		Timestamp:  time.Now().Format(time.RFC3339),
		RunID:      result.RunID,
		CommitHash: result.CommitHash,
		Projects:   len(projects),
		Downloaded: result.DownloadedFiles.Len(),
		Actions:    actions,
	}
	if err := w.History.Save(w.Dir, entry); err != nil {
		w.Logger.WithError(err).Debug("could not save run history")
	}
}
