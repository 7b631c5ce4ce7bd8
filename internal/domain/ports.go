package domain

import (
	"context"
	"io"
)

// RemoteRuleStore is the remote side of the rule cache. Names are resource
// file names relative to the store root (e.g. "system.web.mvc.json").
type RemoteRuleStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Fetch(ctx context.Context, name string) (io.ReadCloser, error)
}

// FeatureDetector evaluates project-shape predicates.
type FeatureDetector interface {
	Detect(ctx context.Context, project *ParsedProject) (FeatureVector, error)
	DetectMany(ctx context.Context, projects []*ParsedProject) (map[string]FeatureVector, error)
}

// RewriteEngine turns classified rule sets into concrete actions.
type RewriteEngine interface {
	Initialize(ctx context.Context, project *ParsedProject, cfg *ProjectConfiguration) (*ProjectResult, error)
	// Run applies actions and reports only what it applied.
	Run(ctx context.Context, cfg *ProjectConfiguration, actions ProjectActions) (*ProjectResult, error)
	RunIncremental(ctx context.Context, rules RuleSet, changedFiles []string) ([]FileActions, error)
}

// ReportGenerator consumes solution results.
type ReportGenerator interface {
	GenerateAnalysisReport(ctx context.Context, result *SolutionResult) error
	GenerateRunReport(ctx context.Context, result *SolutionResult) error
}

// RuleFetcher runs the rule-cache fetch protocol for a reference set and
// returns the file names that are available locally.
type RuleFetcher interface {
	Fetch(ctx context.Context, refs ReferenceSet) []string
}

// RuleCache is the cache surface owned by a solution orchestrator.
type RuleCache interface {
	RuleFetcher
	Reset(ctx context.Context) error
	Dir() string
}

// AssetPrefetcher downloads solution-wide static assets.
type AssetPrefetcher interface {
	Prefetch(ctx context.Context) error
}

// AnalysisSource loads analyzer output for a solution.
type AnalysisSource interface {
	Load(path string) ([]*ParsedProject, error)
}

// ConfigLoader loads a solution's porting configuration.
type ConfigLoader interface {
	Load(dir string) (PortConfig, error)
}

// RunHistory persists run summaries.
type RunHistory interface {
	Save(solutionDir string, entry RunEntry) error
	Load(solutionDir string) ([]RunEntry, error)
}

// RuleInstaller copies override rules into the default rules directory.
type RuleInstaller interface {
	InstallOverrides(ctx context.Context, srcDir, dstDir string) error
}

// GitInfo reads version-control metadata of a solution.
type GitInfo interface {
	CommitHash(path string) (string, error)
}
