package domain

import (
	"fmt"
	"time"
)

// ProjectType identifies the framework subtype of a legacy project. It drives
// which recommendation rules apply during a port.
type ProjectType string

const (
	ProjectTypeVBNetMvc              ProjectType = "VBNetMvc"
	ProjectTypeVBWebForms            ProjectType = "VBWebForms"
	ProjectTypeVBWebApi              ProjectType = "VBWebApi"
	ProjectTypeVBClassLibrary        ProjectType = "VBClassLibrary"
	ProjectTypeMvc                   ProjectType = "Mvc"
	ProjectTypeWebApi                ProjectType = "WebApi"
	ProjectTypeWebForms              ProjectType = "WebForms"
	ProjectTypeWebClassLibrary       ProjectType = "WebClassLibrary"
	ProjectTypeWCFConfigBasedService ProjectType = "WCFConfigBasedService"
	ProjectTypeWCFServiceLibrary     ProjectType = "WCFServiceLibrary"
	ProjectTypeWCFCodeBasedService   ProjectType = "WCFCodeBasedService"
	ProjectTypeWCFClient             ProjectType = "WCFClient"
	ProjectTypeClassLibrary          ProjectType = "ClassLibrary"
)

// ValidProjectTypes enumerates all recognized project types.
var ValidProjectTypes = []ProjectType{
	ProjectTypeVBNetMvc,
	ProjectTypeVBWebForms,
	ProjectTypeVBWebApi,
	ProjectTypeVBClassLibrary,
	ProjectTypeMvc,
	ProjectTypeWebApi,
	ProjectTypeWebForms,
	ProjectTypeWebClassLibrary,
	ProjectTypeWCFConfigBasedService,
	ProjectTypeWCFServiceLibrary,
	ProjectTypeWCFCodeBasedService,
	ProjectTypeWCFClient,
	ProjectTypeClassLibrary,
}

// ParseProjectType validates a user-supplied project type name.
func ParseProjectType(s string) (ProjectType, error) {
	for _, pt := range ValidProjectTypes {
		if string(pt) == s {
			return pt, nil
		}
	}
	return "", fmt.Errorf("unknown project type %q", s)
}

// Feature names understood by the classifier.
const (
	FeatureVBNetMvc                = "vbnet_mvc"
	FeatureVBWebForms              = "vb_webforms"
	FeatureVBWebApi                = "vb_webapi"
	FeatureVBClassLibrary          = "vb_class_library"
	FeatureMvc                     = "mvc"
	FeatureWebApi                  = "webapi"
	FeatureWebForms                = "webforms"
	FeatureWebClassLibrary         = "web_class_library"
	FeatureWCFConfigBasedService   = "wcf_config_based_service"
	FeatureWCFServiceHostReference = "wcf_service_host_reference"
	FeatureWCFCodeBasedService     = "wcf_code_based_service"
	FeatureWCFClient               = "wcf_client"
)

// FeatureVector is the set of boolean predicates a feature detector produced
// for one project. A missing key reads as false.
type FeatureVector map[string]bool

// Has reports whether the named feature was detected.
func (v FeatureVector) Has(name string) bool { return v[name] }

// Reference is an explicit type or namespace reference found in a source file.
type Reference struct {
	Namespace string `json:"namespace"`
	Assembly  string `json:"assembly,omitempty"`
}

// SourceFile is the analyzer's view of a single source file.
type SourceFile struct {
	Path       string      `json:"path"`
	References []Reference `json:"references,omitempty"`
	Usings     []string    `json:"usings,omitempty"`
	Imports    []string    `json:"imports,omitempty"`
}

// ParsedProject is the analyzer output for one project.
type ParsedProject struct {
	ProjectPath string        `json:"project_path"`
	Language    string        `json:"language,omitempty"`
	Features    FeatureVector `json:"features,omitempty"`
	Files       []SourceFile  `json:"files"`
}

// ProjectConfiguration is the caller-owned porting configuration of one
// project. ProjectType, RulesDir and AdditionalReferences are written by the
// project orchestrator during rule resolution.
type ProjectConfiguration struct {
	ProjectPath          string      `yaml:"path"                  json:"project_path"`
	SolutionPath         string      `yaml:"-"                     json:"solution_path,omitempty"`
	ProjectType          ProjectType `yaml:"-"                     json:"project_type,omitempty"`
	RulesDir             string      `yaml:"rules_dir"             json:"rules_dir,omitempty"`
	AdditionalReferences []string    `yaml:"additional_references" json:"additional_references,omitempty"`
	UseDefaultRules      bool        `yaml:"use_default_rules"     json:"use_default_rules"`
	TargetVersions       []string    `yaml:"target_versions"       json:"target_versions,omitempty"`
}

// Action is a single recommended or applied transformation.
type Action struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Namespace   string `json:"namespace,omitempty"`
	Description string `json:"description,omitempty"`
}

// FileActions groups the actions that target one file.
type FileActions struct {
	FilePath string   `json:"file_path"`
	Actions  []Action `json:"actions"`
}

// ProjectActions holds everything the rewrite engine proposed for a project.
type ProjectActions struct {
	Files        []FileActions `json:"files,omitempty"`
	ProjectLevel []Action      `json:"project_level,omitempty"`
}

// Count returns the total number of proposed actions.
func (a ProjectActions) Count() int {
	n := len(a.ProjectLevel)
	for _, f := range a.Files {
		n += len(f.Actions)
	}
	return n
}

// ProjectResult accumulates the outcome of porting one project.
type ProjectResult struct {
	ProjectFile     string         `json:"project_file"`
	ProjectType     ProjectType    `json:"project_type"`
	Features        FeatureVector  `json:"features,omitempty"`
	References      ReferenceSet   `json:"references"`
	DownloadedFiles ReferenceSet   `json:"downloaded_files"`
	Actions         ProjectActions `json:"actions"`
	ExecutedActions []FileActions  `json:"executed_actions,omitempty"`
	Errors          []string       `json:"errors,omitempty"`
}

// SolutionResult aggregates per-project results of one solution run.
type SolutionResult struct {
	RunID           string                 `json:"run_id"`
	SolutionPath    string                 `json:"solution_path"`
	CommitHash      string                 `json:"commit_hash,omitempty"`
	StartedAt       time.Time              `json:"started_at"`
	FinishedAt      time.Time              `json:"finished_at,omitempty"`
	References      ReferenceSet           `json:"references"`
	DownloadedFiles ReferenceSet           `json:"downloaded_files"`
	ProjectTypes    map[string]ProjectType `json:"project_types"`
	AnalysisResults []*ProjectResult       `json:"analysis_results"`
	RunResults      []*ProjectResult       `json:"run_results,omitempty"`
}

// NewSolutionResult returns an empty result ready to be filled.
func NewSolutionResult(runID, solutionPath string) *SolutionResult {
	return &SolutionResult{
		RunID:           runID,
		SolutionPath:    solutionPath,
		StartedAt:       time.Now(),
		References:      NewReferenceSet(),
		DownloadedFiles: NewReferenceSet(),
		ProjectTypes:    make(map[string]ProjectType),
	}
}

// Rule is a cached recommendation rule resource. The body is kept opaque;
// only the recommendation list is read by the bundled engine.
type Rule struct {
	Namespace       string   `json:"namespace"`
	Source          string   `json:"-"`
	Recommendations []Action `json:"recommendations,omitempty"`
}

// RuleSet is a previously resolved set of rules keyed by lowercase namespace.
type RuleSet struct {
	Dir   string          `json:"dir"`
	Rules map[string]Rule `json:"rules"`
}

// Lookup returns the rule for a namespace, ignoring case.
func (r RuleSet) Lookup(namespace string) (Rule, bool) {
	rule, ok := r.Rules[RuleKey(namespace)]
	return rule, ok
}

// RunEntry is one persisted run summary.
type RunEntry struct {
	Timestamp  string `json:"timestamp"`
	RunID      string `json:"run_id"`
	CommitHash string `json:"commit_hash,omitempty"`
	Projects   int    `json:"projects"`
	Downloaded int    `json:"downloaded"`
	Actions    int    `json:"actions"`
}

// SolutionScan is the result of discovering project files below a directory.
type SolutionScan struct {
	RootPath  string   `json:"root_path"`
	Solutions []string `json:"solutions,omitempty"`
	Projects  []string `json:"projects"`
}
