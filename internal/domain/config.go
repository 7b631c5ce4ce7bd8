package domain

import (
	"fmt"
	"time"
)

// MismatchPolicy decides what happens to configurations without a matching
// analysis result and analysis results without a matching configuration.
type MismatchPolicy string

const (
	// MismatchDrop silently filters unmatched entries (logged at debug level).
	MismatchDrop MismatchPolicy = "drop"
	// MismatchFail rejects the solution with a ConfigMismatchError.
	MismatchFail MismatchPolicy = "fail"
)

// RemoteKind selects the remote rule store implementation.
type RemoteKind string

const (
	RemoteHTTP RemoteKind = "http"
	RemoteS3   RemoteKind = "s3"
)

const (
	DefaultCacheTTLHours      = 24
	DefaultDeleteAttempts     = 3
	DefaultDeleteRetryDelay   = time.Second
	DefaultRecommendationsURL = "https://s3.us-west-2.amazonaws.com/aws.portingassistant.dotnet.datastore/recommendationsync/recommendation"
	DefaultTemplatesURL       = "https://s3.us-west-2.amazonaws.com/aws.portingassistant.dotnet.datastore/templates"
	DefaultRemoteTimeout      = 30 * time.Second
	DefaultRemoteRateLimit    = 20.0
	DefaultAnalysisFile       = "portcore.analysis.json"
	DefaultParallelism        = 1
)

// DefaultTemplateFiles are the solution-wide assets prefetched once per run.
var DefaultTemplateFiles = []string{
	"netcoreapp3.1.csproj",
	"net5.0.csproj",
	"net6.0.csproj",
	"program.cs.template",
	"startup.cs.template",
}

// PortConfig holds solution-level configuration loaded from .portcore.yaml.
type PortConfig struct {
	Solution       string                  `yaml:"solution"        json:"solution,omitempty"`
	Analysis       string                  `yaml:"analysis"        json:"analysis,omitempty"`
	Cache          CacheConfig             `yaml:"cache"           json:"cache"`
	Remote         RemoteConfig            `yaml:"remote"          json:"remote"`
	Resources      ResourcesConfig         `yaml:"resources"       json:"resources"`
	Parallelism    int                     `yaml:"parallelism"     json:"parallelism,omitempty"`
	MismatchPolicy MismatchPolicy          `yaml:"mismatch_policy" json:"mismatch_policy,omitempty"`
	Logging        LoggingConfig           `yaml:"logging"         json:"logging"`
	Projects       []*ProjectConfiguration `yaml:"projects"        json:"projects,omitempty"`
}

// CacheConfig controls the local rule cache.
type CacheConfig struct {
	Dir            string        `yaml:"dir"             json:"dir,omitempty"`
	TTLHours       int           `yaml:"ttl_hours"       json:"ttl_hours,omitempty"`
	DeleteAttempts int           `yaml:"delete_attempts" json:"delete_attempts,omitempty"`
	RetryDelay     time.Duration `yaml:"retry_delay"     json:"retry_delay,omitempty"`
}

// TTL returns the expiry window as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// RemoteConfig selects and configures the remote rule store.
type RemoteConfig struct {
	Kind         RemoteKind    `yaml:"kind"          json:"kind,omitempty"`
	BaseURL      string        `yaml:"base_url"      json:"base_url,omitempty"`
	TemplatesURL string        `yaml:"templates_url" json:"templates_url,omitempty"`
	RateLimit    float64       `yaml:"rate_limit"    json:"rate_limit,omitempty"`
	Timeout      time.Duration `yaml:"timeout"       json:"timeout,omitempty"`
	S3           S3Config      `yaml:"s3"            json:"s3"`
}

// S3Config configures the S3-compatible rule store.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"   json:"endpoint,omitempty"`
	Region    string `yaml:"region"     json:"region,omitempty"`
	Bucket    string `yaml:"bucket"     json:"bucket,omitempty"`
	Prefix    string `yaml:"prefix"     json:"prefix,omitempty"`
	AccessKey string `yaml:"access_key" json:"-"`
	SecretKey string `yaml:"secret_key" json:"-"`
	UseSSL    bool   `yaml:"use_ssl"    json:"use_ssl,omitempty"`
}

// ResourcesConfig lists the static assets prefetched per solution.
type ResourcesConfig struct {
	Dir       string   `yaml:"dir"       json:"dir,omitempty"`
	Templates []string `yaml:"templates" json:"templates,omitempty"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"  json:"level,omitempty"`
	Format string `yaml:"format" json:"format,omitempty"`
	Output string `yaml:"output" json:"output,omitempty"`
}

// DefaultConfig returns a config with every default filled in except
// filesystem locations, which depend on the host.
func DefaultConfig() PortConfig {
	return PortConfig{
		Analysis: DefaultAnalysisFile,
		Cache: CacheConfig{
			TTLHours:       DefaultCacheTTLHours,
			DeleteAttempts: DefaultDeleteAttempts,
			RetryDelay:     DefaultDeleteRetryDelay,
		},
		Remote: RemoteConfig{
			Kind:         RemoteHTTP,
			BaseURL:      DefaultRecommendationsURL,
			TemplatesURL: DefaultTemplatesURL,
			RateLimit:    DefaultRemoteRateLimit,
			Timeout:      DefaultRemoteTimeout,
		},
		Resources: ResourcesConfig{
			Templates: append([]string(nil), DefaultTemplateFiles...),
		},
		Parallelism:    DefaultParallelism,
		MismatchPolicy: MismatchDrop,
		Logging:        LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
	}
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c PortConfig) Validate() error {
	// 1. mismatch policy must be known or empty
	switch c.MismatchPolicy {
	case "", MismatchDrop, MismatchFail:
	default:
		return fmt.Errorf("unknown mismatch_policy %q (valid: drop, fail)", c.MismatchPolicy)
	}

	// 2. remote kind must be known or empty
	switch c.Remote.Kind {
	case "", RemoteHTTP:
	case RemoteS3:
		if c.Remote.S3.Bucket == "" {
			return fmt.Errorf("remote.s3.bucket is required when remote.kind is s3")
		}
	default:
		return fmt.Errorf("unknown remote.kind %q (valid: http, s3)", c.Remote.Kind)
	}

	// 3. numeric knobs must not be negative
	if c.Cache.TTLHours < 0 {
		return fmt.Errorf("cache.ttl_hours must be >= 0 (got %d)", c.Cache.TTLHours)
	}
	if c.Cache.DeleteAttempts < 0 {
		return fmt.Errorf("cache.delete_attempts must be >= 0 (got %d)", c.Cache.DeleteAttempts)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must be >= 0 (got %d)", c.Parallelism)
	}
	if c.Remote.RateLimit < 0 {
		return fmt.Errorf("remote.rate_limit must be >= 0 (got %.2f)", c.Remote.RateLimit)
	}

	// 4. every project needs a path, and paths must be unique
	seen := make(map[string]bool, len(c.Projects))
	for i, p := range c.Projects {
		if p == nil || p.ProjectPath == "" {
			return fmt.Errorf("projects[%d].path must not be empty", i)
		}
		if seen[p.ProjectPath] {
			return fmt.Errorf("duplicate project path %q", p.ProjectPath)
		}
		seen[p.ProjectPath] = true
	}

	return nil
}
