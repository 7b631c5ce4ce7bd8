package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/openkraft/portcore/internal/domain"
)

const (
	// FileName is the solution-level configuration file.
	FileName = ".portcore.yaml"
	envFile  = ".env"
	appDir   = "portcore"
)

// YAMLLoader implements domain.ConfigLoader by reading .portcore.yaml, then
// applying PORTCORE_* overrides from the environment or a sibling .env file.
type YAMLLoader struct {
	getenv func(string) string
}

// Option customises a YAMLLoader.
type Option func(*YAMLLoader)

// WithEnv replaces os.Getenv.
func WithEnv(fn func(string) string) Option {
	return func(l *YAMLLoader) { l.getenv = fn }
}

// New creates a YAMLLoader.
func New(opts ...Option) *YAMLLoader {
	l := &YAMLLoader{getenv: os.Getenv}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load reads .portcore.yaml from dir.
// Returns defaults if the file does not exist.
func (l *YAMLLoader) Load(dir string) (domain.PortConfig, error) {
	var cfg domain.PortConfig
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return domain.PortConfig{}, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.PortConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
		}
		// Validate before merging so typos in raw input are reported.
		if err := cfg.Validate(); err != nil {
			return domain.PortConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
		}
	}

	cfg = mergeConfig(domain.DefaultConfig(), cfg)

	dotenv, err := godotenv.Read(filepath.Join(dir, envFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.PortConfig{}, fmt.Errorf("reading %s: %w", envFile, err)
	}
	lookup := func(key string) string {
		if v := l.getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return domain.PortConfig{}, err
	}

	if err := resolvePaths(&cfg, dir); err != nil {
		return domain.PortConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return domain.PortConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// mergeConfig overlays explicit values on top of defaults.
// Explicit (non-zero) values always win.
func mergeConfig(base, override domain.PortConfig) domain.PortConfig {
	result := base
	result.Solution = override.Solution
	result.Projects = override.Projects

	if override.Analysis != "" {
		result.Analysis = override.Analysis
	}
	if override.Cache.Dir != "" {
		result.Cache.Dir = override.Cache.Dir
	}
	if override.Cache.TTLHours > 0 {
		result.Cache.TTLHours = override.Cache.TTLHours
	}
	if override.Cache.DeleteAttempts > 0 {
		result.Cache.DeleteAttempts = override.Cache.DeleteAttempts
	}
	if override.Cache.RetryDelay > 0 {
		result.Cache.RetryDelay = override.Cache.RetryDelay
	}

	if override.Remote.Kind != "" {
		result.Remote.Kind = override.Remote.Kind
	}
	if override.Remote.BaseURL != "" {
		result.Remote.BaseURL = override.Remote.BaseURL
	}
	if override.Remote.TemplatesURL != "" {
		result.Remote.TemplatesURL = override.Remote.TemplatesURL
	}
	if override.Remote.RateLimit > 0 {
		result.Remote.RateLimit = override.Remote.RateLimit
	}
	if override.Remote.Timeout > 0 {
		result.Remote.Timeout = override.Remote.Timeout
	}
	result.Remote.S3 = override.Remote.S3

	if override.Resources.Dir != "" {
		result.Resources.Dir = override.Resources.Dir
	}
	// Explicit templates replace the defaults entirely.
	if len(override.Resources.Templates) > 0 {
		result.Resources.Templates = override.Resources.Templates
	}

	if override.Parallelism > 0 {
		result.Parallelism = override.Parallelism
	}
	if override.MismatchPolicy != "" {
		result.MismatchPolicy = override.MismatchPolicy
	}

	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}
	if override.Logging.Output != "" {
		result.Logging.Output = override.Logging.Output
	}
	return result
}

// applyEnv applies PORTCORE_* overrides. Secrets are expected here rather
// than in the YAML file.
func applyEnv(cfg *domain.PortConfig, lookup func(string) string) error {
	strs := map[string]*string{
		"PORTCORE_ANALYSIS":        &cfg.Analysis,
		"PORTCORE_CACHE_DIR":       &cfg.Cache.Dir,
		"PORTCORE_RESOURCES_DIR":   &cfg.Resources.Dir,
		"PORTCORE_REMOTE_BASE_URL": &cfg.Remote.BaseURL,
		"PORTCORE_TEMPLATES_URL":   &cfg.Remote.TemplatesURL,
		"PORTCORE_S3_ENDPOINT":     &cfg.Remote.S3.Endpoint,
		"PORTCORE_S3_REGION":       &cfg.Remote.S3.Region,
		"PORTCORE_S3_BUCKET":       &cfg.Remote.S3.Bucket,
		"PORTCORE_S3_PREFIX":       &cfg.Remote.S3.Prefix,
		"PORTCORE_S3_ACCESS_KEY":   &cfg.Remote.S3.AccessKey,
		"PORTCORE_S3_SECRET_KEY":   &cfg.Remote.S3.SecretKey,
		"PORTCORE_LOG_LEVEL":       &cfg.Logging.Level,
		"PORTCORE_LOG_FORMAT":      &cfg.Logging.Format,
	}
	for key, dst := range strs {
		if v := lookup(key); v != "" {
			*dst = v
		}
	}
	if v := lookup("PORTCORE_REMOTE_KIND"); v != "" {
		cfg.Remote.Kind = domain.RemoteKind(v)
	}
	if v := lookup("PORTCORE_MISMATCH_POLICY"); v != "" {
		cfg.MismatchPolicy = domain.MismatchPolicy(v)
	}
	if v := lookup("PORTCORE_PARALLELISM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORTCORE_PARALLELISM: %w", err)
		}
		cfg.Parallelism = n
	}
	if v := lookup("PORTCORE_S3_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PORTCORE_S3_USE_SSL: %w", err)
		}
		cfg.Remote.S3.UseSSL = b
	}
	return nil
}

// resolvePaths fills host-dependent defaults and makes relative paths
// relative to the solution directory.
func resolvePaths(cfg *domain.PortConfig, dir string) error {
	if cfg.Cache.Dir == "" || cfg.Resources.Dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		if cfg.Cache.Dir == "" {
			cfg.Cache.Dir = filepath.Join(base, appDir, "recommendation")
		}
		if cfg.Resources.Dir == "" {
			cfg.Resources.Dir = filepath.Join(base, appDir, "templates")
		}
	}

	cfg.Cache.Dir = under(dir, cfg.Cache.Dir)
	cfg.Resources.Dir = under(dir, cfg.Resources.Dir)
	cfg.Analysis = under(dir, cfg.Analysis)
	if cfg.Solution != "" {
		cfg.Solution = under(dir, cfg.Solution)
	}
	for _, p := range cfg.Projects {
		if p == nil {
			continue
		}
		p.SolutionPath = cfg.Solution
		if p.RulesDir != "" {
			p.RulesDir = under(dir, p.RulesDir)
		}
	}
	return nil
}

func under(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
