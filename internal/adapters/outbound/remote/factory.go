package remote

import (
	"fmt"

	"github.com/openkraft/portcore/internal/domain"
)

// Stores holds the rule store and the template store built from one config.
type Stores struct {
	Rules     domain.RemoteRuleStore
	Templates domain.RemoteRuleStore
}

// FromConfig builds the remote stores selected by cfg.Kind. With S3 both
// rules and templates come from the same bucket, under "templates/" for the
// latter.
func FromConfig(cfg domain.RemoteConfig) (Stores, error) {
	switch cfg.Kind {
	case "", domain.RemoteHTTP:
		rules, err := NewHTTPStore(cfg.BaseURL, cfg.RateLimit, cfg.Timeout)
		if err != nil {
			return Stores{}, fmt.Errorf("rules store: %w", err)
		}
		templatesURL := cfg.TemplatesURL
		if templatesURL == "" {
			templatesURL = domain.DefaultTemplatesURL
		}
		templates, err := NewHTTPStore(templatesURL, cfg.RateLimit, cfg.Timeout)
		if err != nil {
			return Stores{}, fmt.Errorf("templates store: %w", err)
		}
		return Stores{Rules: rules, Templates: templates}, nil
	case domain.RemoteS3:
		rules, err := NewS3Store(cfg.S3)
		if err != nil {
			return Stores{}, err
		}
		tcfg := cfg.S3
		tcfg.Prefix = rules.Key("templates")
		templates, err := NewS3Store(tcfg)
		if err != nil {
			return Stores{}, err
		}
		return Stores{Rules: rules, Templates: templates}, nil
	default:
		return Stores{}, fmt.Errorf("unknown remote kind %q", cfg.Kind)
	}
}
