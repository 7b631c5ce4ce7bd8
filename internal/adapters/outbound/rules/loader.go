// Package rules reads cached rule resources from disk.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/openkraft/portcore/internal/domain"
)

const defaultLoaderSize = 1024

// Loader parses rule files and keeps them in an LRU keyed by path and
// modification time, so a re-downloaded file is parsed again.
type Loader struct {
	parsed *lru.Cache[string, domain.Rule]
}

// NewLoader creates a loader holding at most size parsed rules.
func NewLoader(size int) (*Loader, error) {
	if size <= 0 {
		size = defaultLoaderSize
	}
	c, err := lru.New[string, domain.Rule](size)
	if err != nil {
		return nil, err
	}
	return &Loader{parsed: c}, nil
}

// LoadFile parses one rule file. A file without a namespace takes it from its
// name, e.g. "system.web.mvc.json" → "system.web.mvc".
func (l *Loader) LoadFile(path string) (domain.Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Rule{}, err
	}
	key := fmt.Sprintf("%s@%d:%d", path, info.ModTime().UnixNano(), info.Size())
	if rule, ok := l.parsed.Get(key); ok {
		return rule, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Rule{}, err
	}
	var rule domain.Rule
	if err := json.Unmarshal(data, &rule); err != nil {
		return domain.Rule{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if rule.Namespace == "" {
		rule.Namespace = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	rule.Source = path
	l.parsed.Add(key, rule)
	return rule, nil
}

// LoadDir parses the named rule files in dir, or every *.json file when
// names is empty. Unparsable files are skipped and reported in the joined
// error; the returned set still holds every good rule.
func (l *Loader) LoadDir(dir string, names ...string) (domain.RuleSet, error) {
	rs := domain.RuleSet{Dir: dir, Rules: make(map[string]domain.Rule)}
	if len(names) == 0 {
		matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			return rs, err
		}
		for _, m := range matches {
			names = append(names, filepath.Base(m))
		}
	}

	var errs []error
	for _, name := range names {
		rule, err := l.LoadFile(filepath.Join(dir, name))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rs.Rules[domain.RuleKey(rule.Namespace)] = rule
	}
	return rs, errors.Join(errs...)
}

// Len returns the number of parsed rules held.
func (l *Loader) Len() int { return l.parsed.Len() }
