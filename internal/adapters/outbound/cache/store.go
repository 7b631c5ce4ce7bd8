package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/openkraft/portcore/internal/domain"
	"github.com/openkraft/portcore/internal/fsutil"
	"github.com/openkraft/portcore/internal/logging"
	"github.com/openkraft/portcore/internal/telemetry"
)

var errNotFound = errors.New("rule resource not found")

// Options configures a Store. Zero values fall back to the domain defaults.
type Options struct {
	TTL            time.Duration
	DeleteAttempts int
	RetryDelay     time.Duration
	Parallelism    int
}

// OptionsFromConfig maps the cache section of a PortConfig onto Options.
func OptionsFromConfig(cfg domain.PortConfig) Options {
	return Options{
		TTL:            cfg.Cache.TTL(),
		DeleteAttempts: cfg.Cache.DeleteAttempts,
		RetryDelay:     cfg.Cache.RetryDelay,
		Parallelism:    cfg.Parallelism,
	}
}

// Store is the local recommendation rule cache. It implements domain.RuleCache.
// The directory and the negative memo are only mutated by Reset and Fetch.
type Store struct {
	dir    string
	remote domain.RemoteRuleStore
	opts   Options
	memo   *NegativeMemo
	group  singleflight.Group

	now       func() time.Time
	createdAt func(string) (time.Time, error)
	remove    func(string) error
	sleep     func(time.Duration)
}

// Option overrides a Store collaborator, mostly for tests.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCreationTime replaces the directory creation time lookup.
func WithCreationTime(fn func(string) (time.Time, error)) Option {
	return func(s *Store) { s.createdAt = fn }
}

// WithRemover replaces os.RemoveAll for cache invalidation.
func WithRemover(fn func(string) error) Option {
	return func(s *Store) { s.remove = fn }
}

// WithSleep replaces time.Sleep between delete attempts.
func WithSleep(fn func(time.Duration)) Option {
	return func(s *Store) { s.sleep = fn }
}

// New creates a rule cache rooted at dir backed by remote.
func New(dir string, remote domain.RemoteRuleStore, opts Options, options ...Option) *Store {
	if opts.TTL <= 0 {
		opts.TTL = time.Duration(domain.DefaultCacheTTLHours) * time.Hour
	}
	if opts.DeleteAttempts <= 0 {
		opts.DeleteAttempts = domain.DefaultDeleteAttempts
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = domain.DefaultParallelism
	}
	s := &Store{
		dir:       dir,
		remote:    remote,
		opts:      opts,
		memo:      NewNegativeMemo(),
		now:       time.Now,
		createdAt: dirCreatedAt,
		remove:    os.RemoveAll,
		sleep:     time.Sleep,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// Memo exposes the run-scoped negative memo.
func (s *Store) Memo() *NegativeMemo { return s.memo }

// Reset invalidates the cache when its directory is older than the TTL.
// A missing directory is created. Delete failures are logged and the stale
// cache is kept; only a failure to create the directory is returned.
func (s *Store) Reset(ctx context.Context) error {
	log := logging.FromContext(ctx).WithField("dir", s.dir)

	created, err := s.createdAt(s.dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		telemetry.CacheResets.WithLabelValues("created").Inc()
		log.Debug("rule cache missing, creating")
	case err != nil:
		return fmt.Errorf("reading cache creation time: %w", err)
	case !domain.IsCacheExpired(created, s.now(), s.opts.TTL):
		telemetry.CacheResets.WithLabelValues("kept").Inc()
		log.WithField("created_at", created).Debug("rule cache within ttl")
		return nil
	default:
		log.WithField("created_at", created).Info("rule cache expired, deleting")
		if err := s.deleteWithAttempts(ctx); err != nil {
			telemetry.CacheResets.WithLabelValues("delete_failed").Inc()
			log.WithError(err).Warn("could not delete rule cache, keeping stale entries")
		} else {
			telemetry.CacheResets.WithLabelValues("deleted").Inc()
		}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	return nil
}

func (s *Store) deleteWithAttempts(ctx context.Context) error {
	log := logging.FromContext(ctx)
	var last error
	for attempt := 1; attempt <= s.opts.DeleteAttempts; attempt++ {
		err := s.remove(s.dir)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		last = err
		log.WithError(err).WithField("attempt", attempt).Debug("delete rule cache failed")
		if attempt < s.opts.DeleteAttempts {
			s.sleep(s.opts.RetryDelay)
		}
	}
	return fmt.Errorf("deleting %s after %d attempts: %w", s.dir, s.opts.DeleteAttempts, last)
}

// Fetch runs the fetch protocol for every reference and returns the rule file
// names available locally afterwards, sorted. Unavailable resources are
// recorded in the memo and never reported as errors.
func (s *Store) Fetch(ctx context.Context, refs domain.ReferenceSet) []string {
	ctx, span := telemetry.StartSpan(ctx, "cache.Fetch", attribute.Int("references", refs.Len()))
	defer telemetry.EndSpan(span, nil)

	var (
		mu      sync.Mutex
		matched []string
		g       errgroup.Group
	)
	g.SetLimit(s.opts.Parallelism)
	for _, ns := range refs.Sorted() {
		g.Go(func() error {
			if file, ok := s.fetchOne(ctx, ns); ok {
				mu.Lock()
				matched = append(matched, file)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(matched)
	return matched
}

func (s *Store) fetchOne(ctx context.Context, namespace string) (string, bool) {
	if namespace == "" {
		return "", false
	}
	file := domain.RuleFileName(namespace)
	local := filepath.Join(s.dir, file)
	log := logging.FromContext(ctx).WithField("namespace", namespace)

	if s.memo.Unavailable(local) {
		telemetry.RuleFetches.WithLabelValues(telemetry.OutcomeMemoized).Inc()
		return "", false
	}

	hit, err := fileExists(local)
	if err != nil {
		s.memo.MarkUnavailable(local)
		telemetry.RuleFetches.WithLabelValues(telemetry.OutcomeError).Inc()
		log.WithError(err).Debug("stat rule file failed")
		return "", false
	}
	if hit {
		telemetry.RuleFetches.WithLabelValues(telemetry.OutcomeHit).Inc()
		return file, true
	}

	_, err, _ = s.group.Do(local, func() (any, error) {
		// another flight may have finished between our stat and Do
		if ok, _ := fileExists(local); ok {
			return nil, nil
		}
		if s.memo.Unavailable(local) {
			return nil, errNotFound
		}
		return nil, s.download(ctx, file, local)
	})
	switch {
	case errors.Is(err, errNotFound):
		s.memo.MarkUnavailable(local)
		telemetry.RuleFetches.WithLabelValues(telemetry.OutcomeNotFound).Inc()
		log.Debug("rule resource not available")
		return "", false
	case err != nil:
		s.memo.MarkUnavailable(local)
		telemetry.RuleFetches.WithLabelValues(telemetry.OutcomeError).Inc()
		log.WithError(err).Debug("rule download failed")
		return "", false
	}
	telemetry.RuleFetches.WithLabelValues(telemetry.OutcomeDownloaded).Inc()
	log.Debug("rule downloaded")
	return file, true
}

func (s *Store) download(ctx context.Context, file, local string) error {
	ok, err := s.remote.Exists(ctx, file)
	if err != nil {
		return fmt.Errorf("checking %s: %w", file, err)
	}
	if !ok {
		return errNotFound
	}
	rc, err := s.remote.Fetch(ctx, file)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", file, err)
	}
	defer rc.Close()
	return fsutil.WriteAtomic(local, rc)
}

// Status describes the cache directory without modifying it.
func (s *Store) Status() (domain.CacheStatus, error) {
	st := domain.CacheStatus{Dir: s.dir}
	created, err := s.createdAt(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		st.Expired = true
		return st, nil
	}
	if err != nil {
		return st, err
	}
	st.Exists = true
	st.CreatedAt = created
	st.ExpiresAt = created.Add(s.opts.TTL)
	st.Expired = domain.IsCacheExpired(created, s.now(), s.opts.TTL)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return st, err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			st.Entries++
		}
	}
	return st, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
