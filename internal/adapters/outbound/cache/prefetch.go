package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/openkraft/portcore/internal/domain"
	"github.com/openkraft/portcore/internal/fsutil"
	"github.com/openkraft/portcore/internal/logging"
	"github.com/openkraft/portcore/internal/telemetry"
)

const prefetchLimit = 4

// Prefetcher downloads solution-wide static assets such as project templates.
// It implements domain.AssetPrefetcher.
type Prefetcher struct {
	dir    string
	remote domain.RemoteRuleStore
	files  []string
}

// NewPrefetcher creates a prefetcher that stores files under dir.
func NewPrefetcher(dir string, remote domain.RemoteRuleStore, files []string) *Prefetcher {
	return &Prefetcher{dir: dir, remote: remote, files: files}
}

// Prefetch downloads every asset not already present, at most
// prefetchLimit at a time. Missing remote assets are skipped; transport and
// write errors are joined and returned.
func (p *Prefetcher) Prefetch(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "cache.Prefetch")
	log := logging.FromContext(ctx).WithField("dir", p.dir)

	var (
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchLimit)
	for _, name := range p.files {
		g.Go(func() error {
			if err := p.fetch(gctx, name); err != nil {
				fail(err)
			}
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	if err == nil {
		log.WithField("files", len(p.files)).Debug("templates prefetched")
	}
	telemetry.EndSpan(span, err)
	return err
}

func (p *Prefetcher) fetch(ctx context.Context, name string) error {
	log := logging.FromContext(ctx).WithField("file", name)
	local := filepath.Join(p.dir, name)
	if ok, _ := fileExists(local); ok {
		return nil
	}
	ok, err := p.remote.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("checking %s: %w", name, err)
	}
	if !ok {
		log.Debug("template not available remotely")
		return nil
	}
	rc, err := p.remote.Fetch(ctx, name)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", name, err)
	}
	defer rc.Close()
	if err := fsutil.WriteAtomic(local, rc); err != nil {
		return err
	}
	log.Debug("template downloaded")
	return nil
}
