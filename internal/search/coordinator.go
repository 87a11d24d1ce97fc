// Package search fans a name search out over every volume root and joins
// the candidates.
package search

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/WowJuicy/QuickLauncher-v2/internal/crawl"
	"github.com/WowJuicy/QuickLauncher-v2/internal/status"
)

// Options configures a Coordinator.
type Options struct {
	// Roots lists the volume roots to crawl. Empty means crawl.VolumeRoots().
	Roots []string
	// Interval rate-limits "Scanning:" progress messages.
	Interval time.Duration
	Emitter  *status.Emitter
	Logger   *log.Logger
}

// Coordinator runs searches on a shared Pool. Concurrent Search calls are
// allowed; each has its own candidate set and progress counter.
type Coordinator struct {
	pool    *Pool
	crawler *crawl.Crawler
	opts    Options
	logger  *log.Logger
}

// NewCoordinator wires a pool and a crawler together.
func NewCoordinator(pool *Pool, crawler *crawl.Crawler, opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Coordinator{pool: pool, crawler: crawler, opts: opts, logger: logger}
}

func (c *Coordinator) roots() []string {
	if len(c.opts.Roots) > 0 {
		return c.opts.Roots
	}
	return crawl.VolumeRoots()
}

// Search crawls every root for req and returns the sorted candidates. An
// empty result is not an error. When ctx is cancelled the partial result is
// returned with Cancelled set.
func (c *Coordinator) Search(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res := Result{Request: req}
	if req.Normalized == "" {
		return res, ErrInvalidName
	}

	em := c.opts.Emitter
	em.Info(ctx, "Searching for %s on all drives...", req.Input)
	c.logger.Info("search started", "id", req.ID, "term", req.Original)

	set := crawl.NewCandidateSet()
	prog := newProgress(c.opts.Interval)
	hooks := crawl.Hooks{
		OnFile: func(path string) {
			if prog.visit() {
				em.Progress(ctx, "Scanning: %s", path)
			}
		},
		OnLauncherDir: func(dir string) {
			em.Progress(ctx, "Scanning launcher: %s", dir)
		},
	}

	q := req.query()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.pool.Size())
	for _, root := range c.roots() {
		g.Go(func() error {
			err := c.pool.Run(gctx, func(rctx context.Context) error {
				return c.crawler.CrawlRoot(rctx, root, q, set, hooks)
			})
			switch {
			case errors.Is(err, crawl.ErrRootUnreadable):
				c.logger.Warn("skipping root", "root", root, "err", err)
				em.Warn(ctx, "Cannot access drive: %s", root)
				return nil
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return nil
			}
			return err
		})
	}
	err := g.Wait()

	res.Candidates = set.Sorted()
	res.Files = prog.count()
	res.Elapsed = time.Since(start)
	res.Cancelled = ctx.Err() != nil || c.pool.ctx.Err() != nil
	c.logger.Info("search finished", "id", req.ID,
		"candidates", len(res.Candidates), "files", res.Files,
		"cancelled", res.Cancelled, "elapsed", res.Elapsed)
	return res, err
}
