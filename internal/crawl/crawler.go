// Package crawl walks volume roots looking for executables whose name, or
// whose folder's name, contains a search term.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// ErrRootUnreadable is returned when a volume root cannot be listed.
var ErrRootUnreadable = errors.New("volume root is not readable")

// Hooks are optional callbacks fired from crawl goroutines. They must be
// safe for concurrent use.
type Hooks struct {
	// OnFile fires for every file visited, before matching.
	OnFile func(path string)
	// OnLauncherDir fires when a configured launcher directory is entered.
	OnLauncherDir func(path string)
	// OnMatch fires when a new candidate is recorded.
	OnMatch func(path string)
}

// Crawler walks roots according to its Options. It holds no per-search
// state and may serve concurrent CrawlRoot calls.
type Crawler struct {
	opts   Options
	excl   *excluder
	logger *log.Logger
}

// New returns a Crawler. A nil logger discards output.
func New(opts Options, logger *log.Logger) *Crawler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	opts = opts.normalized()
	return &Crawler{
		opts:   opts,
		excl:   newExcluder(opts.ExcludedDirs),
		logger: logger,
	}
}

// CrawlRoot searches one volume root: launcher directories first, then every
// top-level subdirectory. Matches are added to set. Cancellation of ctx stops
// the walk at the next directory or file and is not reported as an error;
// the only error is an unreadable root.
func (c *Crawler) CrawlRoot(ctx context.Context, root string, q Query, set *CandidateSet, h Hooks) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRootUnreadable, root, err)
	}

	walked := make(map[string]struct{})
	for _, rel := range c.opts.LauncherDirs {
		if ctx.Err() != nil {
			return nil
		}
		dir := filepath.Join(root, rel)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if h.OnLauncherDir != nil {
			h.OnLauncherDir(dir)
		}
		c.walk(ctx, dir, q, set, h, walked)
		walked[dir] = struct{}{}
	}

	for _, e := range entries {
		if ctx.Err() != nil {
			return nil
		}
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if _, ok := walked[dir]; ok {
			continue
		}
		c.walk(ctx, dir, q, set, h, walked)
	}
	return nil
}

// walk visits the tree under dir. Subtrees listed in skip were already
// crawled as launcher directories.
func (c *Crawler) walk(ctx context.Context, dir string, q Query, set *CandidateSet, h Hooks, skip map[string]struct{}) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			c.logger.Debug("cannot access path", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if c.excl.skip(d.Name()) {
				return filepath.SkipDir
			}
			if path != dir {
				if _, ok := skip[path]; ok {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if h.OnFile != nil {
			h.OnFile(path)
		}
		found, ok := c.match(path, q)
		if !ok {
			return nil
		}
		if set.Add(found) {
			c.logger.Debug("candidate found", "path", found, "term", q.Original)
			if h.OnMatch != nil {
				h.OnMatch(found)
			}
		}
		return nil
	})
}
