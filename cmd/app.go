package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/WowJuicy/QuickLauncher-v2/internal/config"
	"github.com/WowJuicy/QuickLauncher-v2/internal/crawl"
	"github.com/WowJuicy/QuickLauncher-v2/internal/keyword"
	"github.com/WowJuicy/QuickLauncher-v2/internal/search"
	"github.com/WowJuicy/QuickLauncher-v2/internal/status"
	"github.com/WowJuicy/QuickLauncher-v2/internal/urltemplate"
)

// app holds the long-lived pieces shared by the commands that search.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	cache  *keyword.Cache
	pool   *search.Pool
	coord  *search.Coordinator

	msgs    chan status.Message
	em      *status.Emitter
	flushes chan chan struct{}
	done    chan struct{}
}

// newApp loads config and keywords, creates the worker pool and starts
// printing status messages. Callers must call close.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	cache, err := keyword.Load(cfg.StorePath)
	switch {
	case err != nil:
		logger.Warn("keyword store not loaded", "err", err)
		printWarn("", fmt.Sprintf("keywords not loaded: %v", err))
	case cache.Len() == 0:
		printWarn("", fmt.Sprintf("keyword store is empty: %s", cfg.StorePath))
	default:
		logger.Info("keywords loaded", "count", cache.Len(), "path", cfg.StorePath)
	}

	pool, err := search.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("cannot create worker pool: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		cache:  cache,
		pool:   pool,
	}
	a.startPrinter(make(chan status.Message, 64))
	a.em = status.NewEmitter(a.msgs, cfg.StatusWidth)
	a.coord = search.NewCoordinator(pool, crawl.New(cfg.CrawlOptions(), logger), search.Options{
		Roots:    cfg.EffectiveRoots(),
		Interval: cfg.ProgressInterval(),
		Emitter:  a.em,
		Logger:   logger,
	})
	return a, nil
}

// startPrinter prints status messages from msgs on their own goroutine.
func (a *app) startPrinter(msgs chan status.Message) {
	a.msgs = msgs
	a.flushes = make(chan chan struct{})
	a.done = make(chan struct{})
	go func() {
		defer close(a.done)
		for {
			select {
			case m, ok := <-a.msgs:
				if !ok {
					endProgress()
					return
				}
				printStatus(m)
			case ack := <-a.flushes:
				a.drain()
				endProgress()
				close(ack)
			}
		}
	}()
}

// drain prints every message already queued.
func (a *app) drain() {
	for {
		select {
		case m, ok := <-a.msgs:
			if !ok {
				return
			}
			printStatus(m)
		default:
			return
		}
	}
}

// flush waits until every status message emitted so far is on screen and
// no progress line is left open, so the caller can write to stdout.
func (a *app) flush(ctx context.Context) {
	ack := make(chan struct{})
	select {
	case a.flushes <- ack:
	case <-a.done:
		return
	case <-ctx.Done():
		return
	}
	select {
	case <-ack:
	case <-ctx.Done():
	}
}

// expander returns the URL template expander configured for this run.
func (a *app) expander() *urltemplate.Expander {
	e := &urltemplate.Expander{FallbackSearchURL: a.cfg.FallbackSearchURL}
	if a.cfg.ProbePages {
		e.Prober = &urltemplate.HTTPProber{Timeout: a.cfg.ProbeTimeout()}
	}
	return e
}

// close shuts the pool down and flushes pending status messages. Abandoned
// crawl tasks may still emit, so the stream stays open after a timeout.
func (a *app) close() {
	if err := a.pool.Shutdown(a.cfg.ShutdownGrace()); err != nil {
		if errors.Is(err, search.ErrShutdownTimeout) {
			a.logger.Warn("crawl tasks did not stop in time", "grace", a.cfg.ShutdownGrace())
			return
		}
		a.logger.Error("pool shutdown", "err", err)
	}
	close(a.msgs)
	<-a.done
}
