// Package queue drives one input line to completion: immediate keyword
// launches first, then one search at a time.
package queue

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/WowJuicy/QuickLauncher-v2/internal/keyword"
	"github.com/WowJuicy/QuickLauncher-v2/internal/launch"
	"github.com/WowJuicy/QuickLauncher-v2/internal/resolve"
	"github.com/WowJuicy/QuickLauncher-v2/internal/search"
	"github.com/WowJuicy/QuickLauncher-v2/internal/status"
	"github.com/WowJuicy/QuickLauncher-v2/internal/urltemplate"
)

var (
	// ErrBusy is returned by Submit while another input is being processed.
	ErrBusy = errors.New("another input is still being processed")
	// ErrNoChoice is returned by a Chooser when the user declines to pick.
	ErrNoChoice = errors.New("no candidate chosen")
)

// Cache is the keyword cache as seen by the queue.
type Cache interface {
	Lookup(keyword string) (string, bool)
	RemoveAndPersist(alias string) (bool, error)
	MergeAndPersist(alias, target string) (bool, error)
}

// Searcher crawls for a request.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (search.Result, error)
}

// Expander turns a keyword template and an argument into a target.
type Expander interface {
	Expand(ctx context.Context, template, arg string) string
}

// Chooser lets the user pick one of the candidates found for name. It is
// called even for a single candidate so the user can confirm.
type Chooser interface {
	Choose(ctx context.Context, name string, candidates []string) (string, error)
}

// Deps are the collaborators of a Queue. Cache, Searcher, Opener and
// Chooser are required.
type Deps struct {
	Cache     Cache
	Searcher  Searcher
	Expander  Expander
	Opener    launch.Opener
	Processes launch.ProcessChecker
	Chooser   Chooser
	Emitter   *status.Emitter
	Logger    *log.Logger
}

// Queue processes input lines. Only one line is processed at a time.
type Queue struct {
	d      Deps
	em     *status.Emitter
	logger *log.Logger

	mu      sync.Mutex
	state   State
	pending []SubCommand
	cancel  context.CancelFunc
}

// New returns an idle Queue.
func New(d Deps) *Queue {
	if d.Expander == nil {
		d.Expander = &urltemplate.Expander{}
	}
	if d.Processes == nil {
		d.Processes = notRunning{}
	}
	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Queue{d: d, em: d.Emitter, logger: logger}
}

type notRunning struct{}

func (notRunning) Running(context.Context, string) bool { return false }

// State returns the current state.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Pending returns the raw sub-commands still waiting for a search.
func (q *Queue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.pending))
	for i, sc := range q.pending {
		out[i] = sc.Raw
	}
	return out
}

// Busy reports whether an input is being processed.
func (q *Queue) Busy() bool {
	return q.State() != StateIdle
}

// Cancel stops the running search and drops every pending sub-command.
// It is a no-op when idle.
func (q *Queue) Cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = nil
	if q.cancel != nil {
		q.cancel()
	}
}

func (q *Queue) setState(s State) {
	q.mu.Lock()
	q.state = s
	q.mu.Unlock()
}

// next pops the head of the pending queue.
func (q *Queue) next() (SubCommand, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return SubCommand{}, false
	}
	sc := q.pending[0]
	q.pending = q.pending[1:]
	q.state = StateQueued
	return sc, true
}

// Submit processes one input line. Every call gets a fresh cancellation
// scope; Cancel affects only the call in progress.
func (q *Queue) Submit(ctx context.Context, input string) (Summary, error) {
	q.mu.Lock()
	if q.state != StateIdle {
		q.mu.Unlock()
		return Summary{}, ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.state = StateSplitting
	q.mu.Unlock()

	defer func() {
		cancel()
		q.mu.Lock()
		q.cancel = nil
		q.pending = nil
		q.state = StateIdle
		q.mu.Unlock()
	}()

	var sum Summary
	parts := Split(input)
	if len(parts) == 0 {
		q.em.Info(ctx, "Enter a game name or command.")
		return sum, nil
	}

	var immediate, queued []SubCommand
	for _, raw := range parts {
		sc := Parse(raw)
		res := resolve.Resolve(q.d.Cache, sc.Keyword)
		q.reportStale(ctx, res)
		if res.Outcome == resolve.CachedHit {
			sc.Kind = Immediate
			sc.Target = res.Target
			immediate = append(immediate, sc)
			continue
		}
		queued = append(queued, sc)
	}
	q.logger.Debug("input split", "immediate", len(immediate), "queued", len(queued))

	q.setState(StateImmediateDispatch)
	for _, sc := range immediate {
		if ctx.Err() != nil {
			sum.Outcomes = append(sum.Outcomes, Outcome{
				Raw: sc.Raw, Kind: Immediate, Target: sc.Target, Disposition: Cancelled,
			})
			continue
		}
		sum.Outcomes = append(sum.Outcomes, q.dispatch(ctx, sc))
	}

	q.mu.Lock()
	if ctx.Err() == nil {
		q.pending = queued
	}
	q.mu.Unlock()

	for {
		sc, ok := q.next()
		if !ok {
			break
		}
		out := q.process(ctx, sc)
		sum.Outcomes = append(sum.Outcomes, out)
		if out.Disposition == Cancelled {
			sum.Cancelled = true
			break
		}
	}

	if sum.Cancelled || ctx.Err() != nil {
		sum.Cancelled = true
		return sum, nil
	}
	q.em.Info(ctx, "All inputs processed.")
	return sum, nil
}

// dispatch runs an immediate sub-command against its cached target.
func (q *Queue) dispatch(ctx context.Context, sc SubCommand) Outcome {
	if !resolve.IsURL(sc.Target) {
		out := q.launchFile(ctx, sc.Target, "Launched cached path: %s")
		out.Raw, out.Kind = sc.Raw, Immediate
		return out
	}
	out := q.openURL(ctx, sc.Target, sc.Argument)
	out.Raw, out.Kind = sc.Raw, Immediate
	if out.Disposition == Opened {
		q.remember(ctx, sc.Keyword, sc.Target)
	}
	return out
}

// process handles one queued sub-command: cached name, then search, choose
// and launch.
func (q *Queue) process(ctx context.Context, sc SubCommand) Outcome {
	out := Outcome{Raw: sc.Raw, Kind: Queued}
	if ctx.Err() != nil {
		out.Disposition = Cancelled
		return out
	}

	req, err := search.NewRequest(sc.Raw)
	if err != nil {
		q.em.Warn(ctx, "Invalid game name: %s", sc.Raw)
		out.Disposition, out.Err = Invalid, err
		return out
	}

	res := resolve.Resolve(q.d.Cache, req.Normalized)
	q.reportStale(ctx, res)
	if res.Outcome == resolve.CachedHit {
		var o Outcome
		if resolve.IsURL(res.Target) {
			o = q.openURL(ctx, res.Target, "")
		} else {
			o = q.launchFile(ctx, res.Target, "Launched cached path: %s")
		}
		o.Raw, o.Kind = sc.Raw, Queued
		return o
	}

	q.setState(StateSearching)
	result, err := q.d.Searcher.Search(ctx, req)
	if result.Cancelled || ctx.Err() != nil {
		q.setState(StateCancelled)
		q.em.Info(context.WithoutCancel(ctx), "Search cancelled.")
		out.Disposition = Cancelled
		return out
	}
	if err != nil {
		q.logger.Error("search failed", "name", req.Original, "err", err)
		q.em.Error(ctx, "Search failed for %s: %v", req.Original, err)
		out.Disposition, out.Err = Failed, err
		return out
	}

	candidates := result.Candidates
	switch len(candidates) {
	case 0:
		q.setState(StateNotFound)
		q.em.Info(ctx, "No executables found for %s", req.Original)
		out.Disposition = NotFound
		return out
	case 1:
		q.em.Info(ctx, "Path: %s", candidates[0])
	default:
		q.em.Info(ctx, "Multiple executables found for %s. Select one to launch:", req.Original)
	}

	q.setState(StateResolved)
	choice, err := q.d.Chooser.Choose(ctx, req.Original, candidates)
	if ctx.Err() != nil {
		q.setState(StateCancelled)
		q.em.Info(context.WithoutCancel(ctx), "Search cancelled.")
		out.Disposition = Cancelled
		return out
	}
	if err != nil || choice == "" {
		q.em.Info(ctx, "No paths to launch.")
		out.Disposition, out.Err = Skipped, err
		return out
	}

	o := q.launchFile(ctx, choice, "Launched: %s")
	o.Raw, o.Kind = sc.Raw, Queued
	if o.Disposition == Opened {
		q.remember(ctx, req.Original, choice)
	}
	return o
}

// launchFile opens a filesystem target unless its image is already running.
func (q *Queue) launchFile(ctx context.Context, path, okFormat string) Outcome {
	out := Outcome{Target: path}
	image := launch.ImageName(path)
	if q.d.Processes.Running(ctx, image) {
		q.em.Info(ctx, "Game is already running: %s", image)
		out.Disposition = AlreadyRunning
		return out
	}
	if err := q.d.Opener.Open(ctx, path); err != nil {
		q.logger.Error("launch failed", "path", path, "err", err)
		q.em.Error(ctx, "Error launching: %s", path)
		out.Disposition, out.Err = Failed, err
		return out
	}
	q.logger.Info("launched", "path", path)
	q.em.Info(ctx, okFormat, path)
	out.Disposition = Opened
	return out
}

// openURL expands a template with arg and opens the result.
func (q *Queue) openURL(ctx context.Context, template, arg string) Outcome {
	target := q.d.Expander.Expand(ctx, template, arg)
	out := Outcome{Target: target}
	if err := q.d.Opener.Open(ctx, target); err != nil {
		q.logger.Error("open failed", "target", target, "err", err)
		q.em.Error(ctx, "Error processing command: %v", err)
		out.Disposition, out.Err = Failed, err
		return out
	}
	q.logger.Info("opened", "target", target)
	q.em.Info(ctx, "Opened: %s", target)
	out.Disposition = Opened
	return out
}

// remember stores alias -> target. Aliases with spaces or store
// separators are not cached.
func (q *Queue) remember(ctx context.Context, alias, target string) {
	changed, err := q.d.Cache.MergeAndPersist(alias, target)
	switch {
	case errors.Is(err, keyword.ErrAliasHasSpace), errors.Is(err, keyword.ErrAliasHasSeparator):
		q.logger.Debug("not caching alias", "alias", alias, "err", err)
	case err != nil:
		q.logger.Error("cannot save keyword", "alias", alias, "err", err)
		q.em.Error(ctx, "Cannot save keyword %s: %v", alias, err)
	case changed:
		q.logger.Info("keyword saved", "alias", alias, "target", target)
	}
}

// reportStale surfaces a self-healed cache entry.
func (q *Queue) reportStale(ctx context.Context, res resolve.Result) {
	if res.Outcome != resolve.StaleEntry {
		return
	}
	q.logger.Info("removed stale keyword", "keyword", res.Keyword, "target", res.Target)
	q.em.Info(ctx, "Cleaning invalid keyword entry, searching...")
	if res.PersistErr != nil {
		q.logger.Error("cannot save keywords", "err", res.PersistErr)
		q.em.Error(ctx, "Cannot save keywords: %v", res.PersistErr)
	}
}
