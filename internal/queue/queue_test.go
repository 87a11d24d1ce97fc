package queue

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WowJuicy/QuickLauncher-v2/internal/crawl"
	"github.com/WowJuicy/QuickLauncher-v2/internal/keyword"
	"github.com/WowJuicy/QuickLauncher-v2/internal/search"
	"github.com/WowJuicy/QuickLauncher-v2/internal/status"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeOpener struct{ rec *recorder }

func (o fakeOpener) Open(_ context.Context, target string) error {
	o.rec.add("open " + target)
	return nil
}

type fakeSearcher struct {
	rec     *recorder
	results map[string][]string
}

func (s fakeSearcher) Search(_ context.Context, req search.Request) (search.Result, error) {
	s.rec.add("search " + req.Original)
	return search.Result{Request: req, Candidates: s.results[req.Original]}, nil
}

// blockingSearcher parks every call until its context is cancelled while
// block is set.
type blockingSearcher struct {
	started chan string
	block   atomic.Bool
	calls   atomic.Int64
}

func (s *blockingSearcher) Search(ctx context.Context, req search.Request) (search.Result, error) {
	s.calls.Add(1)
	if !s.block.Load() {
		return search.Result{Request: req}, nil
	}
	s.started <- req.Input
	<-ctx.Done()
	return search.Result{Request: req, Cancelled: true}, nil
}

// cancellingOpener cancels the queue from inside its first Open.
type cancellingOpener struct {
	rec *recorder
	q   *Queue
}

func (o *cancellingOpener) Open(ctx context.Context, target string) error {
	o.rec.add("open " + target)
	o.q.Cancel()
	return nil
}

type pickChooser struct {
	index int
	err   error
	seen  [][]string
}

func (c *pickChooser) Choose(_ context.Context, _ string, candidates []string) (string, error) {
	c.seen = append(c.seen, candidates)
	if c.err != nil {
		return "", c.err
	}
	return candidates[c.index], nil
}

type runningSet map[string]bool

func (r runningSet) Running(_ context.Context, image string) bool { return r[image] }

type harness struct {
	q       *Queue
	cache   *keyword.Cache
	rec     *recorder
	chooser *pickChooser
	msgs    chan status.Message
}

func newHarness(t *testing.T, store string, searcher Searcher, procs runningSet) *harness {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keywords.txt")
	if store != "" {
		require.NoError(t, os.WriteFile(path, []byte(store), 0o644))
	}
	cache, _ := keyword.Load(path)
	h := &harness{
		cache:   cache,
		rec:     &recorder{},
		chooser: &pickChooser{},
		msgs:    make(chan status.Message, 256),
	}
	if searcher == nil {
		searcher = fakeSearcher{rec: h.rec}
	}
	if fs, ok := searcher.(fakeSearcher); ok && fs.rec == nil {
		fs.rec = h.rec
		searcher = fs
	}
	h.q = New(Deps{
		Cache:     cache,
		Searcher:  searcher,
		Opener:    fakeOpener{rec: h.rec},
		Processes: procs,
		Chooser:   h.chooser,
		Emitter:   status.NewEmitter(h.msgs, 0),
	})
	return h
}

func (h *harness) texts() []string {
	var out []string
	for {
		select {
		case m := <-h.msgs:
			out = append(out, m.Text)
		default:
			return out
		}
	}
}

func touch(t *testing.T, rel ...string) string {
	t.Helper()
	p := filepath.Join(append([]string{t.TempDir()}, rel...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	return p
}

func TestSubmit_CachedPathLaunchesWithoutSearch(t *testing.T) {
	steam := touch(t, "Games", "Steam", "steam.exe")
	h := newHarness(t, "steam="+steam+"\n", nil, nil)

	sum, err := h.q.Submit(context.Background(), "Steam")
	require.NoError(t, err)

	assert.Equal(t, []string{"open " + steam}, h.rec.list())
	require.Len(t, sum.Outcomes, 1)
	assert.Equal(t, Immediate, sum.Outcomes[0].Kind)
	assert.Equal(t, Opened, sum.Outcomes[0].Disposition)
	assert.Contains(t, h.texts(), "Launched cached path: "+steam)
	assert.Equal(t, StateIdle, h.q.State())
}

func TestSubmit_SearchChooseLaunchAndRemember(t *testing.T) {
	rootA, rootB := t.TempDir(), t.TempDir()
	first := filepath.Join(rootA, "Games", "Halo", "halo.exe")
	second := filepath.Join(rootB, "Apps", "halo-ce", "haloce.exe")
	for _, p := range []string{first, second} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	pool, err := search.NewPool(2)
	require.NoError(t, err)
	defer pool.Shutdown(time.Second)
	coord := search.NewCoordinator(pool, crawl.New(crawl.DefaultOptions(), nil), search.Options{
		Roots: []string{rootA, rootB},
	})

	h := newHarness(t, "", coord, nil)
	sum, err := h.q.Submit(context.Background(), "halo")
	require.NoError(t, err)

	require.Len(t, h.chooser.seen, 1)
	require.Len(t, h.chooser.seen[0], 2)
	chosen := h.chooser.seen[0][0]
	assert.Equal(t, []string{chosen}, sum.Opened())

	data, err := os.ReadFile(h.cache.Path())
	require.NoError(t, err)
	assert.Equal(t, "halo="+chosen+"\n", string(data))

	texts := h.texts()
	assert.Contains(t, texts, "Multiple executables found for halo. Select one to launch:")
	assert.Contains(t, texts, "Launched: "+chosen)
	assert.Contains(t, texts, "All inputs processed.")
}

func TestSubmit_WikiTemplateExpandsWithoutSearch(t *testing.T) {
	h := newHarness(t, "wiki=https://zelda.wiki.fandom.com/{}\n", nil, nil)

	sum, err := h.q.Submit(context.Background(), "wiki zelda")
	require.NoError(t, err)

	assert.Equal(t, []string{"open https://zelda.wiki.fandom.com/Zelda"}, h.rec.list())
	assert.Equal(t, []string{"https://zelda.wiki.fandom.com/Zelda"}, sum.Opened())
	assert.Contains(t, h.texts(), "Opened: https://zelda.wiki.fandom.com/Zelda")

	target, ok := h.cache.Lookup("wiki")
	assert.True(t, ok)
	assert.Equal(t, "https://zelda.wiki.fandom.com/{}", target)
}

func TestSubmit_ImmediatesRunBeforeQueuedInOrder(t *testing.T) {
	h := newHarness(t, "wiki=https://minecraft.wiki/w/{}\n", nil, nil)

	sum, err := h.q.Submit(context.Background(), "zzz  wiki creeper  yyy")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"open https://minecraft.wiki/w/Creeper",
		"search zzz",
		"search yyy",
	}, h.rec.list())
	require.Len(t, sum.Outcomes, 3)
	assert.Equal(t, NotFound, sum.Outcomes[1].Disposition)
	assert.Equal(t, "zzz", sum.Outcomes[1].Raw)
	assert.Equal(t, "yyy", sum.Outcomes[2].Raw)
	assert.Contains(t, h.texts(), "No executables found for zzz")
}

func TestSubmit_SingleSpaceNeverSplits(t *testing.T) {
	h := newHarness(t, "", nil, nil)

	_, err := h.q.Submit(context.Background(), "red dead")
	require.NoError(t, err)
	assert.Equal(t, []string{"search red dead"}, h.rec.list())
}

func TestSubmit_NormalizedNameCachedHit(t *testing.T) {
	rdr := touch(t, "RDR2", "rdr2.exe")
	h := newHarness(t, "reddead="+rdr+"\n", nil, nil)

	_, err := h.q.Submit(context.Background(), "Red Dead")
	require.NoError(t, err)
	assert.Equal(t, []string{"open " + rdr}, h.rec.list())
}

func TestSubmit_AliasWithSpaceIsNotCached(t *testing.T) {
	h := newHarness(t, "", fakeSearcher{results: map[string][]string{
		"red dead": {"/games/rdr2/rdr2.exe"},
	}}, nil)

	sum, err := h.q.Submit(context.Background(), "red dead")
	require.NoError(t, err)
	assert.Equal(t, []string{"/games/rdr2/rdr2.exe"}, sum.Opened())
	assert.Equal(t, 0, h.cache.Len())
	assert.NoFileExists(t, h.cache.Path())
	assert.Contains(t, h.texts(), "Path: /games/rdr2/rdr2.exe")
}

func TestSubmit_AlreadyRunningSkipsLaunch(t *testing.T) {
	h := newHarness(t, "", fakeSearcher{results: map[string][]string{
		"halo": {"/games/halo/halo.exe"},
	}}, runningSet{"halo.exe": true})

	sum, err := h.q.Submit(context.Background(), "halo")
	require.NoError(t, err)
	require.Len(t, sum.Outcomes, 1)
	assert.Equal(t, AlreadyRunning, sum.Outcomes[0].Disposition)
	assert.Equal(t, []string{"search halo"}, h.rec.list())
	_, ok := h.cache.Lookup("halo")
	assert.False(t, ok)
	assert.Contains(t, h.texts(), "Game is already running: halo.exe")
}

func TestSubmit_StaleEntryIsRemovedThenSearched(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone", "halo.exe")
	h := newHarness(t, "halo="+missing+"\n", nil, nil)

	_, err := h.q.Submit(context.Background(), "halo")
	require.NoError(t, err)

	_, ok := h.cache.Lookup("halo")
	assert.False(t, ok)
	assert.Equal(t, []string{"search halo"}, h.rec.list())
	assert.Contains(t, h.texts(), "Cleaning invalid keyword entry, searching...")

	data, err := os.ReadFile(h.cache.Path())
	require.NoError(t, err)
	assert.Empty(t, string(data))
}

func TestSubmit_InvalidNameIsNotSearched(t *testing.T) {
	h := newHarness(t, "", nil, nil)

	sum, err := h.q.Submit(context.Background(), `?? `)
	require.NoError(t, err)
	require.Len(t, sum.Outcomes, 1)
	assert.Equal(t, Invalid, sum.Outcomes[0].Disposition)
	assert.Empty(t, h.rec.list())
	assert.Contains(t, h.texts(), "Invalid game name: ??")
}

func TestSubmit_ChooserDeclines(t *testing.T) {
	h := newHarness(t, "", fakeSearcher{results: map[string][]string{
		"halo": {"/a/halo.exe", "/b/halo.exe"},
	}}, nil)
	h.chooser.err = ErrNoChoice

	sum, err := h.q.Submit(context.Background(), "halo")
	require.NoError(t, err)
	assert.Equal(t, Skipped, sum.Outcomes[0].Disposition)
	assert.Empty(t, sum.Opened())
	assert.Contains(t, h.texts(), "No paths to launch.")
}

func TestSubmit_EmptyInput(t *testing.T) {
	h := newHarness(t, "", nil, nil)

	sum, err := h.q.Submit(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, sum.Outcomes)
	assert.Equal(t, []string{"Enter a game name or command."}, h.texts())
}

func TestCancel_ClearsQueueAndResetsOnNextSubmit(t *testing.T) {
	bs := &blockingSearcher{started: make(chan string)}
	bs.block.Store(true)
	h := newHarness(t, "", bs, nil)

	done := make(chan Summary, 1)
	go func() {
		sum, err := h.q.Submit(context.Background(), "alpha  beta  gamma")
		assert.NoError(t, err)
		done <- sum
	}()

	assert.Equal(t, "alpha", <-bs.started)
	assert.Equal(t, []string{"beta", "gamma"}, h.q.Pending())
	assert.Equal(t, StateSearching, h.q.State())

	_, err := h.q.Submit(context.Background(), "delta")
	assert.ErrorIs(t, err, ErrBusy)

	h.q.Cancel()
	sum := <-done

	assert.True(t, sum.Cancelled)
	require.Len(t, sum.Outcomes, 1)
	assert.Equal(t, Cancelled, sum.Outcomes[0].Disposition)
	assert.Equal(t, int64(1), bs.calls.Load())
	assert.Empty(t, h.q.Pending())
	assert.Equal(t, StateIdle, h.q.State())

	texts := h.texts()
	assert.Contains(t, texts, "Search cancelled.")
	assert.NotContains(t, texts, "All inputs processed.")

	// A new input starts with a fresh cancellation scope.
	bs.block.Store(false)
	sum, err = h.q.Submit(context.Background(), "delta")
	require.NoError(t, err)
	assert.False(t, sum.Cancelled)
	assert.Equal(t, NotFound, sum.Outcomes[0].Disposition)
	assert.Equal(t, int64(2), bs.calls.Load())
}

func TestCancel_IdleIsNoop(t *testing.T) {
	h := newHarness(t, "", nil, nil)
	h.q.Cancel()

	_, err := h.q.Submit(context.Background(), "halo")
	require.NoError(t, err)
	assert.Equal(t, []string{"search halo"}, h.rec.list())
}

func TestSubmit_AliasWithSeparatorIsNotCached(t *testing.T) {
	h := newHarness(t, "", fakeSearcher{results: map[string][]string{
		"x=y": {"/games/xy/x=y.exe"},
	}}, nil)

	sum, err := h.q.Submit(context.Background(), "x=y")
	require.NoError(t, err)
	assert.Equal(t, []string{"/games/xy/x=y.exe"}, sum.Opened())
	assert.Equal(t, 0, h.cache.Len())
	assert.NoFileExists(t, h.cache.Path())
	for _, text := range h.texts() {
		assert.NotContains(t, text, "Cannot save keyword")
	}
}

func TestCancel_DuringImmediatesSkipsTheRest(t *testing.T) {
	first := touch(t, "steam", "steam.exe")
	second := touch(t, "epic", "epic.exe")
	h := newHarness(t, "steam="+first+"\nepic="+second+"\n", nil, nil)
	opener := &cancellingOpener{rec: h.rec, q: h.q}
	h.q.d.Opener = opener

	sum, err := h.q.Submit(context.Background(), "steam  epic  halo")
	require.NoError(t, err)

	assert.True(t, sum.Cancelled)
	require.Len(t, sum.Outcomes, 2)
	assert.Equal(t, Opened, sum.Outcomes[0].Disposition)
	assert.Equal(t, Cancelled, sum.Outcomes[1].Disposition)
	assert.Equal(t, "epic", sum.Outcomes[1].Raw)
	assert.Equal(t, []string{"open " + first}, h.rec.list())
	assert.Empty(t, h.q.Pending())

	texts := h.texts()
	assert.NotContains(t, texts, "Error launching: "+second)
	assert.NotContains(t, texts, "All inputs processed.")
}
