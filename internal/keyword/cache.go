// Package keyword implements the persistent keyword cache: a case-insensitive
// alias → target mapping stored as "alias1,alias2=target" lines.
package keyword

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/WowJuicy/QuickLauncher-v2/internal/normalize"
)

var (
	// ErrStoreUnavailable wraps a failed read of the store; the cache is
	// still usable (empty).
	ErrStoreUnavailable = errors.New("keyword store unavailable")
	// ErrStoreLocked is returned when another writer holds the store lock.
	ErrStoreLocked = errors.New("keyword store is locked by another process")

	ErrEmptyAlias    = errors.New("alias is empty")
	ErrEmptyTarget   = errors.New("target is empty")
	ErrAliasHasSpace = errors.New("alias contains a space")
	// ErrAliasHasSeparator rejects text the store format cannot hold:
	// "," or "=" in an alias, or a line break in an alias or target.
	ErrAliasHasSeparator = errors.New("alias or target contains a store separator")
)

// Cache is the process-wide keyword map. All access goes through its
// methods; the map itself is never handed out.
type Cache struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
}

// New returns an empty cache that persists to path.
func New(path string) *Cache {
	return &Cache{path: path, entries: make(map[string]string)}
}

// Load reads the store at path. It always returns a usable cache: if the
// store cannot be read the cache is empty and the returned error (wrapping
// ErrStoreUnavailable) should be surfaced as a warning.
func Load(path string) (*Cache, error) {
	c := New(path)
	entries, err := readStore(path)
	if err != nil {
		return c, fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, path, err)
	}
	c.entries = entries
	return c, nil
}

// Path returns the store location.
func (c *Cache) Path() string {
	return c.path
}

// Len returns the number of aliases.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Lookup returns the target for keyword.
func (c *Cache) Lookup(keyword string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.entries[normalize.Alias(keyword)]
	return t, ok
}

// Merge associates alias with target in memory. It reports whether the
// mapping changed. An alias containing a space carries a free-form argument
// and is rejected with ErrAliasHasSpace. Text that would break a store line
// is rejected with ErrAliasHasSeparator.
func (c *Cache) Merge(alias, target string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mergeLocked(alias, target)
}

func (c *Cache) mergeLocked(alias, target string) (bool, error) {
	alias = strings.TrimSpace(alias)
	target = strings.TrimSpace(target)
	switch {
	case alias == "":
		return false, ErrEmptyAlias
	case target == "":
		return false, ErrEmptyTarget
	case strings.Contains(alias, " "):
		return false, fmt.Errorf("%w: %q", ErrAliasHasSpace, alias)
	case strings.ContainsAny(alias, ",=\r\n"):
		return false, fmt.Errorf("%w: %q", ErrAliasHasSeparator, alias)
	case strings.ContainsAny(target, "\r\n"):
		return false, fmt.Errorf("%w: %q", ErrAliasHasSeparator, target)
	}
	key := normalize.Fold(alias)
	if prev, ok := c.entries[key]; ok && prev == target {
		return false, nil
	}
	c.entries[key] = target
	return true, nil
}

// Remove drops alias. It reports whether it was present.
func (c *Cache) Remove(alias string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(alias)
}

func (c *Cache) removeLocked(alias string) bool {
	key := normalize.Alias(alias)
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Persist writes the whole mapping to the store, grouped by target.
func (c *Cache) Persist() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistLocked()
}

func (c *Cache) persistLocked() error {
	return writeStore(c.path, Group(c.entries))
}

// MergeAndPersist merges alias → target and rewrites the store while
// holding the write lock. Nothing is written when the association already
// exists. On a write failure the in-memory change is kept and the error is
// returned; the next successful write reconciles the store.
func (c *Cache) MergeAndPersist(alias, target string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed, err := c.mergeLocked(alias, target)
	if err != nil || !changed {
		return changed, err
	}
	return true, c.persistLocked()
}

// RemoveAndPersist removes alias and rewrites the store.
func (c *Cache) RemoveAndPersist(alias string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.removeLocked(alias) {
		return false, nil
	}
	return true, c.persistLocked()
}

// RemoveAllAndPersist removes every alias in aliases and rewrites the store
// once. It returns the aliases that were present, in argument order.
// Nothing is written when none were.
func (c *Cache) RemoveAllAndPersist(aliases ...string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var removed []string
	for _, a := range aliases {
		if c.removeLocked(a) {
			removed = append(removed, a)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, c.persistLocked()
}

// Records returns a grouped snapshot of the mapping.
func (c *Cache) Records() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Group(c.entries)
}

// AliasesOf returns the sorted aliases sharing target.
func (c *Cache) AliasesOf(target string) []string {
	for _, r := range c.Records() {
		if r.Target == target {
			return r.Aliases
		}
	}
	return nil
}
