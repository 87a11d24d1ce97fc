// Package resolve classifies a keyword against the keyword cache: ready to
// launch, stale (self-healed), or in need of a filesystem search.
package resolve

import (
	"os"
	"regexp"
)

// Outcome is the classification of one resolution attempt.
type Outcome int

const (
	// Miss means no cache entry exists; a search is required.
	Miss Outcome = iota
	// CachedHit means the target is a URL or an existing path.
	CachedHit
	// StaleEntry means the cached path vanished; the entry was removed and
	// a search is required.
	StaleEntry
)

func (o Outcome) String() string {
	switch o {
	case CachedHit:
		return "cached"
	case StaleEntry:
		return "stale"
	default:
		return "miss"
	}
}

// NeedsSearch reports whether the outcome requires a crawl.
func (o Outcome) NeedsSearch() bool {
	return o != CachedHit
}

// Cache is the subset of the keyword cache the resolver needs.
type Cache interface {
	Lookup(keyword string) (string, bool)
	RemoveAndPersist(alias string) (bool, error)
}

// Result carries the outcome and, for hits and stale entries, the target.
type Result struct {
	Keyword string
	Target  string
	Outcome Outcome
	// PersistErr is set when a stale entry was removed in memory but the
	// store could not be rewritten.
	PersistErr error
}

// urlScheme requires at least two scheme characters so "C:\..." is a path.
var urlScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]+://`)

// IsURL reports whether target starts with a recognized URL scheme.
func IsURL(target string) bool {
	return urlScheme.MatchString(target)
}

// Exists reports whether a filesystem path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Resolve classifies keyword. URL targets are never validated; filesystem
// targets must exist or the entry is removed and persisted.
func Resolve(c Cache, keyword string) Result {
	return resolveWith(c, keyword, Exists)
}

func resolveWith(c Cache, keyword string, exists func(string) bool) Result {
	res := Result{Keyword: keyword}
	target, ok := c.Lookup(keyword)
	if !ok {
		return res
	}
	res.Target = target
	if IsURL(target) || exists(target) {
		res.Outcome = CachedHit
		return res
	}
	res.Outcome = StaleEntry
	_, res.PersistErr = c.RemoveAndPersist(keyword)
	return res
}
