package crawl

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// recycleMarker excludes every recycle-bin flavour regardless of config.
const recycleMarker = "recycle"

// excluder decides which directory subtrees are skipped.
type excluder struct {
	names    map[string]struct{}
	patterns []string
}

func newExcluder(entries []string) *excluder {
	e := &excluder{names: make(map[string]struct{})}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		lower := strings.ToLower(entry)
		e.names[lower] = struct{}{}
		if strings.ContainsAny(entry, "*?[{") {
			e.patterns = append(e.patterns, lower)
		}
	}
	return e
}

// skip reports whether a directory named name must not be descended into.
func (e *excluder) skip(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, recycleMarker) {
		return true
	}
	if _, ok := e.names[lower]; ok {
		return true
	}
	for _, p := range e.patterns {
		matched, err := doublestar.Match(p, lower)
		if err != nil {
			// A bad pattern must not break the crawl.
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
