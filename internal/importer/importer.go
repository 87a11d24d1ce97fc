// Package importer merges keyword records from another store file into the
// local keyword cache, applying exclude filtering and conflict detection.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/WowJuicy/QuickLauncher-v2/internal/keyword"
	"github.com/WowJuicy/QuickLauncher-v2/internal/normalize"
)

// ConflictPair records an alias that already maps to a different target.
type ConflictPair struct {
	Alias    string
	Existing string // target already in the local store
	Incoming string // target found in the imported file
}

// Options controls ImportStore.
type Options struct {
	// Overwrite replaces conflicting targets instead of keeping the local one.
	Overwrite bool
	// Excludes are glob patterns (filepath.Match syntax) matched against
	// each alias; matching aliases are ignored.
	Excludes []string
}

// Result is returned by ImportStore.
type Result struct {
	Conflicts []ConflictPair
	Imported  int // aliases added or overwritten
	Skipped   int // aliases already mapped to the same target
	Excluded  int // aliases matching an exclude pattern
	Rejected  int // aliases the cache refused (e.g. containing spaces)
}

// ImportStore reads the store file at srcPath and merges its aliases into
// dst. The destination store is rewritten once, and only when something
// changed.
func ImportStore(srcPath string, dst *keyword.Cache, opts Options) (*Result, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", srcPath, err)
	}
	defer f.Close()

	incoming, err := keyword.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", srcPath, err)
	}

	aliases := make([]string, 0, len(incoming))
	for a := range incoming {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)

	result := &Result{}
	for _, alias := range aliases {
		target := incoming[alias]
		if matchesExclude(alias, opts.Excludes) {
			result.Excluded++
			continue
		}

		if existing, ok := dst.Lookup(alias); ok {
			if existing == target {
				// Same target already stored.
				result.Skipped++
				continue
			}
			result.Conflicts = append(result.Conflicts, ConflictPair{
				Alias:    normalize.Alias(alias),
				Existing: existing,
				Incoming: target,
			})
			if !opts.Overwrite {
				continue
			}
		}

		if _, err := dst.Merge(alias, target); err != nil {
			if errors.Is(err, keyword.ErrAliasHasSpace) ||
				errors.Is(err, keyword.ErrAliasHasSeparator) ||
				errors.Is(err, keyword.ErrEmptyAlias) ||
				errors.Is(err, keyword.ErrEmptyTarget) {
				result.Rejected++
				continue
			}
			return result, err
		}
		result.Imported++
	}

	if result.Imported == 0 {
		return result, nil
	}
	if err := dst.Persist(); err != nil {
		return result, fmt.Errorf("cannot save %s: %w", dst.Path(), err)
	}
	return result, nil
}

// matchesExclude reports whether alias matches any of the given glob patterns.
func matchesExclude(alias string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, alias); matched {
			return true
		}
	}
	return false
}
