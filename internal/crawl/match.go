package crawl

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/WowJuicy/QuickLauncher-v2/internal/normalize"
)

// discordMarker switches matching to shortcuts only: Discord installs ship
// Update.exe helpers next to the real app and those must not win.
const discordMarker = "discord"

// Query holds the two folded search terms of one request.
type Query struct {
	// Original keeps inner whitespace ("red dead").
	Original string
	// Normalized has no whitespace ("reddead").
	Normalized string
}

// NewQuery derives both terms from raw user input.
func NewQuery(input string) Query {
	o, n := normalize.SearchTerms(input)
	return Query{Original: o, Normalized: n}
}

// Empty reports whether the query has no usable term.
func (q Query) Empty() bool {
	return q.Original == "" && q.Normalized == ""
}

func (q Query) matches(s string) bool {
	return normalize.ContainsAny(s, q.Original, q.Normalized)
}

// match classifies one file. It returns the path to record, which may differ
// from path when a storefront launch helper is preferred.
func (c *Crawler) match(path string, q Query) (string, bool) {
	name := normalize.Fold(filepath.Base(path))
	parent := filepath.Dir(path)
	parentName := normalize.Fold(filepath.Base(parent))

	discord := strings.Contains(q.Original, discordMarker) ||
		strings.Contains(q.Normalized, discordMarker) ||
		strings.Contains(parentName, discordMarker)
	if discord && !hasExt(name, c.opts.ShortcutExtensions) {
		return "", false
	}

	if c.underStorefront(parent) {
		if !q.matches(parentName) {
			return "", false
		}
		if c.opts.LaunchHelper != "" {
			helper := filepath.Join(parent, c.opts.LaunchHelper)
			if info, err := os.Stat(helper); err == nil && !info.IsDir() {
				return helper, true
			}
		}
		return path, true
	}

	if !hasExt(name, c.opts.Extensions) {
		return "", false
	}
	if q.matches(name) || q.matches(parentName) {
		return path, true
	}
	return "", false
}

func (c *Crawler) underStorefront(dir string) bool {
	if len(c.opts.StorefrontDirs) == 0 {
		return false
	}
	lower := normalize.Fold(dir)
	for _, marker := range c.opts.StorefrontDirs {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
