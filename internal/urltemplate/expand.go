// Package urltemplate expands keyword targets that contain a "{}"
// placeholder into concrete URLs.
package urltemplate

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholder marks where the argument goes in a target template.
const Placeholder = "{}"

// DefaultFallbackSearchURL receives the query when a wiki page is missing.
const DefaultFallbackSearchURL = "https://www.google.com/search?q="

var (
	wikiRe       = regexp.MustCompile(`(?i)wiki|fandom`)
	wikiDomainRe = regexp.MustCompile(`https?://(?:[\w-]+\.)*([\w-]+)\.(?:wiki|fandom)(?:\.\w+)?(?:/\{\}|/)?`)
	trailingRe   = regexp.MustCompile(`/+$`)
)

// Prober reports whether a page exists.
type Prober interface {
	Available(ctx context.Context, rawURL string) bool
}

// Expander turns a template and an argument into a URL. With a nil Prober,
// wiki pages are assumed to exist.
type Expander struct {
	Prober            Prober
	FallbackSearchURL string
}

// Expand returns the concrete target for template and arg.
func (e *Expander) Expand(ctx context.Context, template, arg string) string {
	wiki := IsWiki(template)
	target := template
	if strings.Contains(template, Placeholder) {
		urlArg := arg
		if wiki {
			urlArg = CapitalizeWords(strings.ReplaceAll(arg, " ", "_"))
		}
		if urlArg == "" {
			target = withoutArgument(template)
		} else {
			target = strings.ReplaceAll(template, Placeholder, Encode(urlArg))
		}
	}

	if wiki && arg != "" && e.Prober != nil && !e.Prober.Available(ctx, target) {
		base := e.FallbackSearchURL
		if base == "" {
			base = DefaultFallbackSearchURL
		}
		target = base + Encode(WikiName(template)+" wiki "+arg)
	}
	return target
}

// withoutArgument handles a template used without an argument: search-like
// URLs fall back to their site root, others drop the placeholder.
func withoutArgument(template string) string {
	stripped := strings.ReplaceAll(template, Placeholder, "")
	u, err := url.Parse(stripped)
	if err == nil && u.Scheme != "" && u.Host != "" {
		if strings.Contains(u.Path, "/search") || u.RawQuery != "" || u.ForceQuery {
			return u.Scheme + "://" + u.Hostname()
		}
	}
	return trailingRe.ReplaceAllString(stripped, "")
}

// IsWiki reports whether template points at a wiki or fandom site.
func IsWiki(template string) bool {
	return wikiRe.MatchString(template)
}

// WikiName extracts the wiki's sub-domain ("zelda" in
// https://zelda.fandom.com/{}), or "wiki" when there is none.
func WikiName(template string) string {
	if m := wikiDomainRe.FindStringSubmatch(template); m != nil {
		return m[1]
	}
	return "wiki"
}

// CapitalizeWords upper-cases the first letter of every "_"-separated word.
func CapitalizeWords(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, "_")
}

// Encode escapes s for use inside a URL, with spaces as %20.
func Encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
