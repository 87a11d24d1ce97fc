package queue

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/WowJuicy/QuickLauncher-v2/internal/normalize"
)

// Kind says how a sub-command is handled.
type Kind int

const (
	// Queued sub-commands need a filesystem search.
	Queued Kind = iota
	// Immediate sub-commands resolve from the keyword cache.
	Immediate
)

func (k Kind) String() string {
	if k == Immediate {
		return "immediate"
	}
	return "queued"
}

// SubCommand is one part of an input line.
type SubCommand struct {
	Raw      string
	Keyword  string
	Argument string
	// Target is the cached target of an Immediate sub-command.
	Target string
	Kind   Kind
}

var separator = regexp.MustCompile(`\s{2,}`)

// Split breaks an input line into sub-commands. Only runs of two or more
// whitespace characters separate, and only when the line contains a double
// space; a single space never splits.
func Split(input string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if !strings.Contains(input, "  ") {
		return []string{input}
	}
	var out []string
	for _, part := range separator.Split(input, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Parse splits raw into a case-folded keyword (first token) and the
// trimmed remainder.
func Parse(raw string) SubCommand {
	raw = strings.TrimSpace(raw)
	sc := SubCommand{Raw: raw}
	if i := strings.IndexFunc(raw, unicode.IsSpace); i >= 0 {
		sc.Keyword = normalize.Fold(raw[:i])
		sc.Argument = strings.TrimSpace(raw[i:])
	} else {
		sc.Keyword = normalize.Fold(raw)
	}
	return sc
}
