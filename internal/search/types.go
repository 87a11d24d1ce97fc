package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/WowJuicy/QuickLauncher-v2/internal/crawl"
	"github.com/WowJuicy/QuickLauncher-v2/internal/normalize"
)

// ErrInvalidName is returned for input that is empty once illegal file-name
// characters and whitespace are removed.
var ErrInvalidName = errors.New("invalid name")

// Request is one search for an executable by name.
type Request struct {
	ID string
	// Input is the name as the user typed it.
	Input string
	// Original is folded and stripped of illegal characters.
	Original string
	// Normalized is Original without whitespace.
	Normalized string
}

// NewRequest derives a Request from user input.
func NewRequest(input string) (Request, error) {
	original, normalized := normalize.SearchTerms(input)
	if normalized == "" {
		return Request{}, fmt.Errorf("%w: %q", ErrInvalidName, input)
	}
	return Request{
		ID:         uuid.NewString(),
		Input:      input,
		Original:   original,
		Normalized: normalized,
	}, nil
}

func (r Request) query() crawl.Query {
	return crawl.Query{Original: r.Original, Normalized: r.Normalized}
}

// Result is the outcome of one Search.
type Result struct {
	Request Request
	// Candidates are absolute, deduplicated and sorted.
	Candidates []string
	// Cancelled is set when the search ended before every root was crawled.
	Cancelled bool
	// Files counts the files visited.
	Files   int64
	Elapsed time.Duration
}
