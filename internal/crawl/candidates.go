package crawl

import (
	"sort"
	"sync"
)

// CandidateSet collects matched paths from concurrent crawl tasks.
type CandidateSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewCandidateSet returns an empty set.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{paths: make(map[string]struct{})}
}

// Add inserts path and reports whether it was new.
func (s *CandidateSet) Add(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.paths[path]; ok {
		return false
	}
	s.paths[path] = struct{}{}
	return true
}

// Len returns the number of distinct paths.
func (s *CandidateSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// Sorted returns the paths in lexical order.
func (s *CandidateSet) Sorted() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	s.mu.Unlock()
	sort.Strings(out)
	return out
}
