package search

import (
	"sync"
	"time"
)

// DefaultProgressInterval is the minimum gap between two progress reports.
const DefaultProgressInterval = 500 * time.Millisecond

// progress counts visited files and rate-limits reports. Counter and
// timestamp share one mutex.
type progress struct {
	mu       sync.Mutex
	files    int64
	last     time.Time
	interval time.Duration
	now      func() time.Time
}

func newProgress(interval time.Duration) *progress {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &progress{interval: interval, now: time.Now}
}

// visit records one file and reports whether a progress message is due.
func (p *progress) visit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.files++
	t := p.now()
	if !p.last.IsZero() && t.Sub(p.last) < p.interval {
		return false
	}
	p.last = t
	return true
}

func (p *progress) count() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.files
}
