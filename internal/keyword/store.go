package keyword

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/WowJuicy/QuickLauncher-v2/internal/normalize"
)

// lockTimeout bounds how long Persist waits for another writer.
var lockTimeout = 5 * time.Second

// Record groups every alias that maps to one target.
type Record struct {
	Aliases []string
	Target  string
}

// Line renders r in store syntax: "a1,a2=target".
func (r Record) Line() string {
	return strings.Join(r.Aliases, ",") + "=" + r.Target
}

// Parse reads store lines of the form "alias1,alias2,...=target".
//
// Parsing rules:
//   - Blank lines and lines without '=' are skipped.
//   - Aliases are trimmed and case-folded; empty aliases are ignored.
//   - The target is trimmed and taken as-is.
//   - A later line overwrites an earlier one for the same alias.
func Parse(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		i := strings.Index(line, "=")
		if i < 0 {
			continue
		}
		target := strings.TrimSpace(line[i+1:])
		for _, a := range strings.Split(line[:i], ",") {
			alias := normalize.Alias(a)
			if alias == "" {
				continue
			}
			out[alias] = target
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Group builds the inverse index target → sorted aliases. Records are
// ordered by target so the written store is deterministic.
func Group(entries map[string]string) []Record {
	byTarget := make(map[string][]string)
	for alias, target := range entries {
		byTarget[target] = append(byTarget[target], alias)
	}
	out := make([]Record, 0, len(byTarget))
	for target, aliases := range byTarget {
		sort.Strings(aliases)
		out = append(out, Record{Aliases: aliases, Target: target})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

// Format writes one line per record.
func Format(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := bw.WriteString(r.Line()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// readStore parses the store at path.
func readStore(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// writeStore replaces the store at path with records. The new content goes
// to a temp file in the same directory which is then renamed over the store,
// all while holding path+".lock" so two processes never interleave.
func writeStore(path string, records []Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create store dir %s: %w", dir, err)
	}

	unlock, err := acquireStoreLock(path+".lock", lockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create temp store: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if err := Format(tmp, records); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("cannot write store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("cannot sync store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("cannot replace store %s: %w", path, err)
	}
	return nil
}

// acquireStoreLock obtains the inter-process store lock, polling until
// timeout.
func acquireStoreLock(lockPath string, timeout time.Duration) (func(), error) {
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire store lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("%w (lock: %s)", ErrStoreLocked, lockPath)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// CheckLock reports whether the store at path could be written right now:
// nil when its lock is free, ErrStoreLocked when another process holds it.
func CheckLock(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create store dir: %w", err)
	}
	unlock, err := acquireStoreLock(path+".lock", 0)
	if err != nil {
		return err
	}
	unlock()
	return nil
}
