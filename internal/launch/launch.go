// Package launch opens targets with the operating system's default handler
// and checks whether a program is already running.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrEmptyTarget is returned by Open for a blank target.
var ErrEmptyTarget = errors.New("empty launch target")

// Opener hands a target (file path or URL) to the system.
type Opener interface {
	Open(ctx context.Context, target string) error
}

// ProcessChecker reports whether a process with the given image name
// ("halo.exe") is running. Failures report false.
type ProcessChecker interface {
	Running(ctx context.Context, image string) bool
}

// ImageName returns the process image name a file target starts as.
func ImageName(target string) string {
	return filepath.Base(target)
}

// SystemOpener opens targets with the platform's default handler.
type SystemOpener struct{}

// Open starts the handler for target and waits for it to hand off. File
// targets run from their own directory.
func (SystemOpener) Open(ctx context.Context, target string) error {
	if strings.TrimSpace(target) == "" {
		return ErrEmptyTarget
	}
	name, args := openArgs(target)
	cmd := exec.CommandContext(ctx, name, args...)
	if !isWebURL(target) {
		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			cmd.Dir = filepath.Dir(target)
		}
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("open %s: %w: %s", target, err, msg)
		}
		return fmt.Errorf("open %s: %w", target, err)
	}
	return nil
}

func isWebURL(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// SystemProcessChecker queries the process table of the local machine.
type SystemProcessChecker struct{}

func (SystemProcessChecker) Running(ctx context.Context, image string) bool {
	if strings.TrimSpace(image) == "" {
		return false
	}
	return processRunning(ctx, image)
}

// OpenerCommand names the program SystemOpener runs.
func OpenerCommand() string {
	name, _ := openArgs("")
	return name
}
