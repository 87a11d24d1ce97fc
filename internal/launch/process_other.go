//go:build !windows

package launch

import (
	"context"
	"os/exec"
)

// processRunning asks pgrep for an exact process-name match. Exit status 1
// (no match) and missing pgrep both read as not running.
func processRunning(ctx context.Context, image string) bool {
	return exec.CommandContext(ctx, "pgrep", "-x", image).Run() == nil
}
