package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/WowJuicy/QuickLauncher-v2/internal/status"
)

// Output icons used by every command:
//   ✓  success / healthy
//   ✗  error / failure          (written to stderr)
//   ⚠  warning
//   ○  skipped / not applicable
//   -  not found / missing
//   ~  neutral info / state change
//   …  search progress          (rewritten in place)

// printSection prints a top-level section header, e.g. "=== Keywords ===".
func printSection(title string) {
	fmt.Printf("\n=== %s ===\n", title)
}

// printLine writes "  <icon>  msg", or "  <icon>  [name] msg" when name is set.
func printLine(w io.Writer, icon, name, msg string) {
	if name != "" {
		msg = "[" + name + "] " + msg
	}
	fmt.Fprintf(w, "  %s  %s\n", icon, msg)
}

func printOK(name, msg string)   { printLine(os.Stdout, "✓", name, msg) }
func printErr(name, msg string)  { printLine(os.Stderr, "✗", name, msg) }
func printWarn(name, msg string) { printLine(os.Stdout, "⚠", name, msg) }
func printSkip(name, msg string) { printLine(os.Stdout, "○", name, msg) }
func printMiss(name, msg string) { printLine(os.Stdout, "-", name, msg) }
func printInfo(name, msg string) { printLine(os.Stdout, "~", name, msg) }

// progressShown is set while a progress line occupies the cursor line.
// Only the status printer goroutine touches it.
var progressShown bool

// endProgress clears an open progress line.
func endProgress() {
	if progressShown {
		fmt.Print("\r\033[K")
		progressShown = false
	}
}

// printStatus renders one status message. Progress lines overwrite each
// other; any other message clears them first.
func printStatus(m status.Message) {
	endProgress()
	switch m.Level {
	case status.Progress:
		fmt.Printf("  …  %s", m.Text)
		progressShown = true
	case status.Warn:
		printWarn("", m.Text)
	case status.Error:
		printErr("", m.Text)
	default:
		printInfo("", m.Text)
	}
}
