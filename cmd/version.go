package cmd

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/WowJuicy/QuickLauncher-v2/internal/config"
	"github.com/WowJuicy/QuickLauncher-v2/internal/keyword"
	"github.com/WowJuicy/QuickLauncher-v2/internal/launch"
	"github.com/WowJuicy/QuickLauncher-v2/internal/search"
)

// Set with -ldflags "-X github.com/WowJuicy/QuickLauncher-v2/cmd.version=...".
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the qlaunch build and where it keeps its state",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	// A missing config is normal here; defaults are reported instead.
	cfg, err := config.LoadOrDefault(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot load config: %w", err)
	}
	keywords := -1
	if cache, err := keyword.Load(cfg.StorePath); err == nil {
		keywords = cache.Len()
	}
	writeVersion(os.Stdout, path, cfg, keywords)
	return nil
}

// writeVersion prints build details and launcher state. A negative keyword
// count means the store could not be read.
func writeVersion(w io.Writer, cfgPath string, cfg *config.Config, keywords int) {
	fmt.Fprintf(w, "qlaunch %s (commit %s, built %s)\n",
		version, cmp.Or(commit, "n/a"), cmp.Or(buildDate, "n/a"))
	fmt.Fprintf(w, "  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	store := cfg.StorePath
	if keywords < 0 {
		store += " (not created yet)"
	} else {
		store += fmt.Sprintf(" (%d keywords)", keywords)
	}
	roots := "all volumes"
	if len(cfg.Roots) > 0 {
		roots = fmt.Sprintf("%d configured", len(cfg.Roots))
	}
	fmt.Fprintf(w, "  config:   %s\n", cfgPath)
	fmt.Fprintf(w, "  store:    %s\n", store)
	fmt.Fprintf(w, "  roots:    %s\n", roots)
	fmt.Fprintf(w, "  workers:  %d\n", search.EffectiveSize(cfg.Workers))
	fmt.Fprintf(w, "  opener:   %s\n", launch.OpenerCommand())
}
