package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/WowJuicy/QuickLauncher-v2/internal/config"
	"github.com/WowJuicy/QuickLauncher-v2/internal/keyword"
	"github.com/WowJuicy/QuickLauncher-v2/internal/launch"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that qlaunch's config, keyword store, search roots and system tools
are usable. Run this command when something seems wrong, or before filing a
bug report.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("qlaunch doctor")
	fmt.Println()

	// ── Check 1: config file ──────────────────────────────────────────────────
	fmt.Println("[ config.yaml ]")
	cfgPath, err := configPath()
	if err != nil {
		failD("cannot determine config path: %v", err)
	}
	cfg, loadErr := config.Load(cfgPath)
	switch {
	case errors.Is(loadErr, os.ErrNotExist):
		printWarn("", fmt.Sprintf("%s not found — using defaults (run 'qlaunch init')", cfgPath))
		cfg, loadErr = config.DefaultConfig()
		if loadErr != nil {
			failD("cannot build default config: %v", loadErr)
		}
	case loadErr != nil:
		failD("cannot parse config: %v", loadErr)
	default:
		printOK("", fmt.Sprintf("valid YAML: %s", cfgPath))
	}
	fmt.Println()

	if cfg == nil {
		return fmt.Errorf("config is unusable")
	}

	// ── Check 2: keyword store ────────────────────────────────────────────────
	fmt.Println("[ Keyword store ]")
	cache, err := keyword.Load(cfg.StorePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		printWarn("", fmt.Sprintf("%s not found — it is created on first launch", cfg.StorePath))
	case err != nil:
		failD("cannot read store: %v", err)
	default:
		printOK("", fmt.Sprintf("%d alias(es), %d target(s): %s", cache.Len(), len(cache.Records()), cfg.StorePath))
	}
	if err := keyword.CheckLock(cfg.StorePath); err != nil {
		failD("store is not writable: %v", err)
	} else {
		printOK("", "store lock is free")
	}
	fmt.Println()

	// ── Check 3: search roots ─────────────────────────────────────────────────
	fmt.Println("[ Search roots ]")
	roots := cfg.EffectiveRoots()
	if len(roots) == 0 {
		failD("no roots to search")
	}
	for _, root := range roots {
		if _, err := os.ReadDir(root); err != nil {
			printWarn(root, fmt.Sprintf("not readable, it will be skipped: %v", err))
			continue
		}
		var found []string
		for _, rel := range cfg.LauncherDirs {
			dir := filepath.Join(root, filepath.FromSlash(rel))
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				found = append(found, rel)
			}
		}
		if len(found) == 0 {
			printOK(root, "readable")
		} else {
			printOK(root, fmt.Sprintf("readable, launcher dirs: %v", found))
		}
	}
	fmt.Println()

	// ── Check 4: system tools ─────────────────────────────────────────────────
	fmt.Println("[ System tools ]")
	opener := launch.OpenerCommand()
	if p, err := exec.LookPath(opener); err != nil {
		failD("%s not found on PATH — targets cannot be opened", opener)
	} else {
		printOK("", fmt.Sprintf("opener: %s", p))
	}
	if runtime.GOOS != "windows" {
		if p, err := exec.LookPath("pgrep"); err != nil {
			printWarn("", "pgrep not found — already-running checks are disabled")
		} else {
			printOK("", fmt.Sprintf("process check: %s", p))
		}
	}
	fmt.Println()

	if !allOK {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Println("✓  All checks passed.")
	return nil
}
