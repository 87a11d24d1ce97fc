package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WowJuicy/QuickLauncher-v2/internal/config"
	"github.com/WowJuicy/QuickLauncher-v2/internal/keyword"
)

// exampleKeywords are merged into the store by 'qlaunch init --examples'.
var exampleKeywords = []struct{ alias, target string }{
	{"g", "https://www.google.com/search?q={}"},
	{"google", "https://www.google.com/search?q={}"},
	{"yt", "https://www.youtube.com/results?search_query={}"},
	{"youtube", "https://www.youtube.com/results?search_query={}"},
	{"mcwiki", "https://minecraft.wiki/w/{}"},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the qlaunch config and keyword store",
	Long: `Initialize ~/.qlaunch/ (or $QLAUNCH_HOME) with a default config.yaml and an
empty keywords.txt. Existing files are left untouched.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var flagInitExamples bool

func init() {
	initCmd.Flags().BoolVar(&flagInitExamples, "examples", false, "Add a few example URL keywords (g, yt, mcwiki)")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.qlaunch directory ───────────────────────────────────────
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfgPath, err := configPath()
	if err != nil {
		return err
	}

	// ── 2. Create ~/.qlaunch/ if it doesn't exist ─────────────────────────────
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("qlaunch directory ready: %s", dir))

	// ── 3. Write config.yaml if missing ───────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg, cfgPath); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 4. Load final config (flags and env applied) ──────────────────────────
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// ── 5. Create the keyword store ───────────────────────────────────────────
	cache, err := keyword.Load(cfg.StorePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := cache.Persist(); err != nil {
			return fmt.Errorf("cannot create keyword store: %w", err)
		}
		printOK("", fmt.Sprintf("Keyword store created: %s", cfg.StorePath))
	case err != nil:
		return err
	default:
		printSkip("", fmt.Sprintf("Keyword store already exists: %s (%d aliases)", cfg.StorePath, cache.Len()))
	}

	// ── 6. Example keywords ───────────────────────────────────────────────────
	if flagInitExamples {
		for _, ex := range exampleKeywords {
			changed, err := cache.MergeAndPersist(ex.alias, ex.target)
			switch {
			case err != nil:
				printErr(ex.alias, err.Error())
			case changed:
				printOK(ex.alias, "→ "+ex.target)
			default:
				printSkip(ex.alias, "already present")
			}
		}
	}

	fmt.Println("\n✓  qlaunch init complete. Run 'qlaunch doctor' to verify your environment.")
	return nil
}
