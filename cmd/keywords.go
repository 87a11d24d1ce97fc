package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/WowJuicy/QuickLauncher-v2/internal/importer"
	"github.com/WowJuicy/QuickLauncher-v2/internal/keyword"
)

var keywordsCmd = &cobra.Command{
	Use:     "keywords",
	Aliases: []string{"kw"},
	Short:   "List and edit remembered keywords",
	Long: `Manage ~/.qlaunch/keywords.txt. Each line maps one or more aliases to a
target: a program path, or a URL where {} is replaced by the argument.

  steam=C:\Program Files (x86)\Steam\steam.exe
  wiki=https://zelda.fandom.com/wiki/{}
  yt,youtube=https://www.youtube.com/results?search_query={}`,
	RunE: runKeywordsList,
}

var keywordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every keyword record",
	Args:  cobra.NoArgs,
	RunE:  runKeywordsList,
}

var keywordsAddCmd = &cobra.Command{
	Use:   "add <alias> <target>",
	Short: "Map an alias to a program path or URL template",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runKeywordsAdd,
}

var keywordsRmCmd = &cobra.Command{
	Use:     "rm <alias>...",
	Aliases: []string{"remove"},
	Short:   "Forget one or more aliases",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runKeywordsRm,
}

var keywordsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge keywords from another keywords.txt",
	Long: `Merge every alias from <file> into the local store.

Aliases already mapped to the same target are skipped. Aliases mapped to a
different target are reported as conflicts and keep the local target unless
--overwrite is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runKeywordsImport,
}

var (
	flagImportOverwrite bool
	flagImportExclude   []string
)

func init() {
	keywordsImportCmd.Flags().BoolVar(&flagImportOverwrite, "overwrite", false, "Replace conflicting local targets")
	keywordsImportCmd.Flags().StringSliceVar(&flagImportExclude, "exclude", nil, "Glob patterns of aliases to ignore")
	keywordsCmd.AddCommand(keywordsListCmd, keywordsAddCmd, keywordsRmCmd, keywordsImportCmd)
	rootCmd.AddCommand(keywordsCmd)
}

// loadCache opens the configured keyword store. A missing store is not an
// error: the cache starts empty and is created on the first write.
func loadCache() (*keyword.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return loadStore(cfg.StorePath)
}

// loadStore loads the keyword store; a missing store is an empty cache.
func loadStore(path string) (*keyword.Cache, error) {
	cache, err := keyword.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return cache, nil
}

func runKeywordsList(_ *cobra.Command, _ []string) error {
	cache, err := loadCache()
	if err != nil {
		return err
	}
	records := cache.Records()
	if len(records) == 0 {
		printMiss("", fmt.Sprintf("no keywords in %s", cache.Path()))
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALIASES\tTARGET")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\n", strings.Join(r.Aliases, ","), r.Target)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d alias(es), %d target(s) in %s\n", cache.Len(), len(records), cache.Path())
	return nil
}

func runKeywordsAdd(_ *cobra.Command, args []string) error {
	cache, err := loadCache()
	if err != nil {
		return err
	}
	alias := args[0]
	target := strings.Join(args[1:], " ")

	changed, err := cache.MergeAndPersist(alias, target)
	if err != nil {
		return fmt.Errorf("cannot add %q: %w", alias, err)
	}
	if !changed {
		printSkip(alias, "already mapped to "+target)
		return nil
	}
	printOK(alias, "→ "+target)
	return nil
}

func runKeywordsRm(_ *cobra.Command, args []string) error {
	cache, err := loadCache()
	if err != nil {
		return err
	}
	removed, err := cache.RemoveAllAndPersist(args...)
	if err != nil {
		return fmt.Errorf("cannot save keywords: %w", err)
	}
	for _, alias := range args {
		if slices.Contains(removed, alias) {
			printOK(alias, "removed")
		} else {
			printMiss(alias, "not found")
		}
	}
	return nil
}

func runKeywordsImport(_ *cobra.Command, args []string) error {
	cache, err := loadCache()
	if err != nil {
		return err
	}
	r, err := importer.ImportStore(args[0], cache, importer.Options{
		Overwrite: flagImportOverwrite,
		Excludes:  flagImportExclude,
	})
	if err != nil {
		return err
	}

	printSection("Import Keywords")
	printOK("", fmt.Sprintf("%d imported, %d skipped, %d excluded, %d rejected",
		r.Imported, r.Skipped, r.Excluded, r.Rejected))

	// ── Post-import conflict report ────────────────────────────────────────────
	if len(r.Conflicts) > 0 {
		verb := "kept local target"
		if flagImportOverwrite {
			verb = "overwritten"
		}
		fmt.Printf("\n⚠  %d conflict(s) detected during import (%s):\n", len(r.Conflicts), verb)
		for _, c := range r.Conflicts {
			fmt.Printf("     - %s: %s  ← %s\n", c.Alias, c.Existing, c.Incoming)
		}
	}
	return nil
}
