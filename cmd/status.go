package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WowJuicy/QuickLauncher-v2/internal/resolve"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check every remembered target",
	Long: `List keyword records grouped by health: programs that exist, URL targets,
and programs whose file is gone. Use --prune to remove the missing ones now
instead of on their next use.`,
	RunE: runStatus,
}

var flagStatusPrune bool

func init() {
	statusCmd.Flags().BoolVar(&flagStatusPrune, "prune", false, "Remove aliases whose program no longer exists")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cache, err := loadCache()
	if err != nil {
		return err
	}

	fmt.Println("=== Keyword Health ===")

	var healthy, urls, stale []string
	var staleAliases []string
	for _, r := range cache.Records() {
		name := strings.Join(r.Aliases, ",")
		switch {
		case resolve.IsURL(r.Target):
			urls = append(urls, fmt.Sprintf("  ~  [%s] %s", name, r.Target))
		case resolve.Exists(r.Target):
			healthy = append(healthy, fmt.Sprintf("  ✓  [%s] %s", name, r.Target))
		default:
			stale = append(stale, fmt.Sprintf("  ✗  [%s] missing: %s", name, r.Target))
			staleAliases = append(staleAliases, r.Aliases...)
		}
	}

	printGroup := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Printf("\n● %s\n", title)
		for _, l := range lines {
			fmt.Println(l)
		}
	}
	printGroup("Programs:", healthy)
	printGroup("URLs:", urls)
	printGroup("Missing (searched again on next use):", stale)

	fmt.Printf("\n%d healthy, %d url, %d missing\n", len(healthy), len(urls), len(stale))

	if !flagStatusPrune || len(staleAliases) == 0 {
		return nil
	}
	removed, err := cache.RemoveAllAndPersist(staleAliases...)
	if err != nil {
		return fmt.Errorf("cannot prune missing programs: %w", err)
	}
	fmt.Println()
	for _, alias := range removed {
		printOK(alias, "pruned")
	}
	return nil
}
