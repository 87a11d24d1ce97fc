package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/WowJuicy/QuickLauncher-v2/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Search every drive for executables matching a name",
	Long: `Crawl the configured roots for executables whose file or folder name
contains the given name, and print them. Nothing is launched or remembered.

Example:
  qlaunch search halo
  qlaunch search red dead --roots D:\,E:\`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	req, err := search.NewRequest(strings.Join(args, " "))
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := a.coord.Search(ctx, req)
	if err != nil && !res.Cancelled {
		return fmt.Errorf("search failed: %w", err)
	}
	if res.Cancelled {
		a.em.Info(context.WithoutCancel(ctx), "Search cancelled.")
	}

	printSection(fmt.Sprintf("Results for %q", req.Original))
	if len(res.Candidates) == 0 {
		printMiss("", fmt.Sprintf("No executables found for %s", req.Original))
	}
	for _, p := range res.Candidates {
		if aliases := a.cache.AliasesOf(p); len(aliases) > 0 {
			printOK(strings.Join(aliases, ","), p)
			continue
		}
		printInfo("", p)
	}
	fmt.Printf("\n  %d candidate(s), %d file(s) scanned in %s\n",
		len(res.Candidates), res.Files, res.Elapsed.Round(time.Millisecond))
	return nil
}
