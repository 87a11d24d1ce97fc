package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WowJuicy/QuickLauncher-v2/internal/launch"
	"github.com/WowJuicy/QuickLauncher-v2/internal/normalize"
	"github.com/WowJuicy/QuickLauncher-v2/internal/resolve"
	"github.com/WowJuicy/QuickLauncher-v2/internal/urltemplate"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <keyword>",
	Short: "Show what a keyword resolves to",
	Long: `Display the record a keyword belongs to, what kind of target it has,
and whether that target is usable right now. Nothing is launched and stale
entries are not removed.

Example:
  qlaunch inspect steam
  qlaunch inspect wiki`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cache, err := loadStore(cfg.StorePath)
	if err != nil {
		return err
	}
	alias := normalize.Alias(args[0])
	target, ok := cache.Lookup(alias)
	if !ok {
		printMiss(alias, "not a known keyword; 'qlaunch run "+args[0]+"' will search for it")
		return nil
	}

	printSection(alias)
	fmt.Printf("  Aliases:  %s\n", strings.Join(cache.AliasesOf(target), ", "))
	fmt.Printf("  Target:   %s\n", target)

	if resolve.IsURL(target) {
		fmt.Printf("  Kind:     %s\n", urlKind(target, cfg.ProbePages))
		printOK("", "URL targets are always opened as-is")
		return nil
	}

	fmt.Println("  Kind:     program")
	if !resolve.Exists(target) {
		printErr("", "target no longer exists; it will be removed and searched for on next use")
		return nil
	}
	printOK("", "target exists")
	image := launch.ImageName(target)
	if (launch.SystemProcessChecker{}).Running(cmd.Context(), image) {
		printInfo("", image+" is running")
	} else {
		printSkip("", image+" is not running")
	}
	return nil
}

// urlKind describes a URL target. Wiki pages are only probed when
// probe_pages is on.
func urlKind(target string, probe bool) string {
	kind := "URL"
	if strings.Contains(target, urltemplate.Placeholder) {
		kind = "URL template"
	}
	if !urltemplate.IsWiki(target) {
		return kind
	}
	if probe {
		return kind + fmt.Sprintf(" (wiki %q, pages are probed)", urltemplate.WikiName(target))
	}
	return kind + fmt.Sprintf(" (wiki %q, not probed)", urltemplate.WikiName(target))
}
