package crawl

import (
	"path/filepath"
	"strings"
)

// Options configures what a crawl visits and what counts as a match.
type Options struct {
	// LauncherDirs are root-relative directories walked before the rest of
	// the root (e.g. "Steam/steamapps/common").
	LauncherDirs []string
	// ExcludedDirs are directory names (case-insensitive) or doublestar
	// patterns matched against the name; matching subtrees are skipped.
	ExcludedDirs []string
	// Extensions are the executable-like file extensions, with the dot.
	Extensions []string
	// ShortcutExtensions are the only extensions eligible under the
	// discord rule.
	ShortcutExtensions []string
	// StorefrontDirs mark per-game storefront folders (e.g. "XboxGames").
	StorefrontDirs []string
	// LaunchHelper is the storefront helper binary, relative to the
	// per-game folder (e.g. "Content/gamelaunchhelper.exe").
	LaunchHelper string
}

// DefaultOptions mirrors the defaults of a Windows gaming machine.
func DefaultOptions() Options {
	return Options{
		LauncherDirs: []string{
			"Program Files",
			"Program Files (x86)",
			"Steam/steamapps/common",
			"Epic Games",
			"XboxGames",
			"Ubisoft/Ubisoft Game Launcher/games",
			"Games",
		},
		ExcludedDirs: []string{
			"Windows",
			"ProgramData",
			"System Volume Information",
			"$Recycle.Bin",
			"Recycle",
			"Windows Defender Advanced Threat Protection",
			"WindowsApps",
			"PerfLogs",
			"Voiceover",
			"inetpub",
			"OneDriveTemp",
		},
		Extensions:         []string{".exe", ".lnk", ".bat"},
		ShortcutExtensions: []string{".lnk"},
		StorefrontDirs:     []string{"XboxGames"},
		LaunchHelper:       "Content/gamelaunchhelper.exe",
	}
}

// normalized lower-cases extension and marker lists once per crawler.
func (o Options) normalized() Options {
	lower := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	o.Extensions = lower(o.Extensions)
	o.ShortcutExtensions = lower(o.ShortcutExtensions)
	o.StorefrontDirs = lower(o.StorefrontDirs)
	o.LaunchHelper = filepath.FromSlash(o.LaunchHelper)
	launchers := make([]string, 0, len(o.LauncherDirs))
	for _, d := range o.LauncherDirs {
		if d = strings.TrimSpace(d); d != "" {
			launchers = append(launchers, filepath.FromSlash(d))
		}
	}
	o.LauncherDirs = launchers
	return o
}

func hasExt(name string, exts []string) bool {
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}
