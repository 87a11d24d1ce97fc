package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/WowJuicy/QuickLauncher-v2/internal/crawl"
	"github.com/WowJuicy/QuickLauncher-v2/internal/status"
)

// HomeEnv overrides the qlaunch directory (default ~/.qlaunch).
const HomeEnv = "QLAUNCH_HOME"

// Config is the in-memory representation of ~/.qlaunch/config.yaml.
type Config struct {
	StorePath          string   `yaml:"store_path"`
	Roots              []string `yaml:"roots,omitempty"`
	LauncherDirs       []string `yaml:"launcher_dirs"`
	ExcludedDirs       []string `yaml:"excluded_dirs"`
	Extensions         []string `yaml:"extensions"`
	ShortcutExtensions []string `yaml:"shortcut_extensions"`
	StorefrontDirs     []string `yaml:"storefront_dirs"`
	LaunchHelper       string   `yaml:"launch_helper"`
	ProgressIntervalMS int      `yaml:"progress_interval_ms"`
	StatusWidth        int      `yaml:"status_width"`
	Workers            int      `yaml:"workers,omitempty"`
	ShutdownGraceMS    int      `yaml:"shutdown_grace_ms"`
	ProbePages         bool     `yaml:"probe_pages"`
	ProbeTimeoutMS     int      `yaml:"probe_timeout_ms"`
	FallbackSearchURL  string   `yaml:"fallback_search_url"`
}

// Dir returns the absolute path to ~/.qlaunch/.
func Dir() (string, error) {
	if d := os.Getenv(HomeEnv); d != "" {
		return ExpandPath(d)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".qlaunch"), nil
}

// ConfigPath returns the absolute path to ~/.qlaunch/config.yaml.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the Config written on first qlaunch init.
func DefaultConfig() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	opts := crawl.DefaultOptions()
	return &Config{
		StorePath:          filepath.Join(dir, "keywords.txt"),
		LauncherDirs:       opts.LauncherDirs,
		ExcludedDirs:       opts.ExcludedDirs,
		Extensions:         opts.Extensions,
		ShortcutExtensions: opts.ShortcutExtensions,
		StorefrontDirs:     opts.StorefrontDirs,
		LaunchHelper:       opts.LaunchHelper,
		ProgressIntervalMS: 500,
		StatusWidth:        status.DefaultWidth,
		ShutdownGraceMS:    5000,
		ProbePages:         true,
		ProbeTimeoutMS:     5000,
		FallbackSearchURL:  "https://www.google.com/search?q=",
	}, nil
}

// Load reads and parses the config at path. Fields absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	// Expand ~ in StorePath at load time.
	cfg.StorePath, err = ExpandPath(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadOrDefault is Load, except that a missing file yields DefaultConfig and
// a non-nil warning error wrapping fs.ErrNotExist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	def, defErr := DefaultConfig()
	if defErr != nil {
		return nil, defErr
	}
	return def, err
}

// Save marshals cfg and writes it to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the launcher cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.StorePath) == "" {
		return fmt.Errorf("store_path must not be empty")
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must list at least one extension")
	}
	for _, e := range append(append([]string{}, c.Extensions...), c.ShortcutExtensions...) {
		if !strings.HasPrefix(e, ".") {
			return fmt.Errorf("extension %q must start with '.'", e)
		}
	}
	if c.ProgressIntervalMS <= 0 {
		return fmt.Errorf("progress_interval_ms must be positive, got %d", c.ProgressIntervalMS)
	}
	if c.StatusWidth < 10 {
		return fmt.Errorf("status_width must be at least 10, got %d", c.StatusWidth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// CrawlOptions converts the crawl-related settings.
func (c *Config) CrawlOptions() crawl.Options {
	return crawl.Options{
		LauncherDirs:       c.LauncherDirs,
		ExcludedDirs:       c.ExcludedDirs,
		Extensions:         c.Extensions,
		ShortcutExtensions: c.ShortcutExtensions,
		StorefrontDirs:     c.StorefrontDirs,
		LaunchHelper:       c.LaunchHelper,
	}
}

// EffectiveRoots returns the configured roots or, when none are set, every
// volume root of the machine.
func (c *Config) EffectiveRoots() []string {
	if len(c.Roots) > 0 {
		out := make([]string, 0, len(c.Roots))
		for _, r := range c.Roots {
			if p, err := ExpandPath(r); err == nil {
				out = append(out, p)
			}
		}
		return out
	}
	return crawl.VolumeRoots()
}

func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.ProgressIntervalMS) * time.Millisecond
}

func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.ShutdownGraceMS) * time.Millisecond
}

func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}
