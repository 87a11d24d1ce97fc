package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/WowJuicy/QuickLauncher-v2/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "qlaunch",
	Short:        "qlaunch — launch games and sites by keyword",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `qlaunch resolves a short keyword into a program or URL and opens it.

Known keywords come from ~/.qlaunch/keywords.txt. Unknown names are searched
for across every drive; the chosen executable is remembered for next time.
Separate several commands on one line with two or more spaces.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ~/.qlaunch/config.yaml)")
	pf.String("store", "", "keyword store file (overrides store_path)")
	pf.Int("workers", 0, "crawl worker pool size (0 = number of CPUs, minimum 2)")
	pf.StringSlice("roots", nil, "volume roots to search (default: every drive)")
	pf.BoolP("verbose", "v", false, "log progress to stderr")
	pf.Bool("debug", false, "log debug details to stderr")

	_ = viper.BindPFlag("config", pf.Lookup("config"))
	_ = viper.BindPFlag("store_path", pf.Lookup("store"))
	_ = viper.BindPFlag("workers", pf.Lookup("workers"))
	_ = viper.BindPFlag("roots", pf.Lookup("roots"))
	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("debug", pf.Lookup("debug"))
}

// initConfig wires environment overrides (QLAUNCH_STORE_PATH, QLAUNCH_WORKERS,
// QLAUNCH_ROOTS, ...). The config file itself is read by loadConfig.
func initConfig() {
	viper.SetEnvPrefix("QLAUNCH")
	viper.AutomaticEnv()
}

// configPath returns the --config value or the default location.
func configPath() (string, error) {
	if p := viper.GetString("config"); p != "" {
		return config.ExpandPath(p)
	}
	return config.ConfigPath()
}

// loadConfig reads the config file, falling back to defaults with a warning
// when it does not exist, then applies flag and environment overrides.
func loadConfig() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		printWarn("", fmt.Sprintf("no config at %s, using defaults (run 'qlaunch init')", path))
	case err != nil:
		return nil, fmt.Errorf("cannot load config: %w", err)
	}

	if viper.IsSet("store_path") {
		if cfg.StorePath, err = config.ExpandPath(viper.GetString("store_path")); err != nil {
			return nil, err
		}
	}
	if viper.IsSet("workers") {
		cfg.Workers = viper.GetInt("workers")
	}
	if viper.IsSet("roots") {
		cfg.Roots = viper.GetStringSlice("roots")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// newLogger builds the process logger: warnings by default, info with
// --verbose, debug with --debug.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "qlaunch",
	})
	switch {
	case viper.GetBool("debug"):
		logger.SetLevel(log.DebugLevel)
	case viper.GetBool("verbose"):
		logger.SetLevel(log.InfoLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
