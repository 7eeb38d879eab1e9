// Package cmd implements the toolreg command line.
package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vinayprograms/toolreg/logging"
	"github.com/vinayprograms/toolreg/registry"
	"github.com/vinayprograms/toolreg/settings"
	"github.com/vinayprograms/toolreg/telemetry"
)

var (
	cfgFile      string
	registryFile string
	verbose      bool
)

// errUntrusted makes the process exit non-zero without printing an error.
var errUntrusted = stderrors.New("untrusted")

// env is what every subcommand works against, built in PersistentPreRunE.
type env struct {
	settings settings.Settings
	store    *registry.Store
	filter   *registry.Filter
	logger   *logging.Logger
	provider *telemetry.Provider
}

var current env

var rootCmd = &cobra.Command{
	Use:   "toolreg",
	Short: "Resolve tool short names to backends and check plugin remotes",
	Long: `toolreg maps short tool names such as "poetry" to the backends that can
install them (for example asdf:mise-plugins/mise-poetry), filtered by platform
and settings, and decides whether a plugin remote URL is trusted.

Settings are read from ./.toolreg.toml or ~/.config/toolreg/config.toml and
overridden by MISE_DISABLE_BACKENDS and MISE_EXPERIMENTAL.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil && !stderrors.Is(err, errUntrusted) {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default: first of ./.toolreg.toml, ~/.config/toolreg/config.toml)")
	rootCmd.PersistentFlags().StringVar(&registryFile, "registry", "", "registry TOML file (default: built-in registry)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func setup(cmd *cobra.Command, args []string) error {
	logger := logging.New().WithComponent("toolreg")
	if verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	var (
		s    settings.Settings
		path string
		err  error
	)
	if cfgFile != "" {
		path = cfgFile
		s, err = settings.LoadFile(cfgFile)
	} else {
		s, path, err = settings.Load()
	}
	if err != nil {
		return err
	}
	logger.SettingsLoaded(path, s.DisableBackends, s.Experimental, s.OS)

	start := time.Now()
	store := registry.Default()
	source := "embedded"
	if registryFile != "" {
		source = registryFile
		if store, err = registry.LoadFile(registryFile); err != nil {
			return err
		}
	}
	logger.RegistryLoaded(source, store.Len(), time.Since(start))

	current = env{
		settings: s,
		store:    store,
		filter:   registry.NewFilter(s),
		logger:   logger,
	}

	if telemetry.Enabled() {
		provider, err := telemetry.InitProvider(cmd.Context(), telemetry.ProviderConfig{
			ServiceVersion: Version,
			Debug:          verbose,
			ExportTimeout:  5 * time.Second,
		})
		if err != nil {
			logger.Warn("telemetry_disabled", map[string]interface{}{"error": err.Error()})
		} else {
			current.provider = provider
		}
	}
	return nil
}

func teardown(ctx context.Context) error {
	if current.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return current.provider.Shutdown(ctx)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "toolreg: %v\n", err)
}
