// Package cli implements the tidetimes command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bbernstein/tidetimes/internal/app"
	"github.com/bbernstein/tidetimes/internal/config"
	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/bbernstein/tidetimes/internal/tide"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config keys, also readable from TIDETIMES_* environment variables.
const (
	keyStation     = "station"
	keyMode        = "mode"
	keyLogLevel    = "log_level"
	keyNOAABaseURL = "noaa_base_url"

	configName = ".tidetimes"
)

// Runtime holds the services a command talks to.
type Runtime struct {
	Tides    tide.TideService
	Stations models.StationFinder
}

// RuntimeFactory builds a Runtime once the config file has been read.
type RuntimeFactory func(ctx context.Context, v *viper.Viper) (*Runtime, error)

// NewRootCmd builds the command tree around factory.
func NewRootCmd(factory RuntimeFactory) *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "tidetimes",
		Short: "Show the current tide at a NOAA station",
		Long: `Shows the current tide height, the next high and low tides and a chart of
the tide around now, from NOAA CO-OPS predictions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tidetimes.yaml)")
	root.AddCommand(newShowCmd(v, factory), newStationsCmd(v, factory))

	return root
}

// Execute runs the command line against NOAA.
func Execute() {
	if err := NewRootCmd(DefaultRuntime).Execute(); err != nil {
		os.Exit(1)
	}
}

// DefaultRuntime talks to NOAA directly, keeping every cache in memory.
func DefaultRuntime(ctx context.Context, v *viper.Viper) (*Runtime, error) {
	cfg := config.New(
		config.WithEnvironment("local"),
		config.WithLogLevel(v.GetString(keyLogLevel)),
		config.WithNOAABaseURL(v.GetString(keyNOAABaseURL)),
	)
	cfg.InitializeLogging()
	// stdout is reserved for command output.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	services, err := app.New(ctx, cfg, config.GetCacheConfig(), config.GetTimelineConfig())
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Tides:    services.TideService,
		Stations: services.StationFinder,
	}, nil
}

// initConfig reads the config file and environment. A missing file is fine.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(configName)
	}

	v.SetDefault(keyMode, string(models.ChartModeCompact))
	v.SetDefault(keyLogLevel, "warn")
	v.SetEnvPrefix("tidetimes")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading config: %w", err)
		}
		return nil
	}

	log.Debug().Str("file", v.ConfigFileUsed()).Msg("Using config file")
	return nil
}

// configPath is where saved settings go: the file in use, or the default.
func configPath(v *viper.Viper) (string, error) {
	if path := v.ConfigFileUsed(); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}
