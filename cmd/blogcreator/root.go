package main

import (
	"context"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/blogcreator/cmd/blogcreator/opts"
	"github.com/walteh/blogcreator/pkg/config"
	"github.com/walteh/blogcreator/pkg/log"
	"github.com/walteh/blogcreator/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

const defaultConfigFile = "blogcreator.yaml"

var (
	// Flags
	configFile   string
	debugLogging bool
	memoryStore  bool
)

// loadConfig reads the config file. Without one, every provider kind is
// tried with credentials from the environment.
func loadConfig(ctx context.Context, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(ctx, configFile)
	if err == nil {
		return cfg, nil
	}
	if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("path", configFile).Msg("no config file, using environment")

	cfg = config.Default()
	for _, kind := range rewrite.Kinds() {
		if kind == "claude" {
			continue
		}
		cfg.Providers = append(cfg.Providers, config.ProviderConfig{Name: kind})
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// newRootOpts creates the shared options with initialized dependencies
func newRootOpts(ctx context.Context, explicitConfig bool) (*opts.RootOpts, error) {
	cfg, err := loadConfig(ctx, explicitConfig)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	reg, err := rewrite.BuildRegistry(ctx, cfg)
	if err != nil {
		return nil, errors.Errorf("building provider registry: %w", err)
	}

	level := zerolog.Disabled
	if debugLogging {
		level = zerolog.DebugLevel
	}

	return &opts.RootOpts{
		Config:     cfg,
		Dispatcher: rewrite.NewDispatcher(reg, cfg.StyleHints),
		Console:    log.New(os.Stderr, level),
		Memory:     memoryStore,
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigFile, "config file path (.yaml, .json, .jsonc or .hcl)")
	cmd.PersistentFlags().BoolVarP(&debugLogging, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&memoryStore, "memory", false, "use an in-memory store instead of GitHub")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debugLogging {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
}
