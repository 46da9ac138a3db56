package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/togglekit/pkg/client"
	"github.com/dmitrymomot/togglekit/pkg/config"
	"github.com/dmitrymomot/togglekit/pkg/logger"
)

type cliConfig struct {
	SDKKey    string `env:"TOGGLE_SDK_KEY" envDefault:"local"`
	BaseURL   string `env:"TOGGLE_BASE_URL"`
	LogLevel  string `env:"TOGGLE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"TOGGLE_LOG_FORMAT" envDefault:"text"`

	Client client.Config
}

// app is shared by all subcommands and filled in before any of them runs.
type app struct {
	cfg cliConfig
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "togglectl",
		Short:        "Inspect and evaluate feature toggle snapshots",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.AddCommand(
		newEvalCmd(a),
		newRolloutCmd(a),
		newDiffCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.Load(&a.cfg); err != nil {
		return err
	}

	level, err := logger.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("TOGGLE_LOG_LEVEL: %w", err)
	}
	format, err := logger.ParseFormat(a.cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("TOGGLE_LOG_FORMAT: %w", err)
	}

	a.log = logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithAttr(logger.Component("togglectl")),
	)
	return nil
}
