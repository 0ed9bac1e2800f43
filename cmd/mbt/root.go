package main

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/mbtassist/internal/config"
	"github.com/aretw0/mbtassist/internal/logging"
	"github.com/aretw0/mbtassist/pkg/ports"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	store  ports.ProjectStore
	locker ports.ProjectLocker
	close  func() error
}

func newRootCmd() *cobra.Command {
	a := &app{close: func() error { return nil }}

	rootCmd := &cobra.Command{
		Use:   "mbt",
		Short: "mbt generates test cases from an interaction model",
		Long: `mbt turns a state/transition model of an application into test cases:
one case per path from the initial state, each step listing the action,
the input data and the expected result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default ./mbt.yaml when present)")
	rootCmd.PersistentFlags().String("dir", "", "Directory of the file project store")
	rootCmd.PersistentFlags().String("store", "", "Project store: file, memory or redis")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newGraphCmd(a),
		newValidateCmd(a),
		newProjectsCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup resolves the configuration (file, env, then flags) and opens the store.
func (a *app) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("dir") {
		cfg.Store.Dir, _ = cmd.Flags().GetString("dir")
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Kind, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)

	store, locker, closer, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Kind, err)
	}
	a.store, a.locker, a.close = store, locker, closer
	a.logger.Debug("store ready", "kind", cfg.Store.Kind)
	return nil
}
