package main

import (
	"fmt"
	"os"

	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "waypoint",
	Short:         "Waypoint drives users through multi-step journeys",
	Long:          `Waypoint serves, validates and visualises the journeys of a multi-step web application.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "waypoint.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")
}

// loadConfig reads the configuration named by the --config flag and applies
// flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) error {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, err := logging.NewWithFormat(cmd.ErrOrStderr(), level, cfg.Log.Format)
	if err != nil {
		return err
	}
	cmd.SetContext(withLogger(cmd.Context(), logger))
	return nil
}
