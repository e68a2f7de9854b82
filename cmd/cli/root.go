package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/logger"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "reviewer-cli",
	Short: "reviewer-cli is the command-line interface for the code review service.",
	Long:  `A CLI for reviewing files from the terminal and for administrative tasks such as running migrations, issuing tokens and inspecting review history.`,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yaml")

	if err := viper.BindPFlag("CONFIG_FILE", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		slog.Error("Error binding flag", "error", err)
		os.Exit(1)
	}
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig loads the service configuration and a logger writing to stderr
// so command output on stdout stays clean.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetString("CONFIG_FILE"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.NewLogger(cfg.LoggerConfig, os.Stderr)
	return cfg, log, nil
}
