package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|version]",
	Short:     "Manage the review history schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "version"},
	RunE:      runMigrate,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations need the %q driver, configured driver is %q", config.DriverPostgres, cfg.Database.Driver)
	}

	conn, err := db.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	switch args[0] {
	case "up":
		if err := conn.RunMigrations(); err != nil {
			return err
		}
		successColor.Fprintln(cmd.OutOrStdout(), "migrations applied")
	case "down":
		if err := conn.RollbackMigrations(); err != nil {
			return err
		}
		warnColor.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
	case "version":
		version, dirty, err := conn.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
	}
	return nil
}
