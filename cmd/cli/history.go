package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/db"
	"github.com/sevigo/code-reviewer/internal/storage"
)

var historyFormat string

var historyCmd = &cobra.Command{
	Use:   "history [user-id]",
	Short: "List a user's saved reviews, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("history needs the %q driver, the in-memory store is not shared with the server", config.DriverPostgres)
	}

	conn, err := db.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	reviews, err := storage.NewStore(conn.DB).ListReviews(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return writeHistory(cmd.OutOrStdout(), reviews, historyFormat)
}

func writeHistory(w io.Writer, reviews []core.StoredReview, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reviews)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(reviews)
	case "text":
		if len(reviews) == 0 {
			dimColor.Fprintln(w, "no reviews saved")
			return nil
		}
		for _, r := range reviews {
			titleColor.Fprintf(w, "#%d %s %s\n", r.ID, r.CreatedAt.Format(time.DateTime), r.Model)
			fmt.Fprintf(w, "  %s\n", firstLine(r.Code))
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func firstLine(s string) string {
	line, _, cut := strings.Cut(strings.TrimSpace(s), "\n")
	if cut {
		return line + " ..."
	}
	return line
}
