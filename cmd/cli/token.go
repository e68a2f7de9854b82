package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-reviewer/internal/auth"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token [user-id]",
	Short: "Issue a bearer token for the review history endpoints",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to auth.token_ttl)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	ttl := cfg.Auth.TokenTTL
	if tokenTTL > 0 {
		ttl = tokenTTL
	}

	token, err := auth.NewVerifier(cfg.Auth.JWTSecret, ttl).Sign(args[0])
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
