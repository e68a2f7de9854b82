package main

import (
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/wire"
)

var (
	reviewModel string
	reviewRaw   bool
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review [file|-]",
	Short: "Review a source file with the configured AI models",
	Long: `Review a source file with the configured AI models.

The file is sent through the same fallback pipeline as the HTTP endpoint.
Use "-" to read the code from standard input.

Examples:
  reviewer-cli review main.go
  cat handler.js | reviewer-cli review - --model openai-gpt-3.5`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().StringVarP(&reviewModel, "model", "m", "", "preferred model (defaults to ai.default_model)")
	reviewCmd.Flags().BoolVar(&reviewRaw, "raw", false, "print the review without markdown rendering")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	code, err := readCode(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	req := core.ReviewRequest{Code: code, Model: core.ModelID(reviewModel)}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	orchestrator, err := wire.InitializeReviewer(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	printReviewing(cmd.ErrOrStderr(), args[0], code)
	start := time.Now()

	outcome, err := orchestrator.Review(cmd.Context(), req.Code, req.Model)
	if err != nil {
		errorColor.Fprintf(cmd.ErrOrStderr(), "Review failed: %v\n", err)
		return err
	}

	printStatus(cmd.ErrOrStderr(), outcome, time.Since(start))
	return printReview(cmd.OutOrStdout(), outcome.Message(), reviewRaw || !outcome.OK())
}

func readCode(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read code: %w", err)
	}
	return string(data), nil
}

func printStatus(w io.Writer, outcome core.Outcome, elapsed time.Duration) {
	switch outcome.Kind {
	case core.OutcomeSuccess:
		successColor.Fprintf(w, "Reviewed by %s in %s\n", outcome.Model, elapsed.Round(time.Millisecond))
	case core.OutcomeExhausted:
		warnColor.Fprintf(w, "All %d attempts failed\n", len(outcome.Attempts))
	default:
		warnColor.Fprintln(w, "No models are configured")
	}

	for _, a := range outcome.Attempts {
		if a.Err != nil {
			dimColor.Fprintf(w, "  %s: %s (%s)\n", a.Model, a.Err.Kind, a.Duration.Round(time.Millisecond))
		}
	}
}

func printReview(w io.Writer, text string, raw bool) error {
	if raw {
		_, err := fmt.Fprintln(w, text)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(text)
	if err != nil {
		return fmt.Errorf("failed to render review: %w", err)
	}
	_, err = fmt.Fprint(w, out)
	return err
}

func printReviewing(w io.Writer, name, code string) {
	titleColor.Fprintf(w, "Reviewing %s (%d characters)...\n", name, utf8.RuneCountInString(code))
}
