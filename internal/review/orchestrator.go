// Package review implements the fallback pipeline that turns a code snippet
// into a review from the first model able to answer.
package review

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/llm"
	"github.com/sevigo/code-reviewer/internal/metrics"
)

const defaultAttemptTimeout = 60 * time.Second

// Options controls candidate ordering and when to move on to the next model.
type Options struct {
	// DefaultModel is tried first when a request names no model.
	DefaultModel core.ModelID
	// FallbackOrder is the static priority list tried after the preferred model.
	FallbackOrder []core.ModelID
	// Policy is config.PolicyAny (the default) or config.PolicyTransient.
	Policy string
	// AttemptTimeout bounds every single provider call.
	AttemptTimeout time.Duration
	// Classify maps provider errors to failure kinds. Defaults to llm.Classify.
	Classify func(error) core.FailureKind
}

// Orchestrator tries candidate models one at a time until one answers.
// It implements core.Reviewer.
type Orchestrator struct {
	provider core.Provider
	opts     Options
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

var _ core.Reviewer = (*Orchestrator)(nil)

// New creates an Orchestrator. m may be nil.
func New(provider core.Provider, opts Options, m *metrics.Metrics, logger *slog.Logger) *Orchestrator {
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = defaultAttemptTimeout
	}
	if opts.Policy == "" {
		opts.Policy = config.PolicyAny
	}
	if opts.Classify == nil {
		opts.Classify = llm.Classify
	}
	return &Orchestrator{
		provider: provider,
		opts:     opts,
		metrics:  m,
		logger:   logger,
	}
}

// NewFromConfig builds an Orchestrator from the ai section of cfg.
func NewFromConfig(provider core.Provider, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *Orchestrator {
	return New(provider, Options{
		DefaultModel:   core.ModelID(cfg.AI.DefaultModel),
		FallbackOrder:  cfg.AI.FallbackModels(),
		Policy:         cfg.AI.FallbackPolicy,
		AttemptTimeout: cfg.AI.AttemptTimeout,
	}, m, logger)
}

// Candidates returns the models to try for a request, preferred first,
// then the fallback order, each at most once.
func (o *Orchestrator) Candidates(preferred core.ModelID) []core.ModelID {
	if preferred == "" {
		preferred = o.opts.DefaultModel
	}

	out := make([]core.ModelID, 0, len(o.opts.FallbackOrder)+1)
	seen := make(map[core.ModelID]struct{}, len(o.opts.FallbackOrder)+1)
	add := func(m core.ModelID) {
		if m == "" {
			return
		}
		if _, ok := seen[m]; ok {
			return
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}

	add(preferred)
	for _, m := range o.opts.FallbackOrder {
		add(m)
	}
	return out
}

// Review asks each candidate in turn and returns on the first success.
// Running out of candidates is reported through the Outcome, not an error.
// An error is returned only when the request is cancelled or, under the
// opt-in transient policy, when a provider fails with a non-transient kind.
func (o *Orchestrator) Review(ctx context.Context, prompt string, preferred core.ModelID) (core.Outcome, error) {
	outcome := core.Outcome{Kind: core.OutcomeNoModels}

	for _, model := range o.Candidates(preferred) {
		if err := ctx.Err(); err != nil {
			perr := &core.ProviderError{Model: model, Kind: core.FailureCanceled, Err: err}
			outcome.LastFailure = perr
			o.metrics.ObserveOutcome("canceled")
			return outcome, perr
		}

		start := time.Now()
		text, err := o.attempt(ctx, model, prompt)
		elapsed := time.Since(start)
		if err == nil && strings.TrimSpace(text) == "" {
			err = llm.ErrEmptyResponse
		}

		if err == nil {
			o.metrics.ObserveAttempt(model, elapsed, "")
			outcome.Attempts = append(outcome.Attempts, core.Attempt{Model: model, Duration: elapsed})
			outcome.Kind = core.OutcomeSuccess
			outcome.Text = text
			outcome.Model = model
			outcome.LastFailure = nil
			o.metrics.ObserveOutcome(string(core.OutcomeSuccess))
			o.logger.Info("review generated",
				"model", model,
				"attempts", len(outcome.Attempts),
				"duration", elapsed,
			)
			return outcome, nil
		}

		kind := o.opts.Classify(err)
		if ctx.Err() != nil {
			kind = core.FailureCanceled
		}
		perr := &core.ProviderError{Model: model, Kind: kind, Err: err}

		// An unconfigured model never reached a provider and does not
		// count as a failed attempt.
		if kind == core.FailureUnsupported {
			o.logger.Debug("model not configured, skipping", "model", model)
			continue
		}

		o.metrics.ObserveAttempt(model, elapsed, kind)
		outcome.Attempts = append(outcome.Attempts, core.Attempt{Model: model, Duration: elapsed, Err: perr})
		outcome.Kind = core.OutcomeExhausted
		outcome.LastFailure = perr

		if !o.shouldContinue(kind) {
			o.logger.Error("provider failed, not falling back",
				"model", model,
				"kind", kind,
				"error", err,
			)
			o.metrics.ObserveOutcome("failed")
			return outcome, perr
		}

		o.logger.Warn("provider failed, trying next model",
			"model", model,
			"kind", kind,
			"error", err,
		)
	}

	if outcome.Kind == core.OutcomeExhausted {
		o.logger.Error("all review models failed",
			"attempts", len(outcome.Attempts),
			"last_kind", outcome.LastFailure.Kind,
		)
	} else {
		o.logger.Error("no review models available")
	}
	o.metrics.ObserveOutcome(string(outcome.Kind))
	return outcome, nil
}

// shouldContinue decides whether a failure of this kind moves on to the
// next candidate.
func (o *Orchestrator) shouldContinue(kind core.FailureKind) bool {
	switch {
	case kind == core.FailureCanceled:
		return false
	case o.opts.Policy == config.PolicyAny:
		return true
	default:
		return kind.Transient()
	}
}

// attempt runs one provider call under the per-attempt deadline. The
// deadline holds even for a provider that ignores its context.
func (o *Orchestrator) attempt(ctx context.Context, model core.ModelID, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.AttemptTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		text, err := o.provider.Generate(ctx, model, prompt)
		resultCh <- result{text, err}
	}()

	select {
	case res := <-resultCh:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
