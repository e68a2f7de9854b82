package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// breakerGenerator fails fast while a provider keeps reporting transient
// failures. Non-transient failures, such as bad credentials, never open it.
type breakerGenerator struct {
	next Generator
	cb   *gobreaker.CircuitBreaker
}

// WithCircuitBreaker wraps g in a circuit breaker named after the model.
// The breaker opens after threshold consecutive transient failures and
// lets one trial request through after cooldown.
func WithCircuitBreaker(name string, g Generator, threshold uint32, cooldown time.Duration, logger *slog.Logger) Generator {
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !Classify(err).Transient()
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("provider circuit breaker changed state",
				"model", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &breakerGenerator{
		next: g,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *breakerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, prompt)
	})
	if err != nil {
		return "", err
	}

	text, ok := out.(string)
	if !ok {
		return "", fmt.Errorf("unexpected circuit breaker response type %T", out)
	}
	return text, nil
}
