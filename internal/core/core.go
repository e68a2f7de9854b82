// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"context"
)

// Provider generates text from a prompt using the named model. One call is
// one network attempt; implementations do not retry.
//
//go:generate mockgen -destination=../../mocks/mock_provider.go -package=mocks github.com/sevigo/code-reviewer/internal/core Provider,Reviewer
type Provider interface {
	Generate(ctx context.Context, model ModelID, prompt string) (string, error)
}

// Reviewer turns a prompt into a review Outcome, hiding which model answered.
// An error is returned only when a failure must not be masked by fallback,
// such as invalid credentials or a cancelled request.
type Reviewer interface {
	Review(ctx context.Context, prompt string, preferred ModelID) (Outcome, error)
}
