package core

import "time"

// Fixed sentences returned to users when no model produced a review.
const (
	MessageOverloaded = "All AI services are temporarily overloaded. Please try again later."
	MessageNoModels   = "No AI models available."
	messageAllFailed  = "All models failed: "
)

// OutcomeKind tells a caller whether a model answered.
type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeExhausted OutcomeKind = "exhausted"
	OutcomeNoModels  OutcomeKind = "no_models"
)

// Attempt records one provider call made while serving a request.
type Attempt struct {
	Model    ModelID
	Duration time.Duration
	Err      *ProviderError
}

// Outcome is the result of a review request. Exactly one model answered
// when Kind is OutcomeSuccess; otherwise LastFailure describes why the
// last candidate failed (nil for OutcomeNoModels).
type Outcome struct {
	Kind        OutcomeKind
	Text        string
	Model       ModelID
	LastFailure *ProviderError
	Attempts    []Attempt
}

// OK reports whether a model produced the review text.
func (o Outcome) OK() bool { return o.Kind == OutcomeSuccess }

// Message returns the review text, or a readable sentence explaining why
// there is none. It is never empty.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Text
	case OutcomeExhausted:
		if o.LastFailure == nil {
			return MessageNoModels
		}
		if o.LastFailure.Kind == FailureOverloaded {
			return MessageOverloaded
		}
		return messageAllFailed + o.LastFailure.Err.Error()
	default:
		return MessageNoModels
	}
}
