package core

import (
	"strings"
	"time"
	"unicode/utf16"
)

// MaxCodeLength is the largest snippet, in UTF-16 code units, accepted for review.
const MaxCodeLength = 10000

// CodeLength measures s in UTF-16 code units, the unit browser clients use
// for string length. Runes outside the BMP count twice.
func CodeLength(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// ReviewRequest is a snippet submitted for review.
type ReviewRequest struct {
	Code  string
	Model ModelID
}

// Validate checks the snippet bounds and the requested model. An empty
// model is allowed and resolved to DefaultModel by the caller.
func (r ReviewRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return &ValidationError{Field: "code", Message: "must not be empty"}
	}
	if CodeLength(r.Code) > MaxCodeLength {
		return &ValidationError{Field: "code", Message: "exceeds 10000 characters"}
	}
	if r.Model != "" && !r.Model.IsKnown() {
		return &ValidationError{Field: "model", Message: "unknown model " + string(r.Model)}
	}
	return nil
}

// StoredReview is one persisted review owned by an authenticated user.
// Records are created and listed, never updated.
type StoredReview struct {
	ID        int64     `json:"id" db:"id" yaml:"id"`
	Owner     string    `json:"user" db:"owner" yaml:"user"`
	Code      string    `json:"code" db:"code" yaml:"code"`
	Review    string    `json:"review" db:"review" yaml:"review"`
	Model     string    `json:"model" db:"model" yaml:"model"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" yaml:"createdAt"`
}

// Validate enforces that a record has an owner and non-empty content.
func (r *StoredReview) Validate() error {
	switch {
	case r.Owner == "":
		return &ValidationError{Field: "user", Message: "is required"}
	case r.Code == "":
		return &ValidationError{Field: "code", Message: "is required"}
	case r.Review == "":
		return &ValidationError{Field: "review", Message: "is required"}
	case r.Model == "":
		return &ValidationError{Field: "model", Message: "is required"}
	}
	return nil
}
