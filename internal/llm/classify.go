package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"github.com/sevigo/code-reviewer/internal/core"
)

var (
	// ErrEmptyPrompt is returned for a blank prompt; no provider is called.
	ErrEmptyPrompt = errors.New("prompt must not be empty")
	// ErrEmptyResponse is returned when a provider answers without any text.
	ErrEmptyResponse = errors.New("provider returned an empty response")
)

// StatusError is an HTTP failure from a provider reached without an SDK.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return http.StatusText(e.StatusCode) + ": " + e.Body
}

// Classify maps a provider failure to a FailureKind. 503 from any provider
// (and an open circuit breaker) is an overload condition.
func Classify(err error) core.FailureKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, core.ErrUnsupportedProvider):
		return core.FailureUnsupported
	case errors.Is(err, ErrEmptyPrompt):
		return core.FailureInvalidRequest
	case errors.Is(err, ErrEmptyResponse):
		return core.FailureServerError
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return core.FailureOverloaded
	case errors.Is(err, context.DeadlineExceeded):
		return core.FailureTimeout
	case errors.Is(err, context.Canceled):
		return core.FailureCanceled
	}

	if code, ok := statusCode(err); ok {
		return kindForStatus(code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return core.FailureTimeout
		}
		return core.FailureNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "503"), strings.Contains(msg, "overloaded"), strings.Contains(msg, "service unavailable"):
		return core.FailureOverloaded
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "connection reset"), strings.Contains(msg, "no such host"):
		return core.FailureNetwork
	}
	return core.FailureUnknown
}

func statusCode(err error) (int, bool) {
	var gv genai.APIError
	if errors.As(err, &gv) {
		return gv.Code, true
	}
	var gp *genai.APIError
	if errors.As(err, &gp) && gp != nil {
		return gp.Code, true
	}
	var oa *openai.APIError
	if errors.As(err, &oa) && oa.HTTPStatusCode != 0 {
		return oa.HTTPStatusCode, true
	}
	var or *openai.RequestError
	if errors.As(err, &or) && or.HTTPStatusCode != 0 {
		return or.HTTPStatusCode, true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

func kindForStatus(code int) core.FailureKind {
	switch {
	case code == http.StatusServiceUnavailable:
		return core.FailureOverloaded
	case code == http.StatusTooManyRequests:
		return core.FailureRateLimited
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return core.FailureTimeout
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return core.FailureUnauthorized
	case code >= 500:
		return core.FailureServerError
	case code >= 400:
		return core.FailureInvalidRequest
	default:
		return core.FailureUnknown
	}
}
