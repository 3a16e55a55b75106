package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	genai "google.golang.org/genai"
)

// TransportKind classifies provider and network failures.
type TransportKind string

const (
	TransportUnauthorized  TransportKind = "unauthorized"
	TransportRateLimited   TransportKind = "rate_limited"
	TransportRegionBlocked TransportKind = "region_blocked"
	TransportUnknown       TransportKind = "unknown"
)

// ErrEmptyResponse is reported when the provider answers without a text part.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// TransportError is the only error type Generate returns.
type TransportError struct {
	Kind    TransportKind
	Code    int
	Status  string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("llm: ")
	b.WriteString(string(e.Kind))
	if e.Code != 0 {
		fmt.Fprintf(&b, " (%d", e.Code)
		if e.Status != "" {
			b.WriteString(" " + e.Status)
		}
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Classify maps a raw client error onto a TransportError. It inspects the
// structured genai.APIError first and falls back to message matching for
// errors that only carry text.
func Classify(err error) *TransportError {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	out := &TransportError{Kind: TransportUnknown, Message: err.Error(), Err: err}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		out.Code = apiErr.Code
		out.Status = apiErr.Status
		if apiErr.Message != "" {
			out.Message = apiErr.Message
		}
		out.Kind = classifyAPI(apiErr)
		return out
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return out
	}
	out.Kind = classifyText(err.Error())
	return out
}

func classifyAPI(e genai.APIError) TransportKind {
	text := strings.ToLower(e.Status + " " + e.Message)
	if isRegionText(text) {
		return TransportRegionBlocked
	}
	switch {
	case e.Code == http.StatusUnauthorized, e.Code == http.StatusForbidden:
		return TransportUnauthorized
	case e.Code == http.StatusTooManyRequests:
		return TransportRateLimited
	}
	if k := classifyText(text); k != TransportUnknown {
		return k
	}
	return TransportUnknown
}

func classifyText(msg string) TransportKind {
	m := strings.ToLower(msg)
	switch {
	case isRegionText(m):
		return TransportRegionBlocked
	case strings.Contains(m, "api key not valid"),
		strings.Contains(m, "api_key_invalid"),
		strings.Contains(m, "permission_denied"),
		strings.Contains(m, "unauthenticated"):
		return TransportUnauthorized
	case strings.Contains(m, "resource_exhausted"),
		strings.Contains(m, "quota"),
		strings.Contains(m, "rate limit"),
		strings.Contains(m, "too many requests"):
		return TransportRateLimited
	default:
		return TransportUnknown
	}
}

func isRegionText(m string) bool {
	return strings.Contains(m, "location is not supported") ||
		strings.Contains(m, "region is not supported") ||
		strings.Contains(m, "not available in your country") ||
		strings.Contains(m, "unsupported_location")
}
