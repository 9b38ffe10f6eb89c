package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrQuestionEmpty is returned when the question is empty or whitespace.
	ErrQuestionEmpty = errors.New("question is empty")

	// ErrQuestionTooShort is returned when the question is below the minimum length.
	ErrQuestionTooShort = errors.New("question is too short")

	// ErrNotConfigured is returned when no provider client could be constructed.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrStateRequired is returned when a tracker is created without state.
	ErrStateRequired = errors.New("usage state is required")

	// ErrUpstreamQuota is returned when the provider reports its own throttling.
	ErrUpstreamQuota = errors.New("upstream quota exceeded")

	// ErrModelNotFound is returned when the provider no longer serves a model.
	ErrModelNotFound = errors.New("model not found")
)

// Kind classifies a failed request for status mapping and fallback selection.
type Kind string

const (
	KindNone               Kind = ""
	KindInvalidInput       Kind = "invalid_input"
	KindServiceUnavailable Kind = "service_unavailable"
	KindDailyLimit         Kind = "daily_limit"
	KindMinuteLimit        Kind = "minute_limit"
	KindUpstreamTimeout    Kind = "upstream_timeout"
	KindUpstreamQuota      Kind = "upstream_quota"
	KindModelsExhausted    Kind = "models_exhausted"
	KindInternal           Kind = "internal"
)

// HTTPStatus maps a kind to the status code the HTTP layer should send.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNone:
		return http.StatusOK
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindDailyLimit, KindMinuteLimit, KindUpstreamQuota:
		return http.StatusTooManyRequests
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case KindModelsExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// LimitError reports a denied admission together with the configured limit.
type LimitError struct {
	Scope Kind // KindDailyLimit or KindMinuteLimit
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s reached (limit %d)", e.Scope, e.Limit)
}

// ExhaustedError aggregates diagnostics from a probe run in which every
// candidate failed every attempt.
type ExhaustedError struct {
	Failures      map[string]int
	NetworkErrors int
}

func (e *ExhaustedError) Error() string {
	models := make([]string, 0, len(e.Failures))
	for m := range e.Failures {
		models = append(models, m)
	}
	sort.Strings(models)

	parts := make([]string, 0, len(models))
	for _, m := range models {
		parts = append(parts, fmt.Sprintf("%s=%d", m, e.Failures[m]))
	}
	return fmt.Sprintf("no usable model (failures: %s, network errors: %d)",
		strings.Join(parts, " "), e.NetworkErrors)
}

// networkErrorSignatures are substrings that mark a provider failure as a
// transport problem rather than an API-level rejection.
var networkErrorSignatures = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"tls handshake",
	"eof",
	"broken pipe",
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range networkErrorSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// isQuotaError recognizes provider-side throttling. The sentinel covers the
// typed client; the substring checks cover raw provider messages.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUpstreamQuota) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429")
}

// isModelGoneError recognizes a cached model that the provider stopped serving.
func isModelGoneError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrModelNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not_found") || strings.Contains(msg, "404")
}

// truncateDiagnostic bounds the raw provider message attached to responses.
func truncateDiagnostic(err error) string {
	if err == nil {
		return ""
	}
	const max = 200
	msg := err.Error()
	if len(msg) > max {
		return msg[:max] + "..."
	}
	return msg
}
