package api

import "github.com/Tiffanyxxx3238/poopalooza-server/pkg/gateway"

// AskRequest is the POST /api/assistant body.
type AskRequest struct {
	Question string `json:"question"`
}

// UsageBrief is the compact usage block attached to assistant responses.
type UsageBrief struct {
	Today     int `json:"today"`
	Remaining int `json:"remaining"`
}

// AskResponse is the POST /api/assistant body for both success and failure;
// failures add the error field.
type AskResponse struct {
	Answer         string     `json:"answer"`
	Model          string     `json:"model,omitempty"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
	Usage          UsageBrief `json:"usage"`
	ResponseTimeMs int64      `json:"responseTime"`
	RetryAfter     int64      `json:"retryAfter,omitempty"`
}

// RootResponse is the GET / body.
type RootResponse struct {
	Service string                `json:"service"`
	Version string                `json:"version"`
	Status  string                `json:"status"`
	Limits  LimitsInfo            `json:"limits"`
	Usage   gateway.UsageSnapshot `json:"usage"`
}

// LimitsInfo echoes the configured budgets.
type LimitsInfo struct {
	PerMinute      int `json:"per_minute"`
	PerDay         int `json:"per_day"`
	ProviderHourly int `json:"provider_hourly,omitempty"`
}

// UsageResponse is the GET /api/usage body.
type UsageResponse struct {
	Usage   gateway.UsageSnapshot `json:"usage"`
	Limits  LimitsInfo            `json:"limits"`
	Model   string                `json:"model"`
	History []gateway.DayRecord   `json:"history"`
}

// HealthResponse is the GET /api/health body.
type HealthResponse struct {
	Status    string `json:"status"` // "healthy", "degraded", "unhealthy"
	APIKey    string `json:"apiKey"` // "configured" or "missing"
	Model     string `json:"model"`
	UptimeSec int64  `json:"uptime"`
}

// ModelStatus is one entry of the GET /api/models listing.
type ModelStatus struct {
	Name     string `json:"name"`
	Rank     int    `json:"rank"`
	Active   bool   `json:"active"`
	Failures int    `json:"failures"`
}

// ModelsResponse is the GET /api/models body.
type ModelsResponse struct {
	Models []ModelStatus `json:"models"`
	Active string        `json:"active,omitempty"`
}

// ErrorResponse is the generic error body, including the 404 catch-all.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Endpoints []string `json:"availableEndpoints,omitempty"`
}
