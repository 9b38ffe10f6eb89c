package gateway

import (
	"context"
	"time"
)

// Status reports how a request concluded.
type Status string

const (
	StatusSuccess           Status = "success"
	StatusSuccessAfterRetry Status = "success_after_retry"
	StatusError             Status = "error"
)

// Language is the detected primary script of a question.
type Language string

const (
	LangEnglish  Language = "en"
	LangChinese  Language = "zh-TW"
	LangJapanese Language = "ja"
	LangKorean   Language = "ko"
)

// Topic is the domain category assigned to a question.
type Topic string

const (
	TopicConstipation Topic = "constipation"
	TopicDiarrhea     Topic = "diarrhea"
	TopicBloating     Topic = "bloating"
	TopicHemorrhoids  Topic = "hemorrhoids"
	TopicGeneral      Topic = "general"
)

// ModelAppIntro is reported as the model name when a question is answered
// from the canned feature intro instead of an upstream call.
const ModelAppIntro = "app-intro"

// Intent is the classification of a question.
type Intent struct {
	AppIntent bool
	Language  Language
	Topic     Topic
}

// Generator is the upstream generation capability. Implementations must honor
// context cancellation; the orchestrator abandons calls that outlive their
// deadline.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ActiveModel is a verified upstream model held by the failover manager.
// It is replaced, never mutated, when it stops working.
type ActiveModel struct {
	ID         string
	VerifiedAt time.Time
}

// UsageSnapshot is a point-in-time copy of the usage counters, safe to hand
// to handlers and response bodies.
type UsageSnapshot struct {
	Today           int            `json:"today"`
	RemainingToday  int            `json:"remaining_today"`
	Minute          int            `json:"minute"`
	RemainingMinute int            `json:"remaining_minute"`
	TotalRequests   int            `json:"total_requests"`
	FailedRequests  int            `json:"failed_requests"`
	NetworkErrors   int            `json:"network_errors"`
	ModelFailures   map[string]int `json:"model_failures,omitempty"`
	MinuteResetAt   time.Time      `json:"minute_reset_at"`
	DailyResetAt    time.Time      `json:"daily_reset_at"`
}

// DayRecord is one entry of the rolling daily history.
type DayRecord struct {
	Date     string `json:"date"`
	Requests int    `json:"requests"`
	Failed   int    `json:"failed"`
}

// Result is the structured outcome of one question, serialized by the HTTP
// layer. Kind is KindNone on success.
type Result struct {
	Answer       string
	Model        string
	Status       Status
	Kind         Kind
	Usage        UsageSnapshot
	ResponseTime time.Duration
	Diagnostic   string
	RetryAfter   time.Duration
}
