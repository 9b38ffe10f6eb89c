package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultTimeout        = 15 * time.Second
	defaultMinQuestionLen = 2
)

// Config holds orchestrator configuration.
type Config struct {
	// Timeout bounds each provider invocation (default: 15s).
	Timeout time.Duration

	// MinQuestionLen is the minimum question length in runes (default: 2).
	MinQuestionLen int

	// ProviderRetryAfter is the retry hint attached to provider-quota
	// failures (default: 1h).
	ProviderRetryAfter time.Duration

	// Logger is used for structured logging (default: NoopLogger).
	Logger Logger

	// Metrics is used for tracking request outcomes (default: NoopMetrics).
	Metrics Metrics
}

// Gateway composes the tracker, failover manager, synthesizer, and formatter
// into the per-request lifecycle.
type Gateway struct {
	gen      Generator
	tracker  *Tracker
	failover *Failover
	synth    *Synthesizer
	config   Config
	logger   Logger
	metrics  Metrics
}

// New creates a gateway. gen may be nil when no provider client could be
// constructed; the failover manager then fails every acquisition fast.
func New(gen Generator, tracker *Tracker, failover *Failover, config Config) (*Gateway, error) {
	if tracker == nil {
		return nil, ErrStateRequired
	}
	if failover == nil {
		return nil, errors.New("failover manager is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MinQuestionLen <= 0 {
		config.MinQuestionLen = defaultMinQuestionLen
	}
	if config.ProviderRetryAfter <= 0 {
		config.ProviderRetryAfter = time.Hour
	}
	if config.Logger == nil {
		config.Logger = &NoopLogger{}
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetrics{}
	}
	return &Gateway{
		gen:      gen,
		tracker:  tracker,
		failover: failover,
		synth:    NewSynthesizer(),
		config:   config,
		logger:   config.Logger,
		metrics:  config.Metrics,
	}, nil
}

// Tracker returns the usage tracker for status reporting.
func (g *Gateway) Tracker() *Tracker { return g.tracker }

// Failover returns the failover manager for status reporting.
func (g *Gateway) Failover() *Failover { return g.failover }

// Ask runs the full request lifecycle for one question.
func (g *Gateway) Ask(ctx context.Context, question string) Result {
	start := time.Now()
	question = strings.TrimSpace(question)
	lang := DetectLanguage(question)

	if question == "" {
		return g.fail(start, lang, KindInvalidInput, ErrQuestionEmpty, 0)
	}
	if utf8.RuneCountInString(question) < g.config.MinQuestionLen {
		return g.fail(start, lang, KindInvalidInput, ErrQuestionTooShort, 0)
	}

	intent := Classify(question)

	// App-feature questions are answered from the canned intro without
	// touching quota or the failover manager.
	if intent.AppIntent {
		res := Result{
			Answer:       AppIntro(intent.Language),
			Model:        ModelAppIntro,
			Status:       StatusSuccess,
			Usage:        g.tracker.Snapshot(),
			ResponseTime: time.Since(start),
		}
		g.metrics.RecordRequest(res.Status, KindNone, res.ResponseTime)
		return res
	}

	decision := g.tracker.Admit()
	if !decision.Allowed {
		return g.fail(start, intent.Language, decision.Scope,
			&LimitError{Scope: decision.Scope, Limit: decision.Limit},
			decision.RetryAfter)
	}

	// Pessimistic charging: commit before the upstream attempt.
	g.tracker.Commit()

	handle, err := g.failover.Acquire(ctx)
	if err != nil {
		g.tracker.RecordFailure()
		kind := KindInternal
		switch {
		case errors.Is(err, ErrNotConfigured):
			kind = KindServiceUnavailable
		default:
			var exhausted *ExhaustedError
			if errors.As(err, &exhausted) {
				kind = KindModelsExhausted
			}
		}
		return g.fail(start, intent.Language, kind, err, 0)
	}

	prompt := g.synth.Build(question, intent.Language, intent.Topic)

	answer, status, genErr := g.generateWithRetry(ctx, handle, prompt)
	if genErr != nil {
		g.tracker.RecordFailure()
		g.tracker.RecordModelFailure(handle.ID, isNetworkError(genErr))

		switch {
		case isQuotaError(genErr):
			// The attempt never consumed provider quota; give the slot back.
			g.tracker.Refund()
			res := g.fail(start, intent.Language, KindUpstreamQuota, genErr, g.config.ProviderRetryAfter)
			res.Model = handle.ID
			return res
		case errors.Is(genErr, context.DeadlineExceeded):
			res := g.fail(start, intent.Language, KindUpstreamTimeout, genErr, 0)
			res.Model = handle.ID
			return res
		default:
			var exhausted *ExhaustedError
			if errors.As(genErr, &exhausted) {
				return g.fail(start, intent.Language, KindModelsExhausted, genErr, 0)
			}
			res := g.fail(start, intent.Language, KindInternal, genErr, 0)
			res.Model = handle.ID
			return res
		}
	}

	res := Result{
		Answer:       Format(answer),
		Model:        g.currentModel(handle),
		Status:       status,
		Usage:        g.tracker.Snapshot(),
		ResponseTime: time.Since(start),
	}
	g.metrics.RecordRequest(res.Status, KindNone, res.ResponseTime)
	g.logger.Info("question answered",
		Field{Key: "model", Value: res.Model},
		Field{Key: "topic", Value: string(intent.Topic)},
		Field{Key: "status", Value: string(res.Status)},
		Field{Key: "duration_ms", Value: res.ResponseTime.Milliseconds()})
	return res
}

// generateWithRetry invokes the provider through the cached model. When the
// model turns out to be gone upstream, the cache is invalidated, a fresh
// probe runs, and the request is retried once against the replacement.
func (g *Gateway) generateWithRetry(ctx context.Context, handle ActiveModel, prompt string) (string, Status, error) {
	answer, err := g.generate(ctx, handle.ID, prompt)
	if err == nil {
		return answer, StatusSuccess, nil
	}
	if !isModelGoneError(err) {
		return "", StatusError, err
	}

	g.logger.Warn("cached model gone, re-probing",
		Field{Key: "model", Value: handle.ID},
		Field{Key: "error", Value: err.Error()})
	g.failover.Invalidate(handle.ID)

	fresh, acqErr := g.failover.Acquire(ctx)
	if acqErr != nil {
		return "", StatusError, acqErr
	}
	answer, retryErr := g.generate(ctx, fresh.ID, prompt)
	if retryErr != nil {
		return "", StatusError, retryErr
	}
	return answer, StatusSuccessAfterRetry, nil
}

// generate races one provider call against the configured timeout. On expiry
// the call is abandoned: the goroutine drains into a buffered channel and the
// request moves on.
func (g *Gateway) generate(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	ch := make(chan outcome, 1)
	start := time.Now()
	go func() {
		text, err := g.gen.Generate(ctx, model, prompt)
		ch <- outcome{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		g.metrics.RecordProviderCall(model, time.Since(start), ctx.Err())
		return "", fmt.Errorf("provider call: %w", ctx.Err())
	case out := <-ch:
		g.metrics.RecordProviderCall(model, time.Since(start), out.err)
		if out.err != nil {
			return "", fmt.Errorf("provider call: %w", out.err)
		}
		return out.text, nil
	}
}

// currentModel prefers the live cached handle: a success_after_retry answer
// came from the replacement model, not the one first acquired.
func (g *Gateway) currentModel(acquired ActiveModel) string {
	if cached, ok := g.failover.Cached(); ok {
		return cached.ID
	}
	return acquired.ID
}

func (g *Gateway) fail(start time.Time, lang Language, kind Kind, err error, retryAfter time.Duration) Result {
	res := Result{
		Answer:       fallbackFor(kind, lang),
		Status:       StatusError,
		Kind:         kind,
		Usage:        g.tracker.Snapshot(),
		ResponseTime: time.Since(start),
		Diagnostic:   truncateDiagnostic(err),
		RetryAfter:   retryAfter,
	}
	g.metrics.RecordRequest(StatusError, kind, res.ResponseTime)
	g.logger.Error("request failed",
		Field{Key: "kind", Value: string(kind)},
		Field{Key: "error", Value: res.Diagnostic})
	return res
}
