package gateway

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultMaxRetries  = 2
	defaultBaseDelay   = 500 * time.Millisecond
	defaultProbePrompt = "Hello"
)

// FailoverConfig holds failover manager configuration.
type FailoverConfig struct {
	// Candidates is the ranked model list, tried first to last.
	Candidates []string

	// MaxRetries is the number of probe attempts per candidate (default: 2).
	MaxRetries int

	// BaseDelay scales the linear backoff between attempts: the wait after
	// attempt n is n*BaseDelay (default: 500ms).
	BaseDelay time.Duration

	// ProbePrompt is the lightweight generation input used to verify a
	// candidate (default: "Hello").
	ProbePrompt string

	// Logger is used for structured logging (default: NoopLogger).
	Logger Logger

	// Metrics is used for tracking probes and cache behavior (default: NoopMetrics).
	Metrics Metrics
}

// Failover owns the ranked candidate list and the single cached working
// model. The cache is a tagged state: nil means empty, otherwise it holds the
// active handle, which is replaced as a whole and never mutated in place.
//
// Cache validation is lazy: Acquire trusts the cached handle without a live
// call, and the orchestrator invalidates it when an actual request through it
// fails. This avoids doubling upstream traffic on every request.
type Failover struct {
	gen     Generator // nil means no provider client could be constructed
	tracker *Tracker
	config  FailoverConfig
	logger  Logger
	metrics Metrics

	mu     sync.Mutex
	cached *ActiveModel

	// group collapses concurrent probe runs into one; a second caller during
	// probing waits for the in-flight result instead of probing again.
	group singleflight.Group

	// sleep is swapped for a stub in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFailover creates a failover manager. A nil generator models the
// uninitialized state: every acquisition fails fast with ErrNotConfigured.
// The tracker, when present, receives per-model failure counts.
func NewFailover(gen Generator, tracker *Tracker, config FailoverConfig) *Failover {
	if config.MaxRetries <= 0 {
		config.MaxRetries = defaultMaxRetries
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = defaultBaseDelay
	}
	if config.ProbePrompt == "" {
		config.ProbePrompt = defaultProbePrompt
	}
	if config.Logger == nil {
		config.Logger = &NoopLogger{}
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetrics{}
	}
	return &Failover{
		gen:     gen,
		tracker: tracker,
		config:  config,
		logger:  config.Logger,
		metrics: config.Metrics,
		sleep:   sleepCtx,
	}
}

// Configured reports whether a provider client exists.
func (f *Failover) Configured() bool { return f.gen != nil }

// Candidates returns the ranked model list.
func (f *Failover) Candidates() []string {
	out := make([]string, len(f.config.Candidates))
	copy(out, f.config.Candidates)
	return out
}

// Cached returns the current active model, if any.
func (f *Failover) Cached() (ActiveModel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached == nil {
		return ActiveModel{}, false
	}
	return *f.cached, true
}

// Acquire returns a working model. The fast path returns the cached handle;
// otherwise one probe run walks the candidate list in priority order and
// caches the first candidate that answers.
func (f *Failover) Acquire(ctx context.Context) (ActiveModel, error) {
	if f.gen == nil {
		return ActiveModel{}, ErrNotConfigured
	}

	f.mu.Lock()
	if f.cached != nil {
		handle := *f.cached
		f.mu.Unlock()
		f.metrics.RecordModelCacheHit()
		return handle, nil
	}
	f.mu.Unlock()

	f.metrics.RecordModelCacheMiss()
	v, err, _ := f.group.Do("probe", func() (interface{}, error) {
		return f.probe(ctx)
	})
	if err != nil {
		return ActiveModel{}, err
	}
	return v.(ActiveModel), nil
}

// Invalidate drops the cached handle if it still refers to the given model,
// forcing the next acquisition back into probing.
func (f *Failover) Invalidate(model string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached != nil && f.cached.ID == model {
		f.cached = nil
		f.logger.Info("cached model invalidated", Field{Key: "model", Value: model})
	}
}

func (f *Failover) probe(ctx context.Context) (ActiveModel, error) {
	failures := make(map[string]int)
	networkErrors := 0

	for _, model := range f.config.Candidates {
		for attempt := 1; attempt <= f.config.MaxRetries; attempt++ {
			_, err := f.gen.Generate(ctx, model, f.config.ProbePrompt)
			if err == nil {
				handle := ActiveModel{ID: model, VerifiedAt: time.Now().UTC()}
				f.mu.Lock()
				f.cached = &handle
				f.mu.Unlock()

				f.metrics.RecordProbe(model, true)
				f.logger.Info("model verified",
					Field{Key: "model", Value: model},
					Field{Key: "attempt", Value: attempt})
				return handle, nil
			}

			failures[model]++
			network := isNetworkError(err)
			if network {
				networkErrors++
			}
			if f.tracker != nil {
				f.tracker.RecordModelFailure(model, network)
			}
			f.metrics.RecordProbe(model, false)
			f.logger.Warn("probe failed",
				Field{Key: "model", Value: model},
				Field{Key: "attempt", Value: attempt},
				Field{Key: "error", Value: err.Error()})

			if attempt < f.config.MaxRetries {
				if serr := f.sleep(ctx, time.Duration(attempt)*f.config.BaseDelay); serr != nil {
					return ActiveModel{}, &ExhaustedError{Failures: failures, NetworkErrors: networkErrors}
				}
			}
		}
	}

	return ActiveModel{}, &ExhaustedError{Failures: failures, NetworkErrors: networkErrors}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
