package gateway

import (
	"sync"
	"time"
)

const (
	defaultPerMinuteLimit = 10
	defaultPerDayLimit    = 1500

	dayKeyFormat = "2006-01-02"

	// historyDays bounds the rolling daily history.
	historyDays = 7
)

// UsageState holds the process-wide usage counters. It is created once at
// startup and shared by reference; all mutation goes through a Tracker.
type UsageState struct {
	mu sync.Mutex

	dailyCount        int
	minuteCount       int
	dailyResetKey     string
	minuteWindowStart time.Time

	totalRequests  int
	failedRequests int
	failedToday    int
	networkErrors  int
	modelFailures  map[string]int

	history []DayRecord

	now func() time.Time
}

// NewUsageState creates usage state backed by the wall clock.
func NewUsageState() *UsageState {
	return NewUsageStateWithClock(time.Now)
}

// NewUsageStateWithClock creates usage state with an injected clock. Tests use
// this to drive reset behavior deterministically.
func NewUsageStateWithClock(now func() time.Time) *UsageState {
	t := now().UTC()
	return &UsageState{
		dailyResetKey:     t.Format(dayKeyFormat),
		minuteWindowStart: t,
		modelFailures:     make(map[string]int),
		now:               now,
	}
}

// resetIfExpired rolls the counters when their windows have passed. Callers
// must hold the mutex. The daily counter resets exactly once per calendar-date
// change; the expiring day is pushed onto the rolling history.
func (s *UsageState) resetIfExpired(now time.Time) {
	key := now.UTC().Format(dayKeyFormat)
	if key != s.dailyResetKey {
		s.history = append(s.history, DayRecord{
			Date:     s.dailyResetKey,
			Requests: s.dailyCount,
			Failed:   s.failedToday,
		})
		if len(s.history) > historyDays {
			s.history = s.history[len(s.history)-historyDays:]
		}
		s.dailyCount = 0
		s.failedToday = 0
		s.dailyResetKey = key
	}

	if now.Sub(s.minuteWindowStart) > time.Minute {
		s.minuteCount = 0
		s.minuteWindowStart = now
	}
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed    bool
	Scope      Kind // KindDailyLimit or KindMinuteLimit when denied
	Limit      int
	RetryAfter time.Duration
}

// TrackerConfig holds usage tracker configuration.
type TrackerConfig struct {
	// PerMinute is the local per-minute admission limit (default: 10).
	PerMinute int

	// PerDay is the local per-day admission limit (default: 1500).
	PerDay int

	// Logger is used for structured logging (default: NoopLogger).
	Logger Logger

	// Metrics is used for tracking admission decisions (default: NoopMetrics).
	Metrics Metrics
}

// Tracker gate-keeps chargeable requests against the shared usage state.
type Tracker struct {
	state   *UsageState
	config  TrackerConfig
	logger  Logger
	metrics Metrics
}

// NewTracker creates a usage tracker bound to the given state.
func NewTracker(state *UsageState, config TrackerConfig) (*Tracker, error) {
	if state == nil {
		return nil, ErrStateRequired
	}
	if config.PerMinute <= 0 {
		config.PerMinute = defaultPerMinuteLimit
	}
	if config.PerDay <= 0 {
		config.PerDay = defaultPerDayLimit
	}
	if config.Logger == nil {
		config.Logger = &NoopLogger{}
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetrics{}
	}
	return &Tracker{
		state:   state,
		config:  config,
		logger:  config.Logger,
		metrics: config.Metrics,
	}, nil
}

// PerMinuteLimit returns the configured per-minute admission limit.
func (t *Tracker) PerMinuteLimit() int { return t.config.PerMinute }

// PerDayLimit returns the configured per-day admission limit.
func (t *Tracker) PerDayLimit() int { return t.config.PerDay }

// Admit checks the request against both limits, resetting expired windows
// first. The daily limit is evaluated before the minute limit. A denied
// request never mutates the counters.
func (t *Tracker) Admit() Decision {
	s := t.state
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	s.resetIfExpired(now)

	if s.dailyCount >= t.config.PerDay {
		t.metrics.RecordAdmission(false, KindDailyLimit)
		t.logger.Warn("daily limit reached",
			Field{Key: "count", Value: s.dailyCount},
			Field{Key: "limit", Value: t.config.PerDay})
		return Decision{
			Scope:      KindDailyLimit,
			Limit:      t.config.PerDay,
			RetryAfter: untilNextDay(now),
		}
	}

	if s.minuteCount >= t.config.PerMinute {
		t.metrics.RecordAdmission(false, KindMinuteLimit)
		return Decision{
			Scope:      KindMinuteLimit,
			Limit:      t.config.PerMinute,
			RetryAfter: s.minuteWindowStart.Add(time.Minute).Sub(now),
		}
	}

	t.metrics.RecordAdmission(true, KindNone)
	return Decision{Allowed: true}
}

// Commit charges one request against both counters. It is called after a
// successful admission and before the upstream call (pessimistic charging).
func (t *Tracker) Commit() {
	s := t.state
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetIfExpired(s.now().UTC())
	s.dailyCount++
	s.minuteCount++
	s.totalRequests++
}

// Refund reverses one committed charge, floored at zero. It is used when the
// provider reports its own throttling: the request never consumed upstream
// quota, so it must not count against the local budget either.
func (t *Tracker) Refund() {
	s := t.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dailyCount > 0 {
		s.dailyCount--
	}
	if s.minuteCount > 0 {
		s.minuteCount--
	}
}

// RecordFailure marks one request as failed.
func (t *Tracker) RecordFailure() {
	s := t.state
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failedRequests++
	s.failedToday++
}

// RecordModelFailure increments a candidate's failure counter, and the
// network-error counter when the failure looks like a transport problem.
func (t *Tracker) RecordModelFailure(model string, network bool) {
	s := t.state
	s.mu.Lock()
	defer s.mu.Unlock()

	s.modelFailures[model]++
	if network {
		s.networkErrors++
	}
}

// Snapshot copies the current counters for reporting.
func (t *Tracker) Snapshot() UsageSnapshot {
	s := t.state
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	s.resetIfExpired(now)

	failures := make(map[string]int, len(s.modelFailures))
	for m, c := range s.modelFailures {
		failures[m] = c
	}

	return UsageSnapshot{
		Today:           s.dailyCount,
		RemainingToday:  maxInt(t.config.PerDay-s.dailyCount, 0),
		Minute:          s.minuteCount,
		RemainingMinute: maxInt(t.config.PerMinute-s.minuteCount, 0),
		TotalRequests:   s.totalRequests,
		FailedRequests:  s.failedRequests,
		NetworkErrors:   s.networkErrors,
		ModelFailures:   failures,
		MinuteResetAt:   s.minuteWindowStart.Add(time.Minute),
		DailyResetAt:    nextDayStart(now),
	}
}

// History returns a copy of the rolling daily history, oldest first.
func (t *Tracker) History() []DayRecord {
	s := t.state
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]DayRecord, len(s.history))
	copy(out, s.history)
	return out
}

func nextDayStart(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

func untilNextDay(now time.Time) time.Duration {
	return nextDayStart(now).Sub(now)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
