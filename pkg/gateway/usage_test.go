package gateway_test

import (
	"testing"
	"time"

	"github.com/Tiffanyxxx3238/poopalooza-server/pkg/gateway"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(t *testing.T, clock *fakeClock, perMinute, perDay int) *gateway.Tracker {
	t.Helper()
	state := gateway.NewUsageStateWithClock(clock.now)
	tracker, err := gateway.NewTracker(state, gateway.TrackerConfig{
		PerMinute: perMinute,
		PerDay:    perDay,
	})
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	return tracker
}

func TestNewTracker_NilState(t *testing.T) {
	_, err := gateway.NewTracker(nil, gateway.TrackerConfig{})
	if err != gateway.ErrStateRequired {
		t.Errorf("expected ErrStateRequired, got %v", err)
	}
}

func TestTracker_MinuteLimit(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, clock, 5, 100)

	for i := 0; i < 5; i++ {
		dec := tracker.Admit()
		if !dec.Allowed {
			t.Fatalf("request %d should be admitted", i+1)
		}
		tracker.Commit()
	}

	dec := tracker.Admit()
	if dec.Allowed {
		t.Fatal("6th request should be denied")
	}
	if dec.Scope != gateway.KindMinuteLimit {
		t.Errorf("expected minute_limit, got %v", dec.Scope)
	}
	if dec.Limit != 5 {
		t.Errorf("expected limit 5, got %d", dec.Limit)
	}
	if dec.RetryAfter <= 0 || dec.RetryAfter > time.Minute {
		t.Errorf("unexpected retry-after %v", dec.RetryAfter)
	}
}

func TestTracker_MinuteWindowReset(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, clock, 2, 100)

	tracker.Commit()
	tracker.Commit()
	if dec := tracker.Admit(); dec.Allowed {
		t.Fatal("expected minute denial")
	}

	clock.advance(61 * time.Second)
	if dec := tracker.Admit(); !dec.Allowed {
		t.Fatal("expected admission after window expiry")
	}
	if got := tracker.Snapshot().Minute; got != 0 {
		t.Errorf("expected minute count 0 after reset, got %d", got)
	}
}

func TestTracker_DailyCheckedBeforeMinute(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, clock, 1, 2)

	tracker.Commit()
	clock.advance(2 * time.Minute)
	tracker.Commit()
	clock.advance(2 * time.Minute)

	// Both limits are now exceeded in spirit; daily must win.
	dec := tracker.Admit()
	if dec.Allowed {
		t.Fatal("expected denial")
	}
	if dec.Scope != gateway.KindDailyLimit {
		t.Errorf("expected daily_limit, got %v", dec.Scope)
	}
}

func TestTracker_DailyResetOncePerDate(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)}
	tracker := newTestTracker(t, clock, 100, 100)

	tracker.Commit()
	tracker.Commit()
	tracker.RecordFailure()

	clock.advance(2 * time.Minute) // crosses midnight
	snap := tracker.Snapshot()
	if snap.Today != 0 {
		t.Errorf("expected daily count 0 after date change, got %d", snap.Today)
	}

	// The expired day is archived exactly once.
	history := tracker.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(history))
	}
	if history[0].Date != "2026-03-10" || history[0].Requests != 2 || history[0].Failed != 1 {
		t.Errorf("unexpected history record %+v", history[0])
	}

	// Repeated snapshots on the same date must not archive again.
	clock.advance(time.Hour)
	tracker.Commit()
	if got := len(tracker.History()); got != 1 {
		t.Errorf("expected history to stay at 1 record, got %d", got)
	}
	if got := tracker.Snapshot().Today; got != 1 {
		t.Errorf("expected daily count 1, got %d", got)
	}
}

func TestTracker_DeniedDoesNotMutate(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, clock, 1, 100)

	tracker.Commit()
	before := tracker.Snapshot()

	for i := 0; i < 3; i++ {
		if dec := tracker.Admit(); dec.Allowed {
			t.Fatal("expected denial")
		}
	}

	after := tracker.Snapshot()
	if before.Today != after.Today || before.Minute != after.Minute || before.TotalRequests != after.TotalRequests {
		t.Errorf("denied admissions mutated counters: before %+v after %+v", before, after)
	}
}

func TestTracker_RefundNetZero(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, clock, 10, 100)

	before := tracker.Snapshot()
	tracker.Commit()
	tracker.Refund()
	after := tracker.Snapshot()

	if after.Today != before.Today || after.Minute != before.Minute {
		t.Errorf("commit+refund not net zero: before %+v after %+v", before, after)
	}
}

func TestTracker_RefundFloorsAtZero(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, clock, 10, 100)

	tracker.Refund()
	tracker.Refund()
	snap := tracker.Snapshot()
	if snap.Today != 0 || snap.Minute != 0 {
		t.Errorf("refund went below zero: %+v", snap)
	}
}

func TestTracker_ModelFailureCounts(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, clock, 10, 100)

	tracker.RecordModelFailure("gemini-pro", false)
	tracker.RecordModelFailure("gemini-pro", true)
	tracker.RecordModelFailure("gemini-1.5-flash", true)

	snap := tracker.Snapshot()
	if snap.ModelFailures["gemini-pro"] != 2 {
		t.Errorf("expected 2 failures for gemini-pro, got %d", snap.ModelFailures["gemini-pro"])
	}
	if snap.ModelFailures["gemini-1.5-flash"] != 1 {
		t.Errorf("expected 1 failure for gemini-1.5-flash, got %d", snap.ModelFailures["gemini-1.5-flash"])
	}
	if snap.NetworkErrors != 2 {
		t.Errorf("expected 2 network errors, got %d", snap.NetworkErrors)
	}
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	tracker := newTestTracker(t, clock, 10, 100)

	tracker.RecordModelFailure("gemini-pro", false)
	snap := tracker.Snapshot()
	snap.ModelFailures["gemini-pro"] = 99

	if got := tracker.Snapshot().ModelFailures["gemini-pro"]; got != 1 {
		t.Errorf("snapshot mutation leaked into state: got %d", got)
	}
}
