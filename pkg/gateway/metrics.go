package gateway

import "time"

// Metrics defines the interface for tracking gateway operations.
type Metrics interface {
	// RecordRequest records a completed request with its final status.
	RecordRequest(status Status, kind Kind, duration time.Duration)

	// RecordAdmission records an admission decision.
	RecordAdmission(allowed bool, scope Kind)

	// RecordProviderCall records the duration and outcome of an upstream call.
	RecordProviderCall(model string, duration time.Duration, err error)

	// RecordProbe records a single probe attempt against a candidate model.
	RecordProbe(model string, success bool)

	// RecordModelCacheHit records an acquisition served from the cached model.
	RecordModelCacheHit()

	// RecordModelCacheMiss records an acquisition that required probing.
	RecordModelCacheMiss()
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordRequest(status Status, kind Kind, duration time.Duration)   {}
func (n *NoopMetrics) RecordAdmission(allowed bool, scope Kind)                         {}
func (n *NoopMetrics) RecordProviderCall(model string, duration time.Duration, err error) {}
func (n *NoopMetrics) RecordProbe(model string, success bool)                           {}
func (n *NoopMetrics) RecordModelCacheHit()                                             {}
func (n *NoopMetrics) RecordModelCacheMiss()                                            {}
