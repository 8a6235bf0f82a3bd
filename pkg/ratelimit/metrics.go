package ratelimit

// MetricsRecorder receives counters and latency observations from the
// facade. Implement it against your metrics backend and inject it with
// WithRecorder.
type MetricsRecorder interface {
	Add(name string, value float64, tags map[string]string)
	Observe(name string, value float64, tags map[string]string)
}

// NoOpRecorder is the default recorder and does nothing. It exists so the
// hot path never has to check for a nil recorder.
type NoOpRecorder struct{}

func (NoOpRecorder) Add(name string, value float64, tags map[string]string)     {}
func (NoOpRecorder) Observe(name string, value float64, tags map[string]string) {}
