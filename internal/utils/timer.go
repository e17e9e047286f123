package utils

import "time"

// Timer measures elapsed wall-clock time. Create one with [NewTimer], which
// starts it immediately; [Timer.Stop] captures and returns the elapsed
// duration, which stays available via [Timer.Duration].
type Timer struct {
	start    time.Time
	duration time.Duration
}

// NewTimer returns a Timer already running.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Restart begins a fresh measurement without allocating a new Timer.
func (t *Timer) Restart() {
	t.start = time.Now()
}

// Stop captures the elapsed time since construction (or the last Restart)
// and returns it.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the duration captured by the most recent Stop, or zero if
// Stop has not been called.
func (t *Timer) Duration() time.Duration {
	return t.duration
}
