package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// Timer measures the duration of an operation and logs it on Stop. Used
// around the daily replay so slow dataset processing shows up in logs.
type Timer struct {
	start time.Time
	name  string
	log   zerolog.Logger
}

// NewTimer creates a started timer with the given operation name
func NewTimer(name string, log zerolog.Logger) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
		log:   log,
	}
}

// Stop stops the timer, logs the duration and returns it
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)

	t.log.Debug().
		Str("operation", t.name).
		Dur("duration_ms", duration).
		Msg("Performance measurement")

	if duration > 10*time.Second {
		t.log.Warn().
			Str("operation", t.name).
			Dur("duration", duration).
			Msg("Slow operation detected")
	}

	return duration
}
