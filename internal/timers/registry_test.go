package timers

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestScheduleFires(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	defer r.Stop()

	var fired atomic.Int32
	r.Schedule("a", 20*time.Millisecond, func() { fired.Add(1) })

	assert.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, r.Pending())
}

func TestCancelPreventsFiring(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	defer r.Stop()

	var fired atomic.Int32
	r.Schedule("a", 30*time.Millisecond, func() { fired.Add(1) })
	r.Cancel("a")

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestPauseFreezesPendingTimers(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	defer r.Stop()

	var fired atomic.Int32
	r.Schedule("a", 40*time.Millisecond, func() { fired.Add(1) })
	r.Pause()

	// Well past the original deadline: a frozen timer must not fire
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
	assert.Equal(t, 1, r.Pending())

	r.Resume()
	assert.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestScheduleWhilePausedArmsOnResume(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	defer r.Stop()

	r.Pause()
	var fired atomic.Int32
	r.Schedule("a", 10*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	r.Resume()
	assert.Eventually(t, func() bool { return fired.Load() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestDuplicateIDReplacesTimer(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	defer r.Stop()

	var first, second atomic.Int32
	r.Schedule("a", 30*time.Millisecond, func() { first.Add(1) })
	r.Schedule("a", 30*time.Millisecond, func() { second.Add(1) })

	assert.Eventually(t, func() bool { return second.Load() == 1 },
		time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}

func TestStopCancelsEverything(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	var fired atomic.Int32
	r.Schedule("a", 20*time.Millisecond, func() { fired.Add(1) })
	r.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	// No new work after Stop
	r.Schedule("b", time.Millisecond, func() { fired.Add(1) })
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
