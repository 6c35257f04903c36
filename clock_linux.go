//go:build linux

package tt

import (
	"time"

	"golang.org/x/sys/unix"
)

// SystemClock is the production Clock implementation. GlobalTime reads
// CLOCK_MONOTONIC directly through golang.org/x/sys/unix, the same clock
// the Linux timerfd-based SystemTimerSource arms against in absolute mode,
// so the two never drift relative to each other.
type SystemClock struct{}

// NewSystemClock returns the production Clock for the current platform.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// GlobalTime implements Clock.
func (SystemClock) GlobalTime() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// CLOCK_MONOTONIC is always present on Linux; a failure here
		// means the process environment is broken beyond repair.
		panic("tt: clock_gettime(CLOCK_MONOTONIC): " + err.Error())
	}
	return time.Duration(ts.Nano())
}

// WallNow implements Clock.
func (SystemClock) WallNow() time.Time {
	return time.Now()
}
