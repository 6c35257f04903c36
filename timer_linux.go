//go:build linux

package tt

import (
	"time"

	"golang.org/x/sys/unix"
)

// SystemTimerSource arms wakeups with a Linux timerfd in absolute
// (TFD_TIMER_ABSTIME) mode, the same facility the host kernel's own
// high-resolution timers use, instead of relying on the Go runtime's
// timer wheel for the hot scheduling path.
type SystemTimerSource struct {
	fd int
}

// NewSystemTimerSource creates a monotonic-clock timerfd.
func NewSystemTimerSource() (*SystemTimerSource, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		return nil, err
	}
	return &SystemTimerSource{fd: fd}, nil
}

// Arm implements TimerSource by re-arming the timerfd to the given
// absolute wall-clock instant, translated to the monotonic clock's own
// epoch, and starting a goroutine that blocks on the fd's readiness.
func (s *SystemTimerSource) Arm(absoluteWall time.Time) <-chan struct{} {
	ch := make(chan struct{}, 1)

	d := time.Until(absoluteWall)
	if d < 0 {
		d = 0
	}

	var now unix.Timespec
	err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &now)
	if err == nil {
		spec := unix.ItimerSpec{
			Value: unix.NsecToTimespec(now.Nano() + d.Nanoseconds()),
		}
		err = unix.TimerfdSettime(s.fd, unix.TFD_TIMER_ABSTIME, &spec, nil)
	}
	if err != nil {
		// Fall back to firing immediately rather than wedging the
		// handler loop; the miss-detection logic downstream will
		// log it as a late expiry.
		ch <- struct{}{}
		return ch
	}

	go func() {
		var buf [8]byte
		if _, err := unix.Read(s.fd, buf[:]); err == nil {
			ch <- struct{}{}
		}
	}()

	return ch
}

// Stop disarms the timerfd. A Read already blocked in Arm's goroutine is
// only unblocked by closing the descriptor; Stop alone just prevents a
// future expiry, which is all the handler loop needs since it also
// selects on its own cancellation channel.
func (s *SystemTimerSource) Stop() {
	var spec unix.ItimerSpec
	unix.TimerfdSettime(s.fd, 0, &spec, nil)
}

// Close releases the underlying file descriptor, unblocking any Read
// still pending from a prior Arm.
func (s *SystemTimerSource) Close() error {
	return unix.Close(s.fd)
}
