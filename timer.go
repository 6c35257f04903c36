package tt

import (
	"sync"
	"time"
)

// TimerSource arms a single absolute-mode wakeup and reports when it
// fires. SystemTimerSource backs it with timerfd on Linux and a plain
// time.Timer everywhere else; the tests' fakeTimerSource drives it by hand.
// The handler loop never sleeps on anything else, so swapping the source
// is enough to make the whole loop deterministic under test.
type TimerSource interface {
	// Arm schedules a single wakeup at absoluteWall and returns a channel
	// that receives exactly one value when it fires.
	Arm(absoluteWall time.Time) <-chan struct{}
	// Stop cancels a pending Arm, if any. It is safe to call when idle.
	Stop()
}

// SendCallback hands an emitted TT frame to the surrounding datapath. The
// core never touches a socket or a port queue directly; it only ever
// calls back into one.
type SendCallback func(flowID uint16, frame []byte)

// MissCallback is invoked when the handler wakes after its intended send
// instant has already passed. Misses are logged rather than returned as
// an error, since the handler has nowhere to return one to.
type MissCallback func(flowID uint16, sendTimeAbs time.Time)

// CollisionCallback is invoked once per collision discovered at dispatch
// time.
type CollisionCallback func(c Collision)

// DropCallback is invoked when the handler fires for a flow with no
// valid staged frame: either nothing was staged, or what was staged is
// older than one macro period.
type DropCallback func(flowID uint16)

// Timer drives a port's send schedule. It owns no FlowTable; Start is
// handed an already-built SendCache (normally produced by Dispatch) and
// a Clock to align against.
type Timer struct {
	clock       Clock
	source      TimerSource
	advanceTime time.Duration
	runnerFn    Runner

	mu     sync.Mutex
	active bool
	cache  *SendCache
	done   chan struct{}
	cancel chan struct{}
}

// NewTimer returns an idle Timer driven by clock and source, pre-arming
// advanceTime ahead of each computed instant so the handler has room to
// busy-wait into alignment. Its handler loop runs through an
// OnDemandRoutineRunner; use SetRunner to install a different one.
func NewTimer(clock Clock, source TimerSource, advanceTime time.Duration) *Timer {
	return &Timer{clock: clock, source: source, advanceTime: advanceTime, runnerFn: OnDemandRoutineRunner{}}
}

// SetRunner replaces the concurrency model Start uses to launch the
// handler loop. Must be called while the timer is idle.
func (tm *Timer) SetRunner(r Runner) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.runnerFn = r
}

// IsRunning reports whether the timer is currently armed or executing its
// handler.
func (tm *Timer) IsRunning() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.active
}

// Start transitions Idle -> Armed: it records cache, computes the first
// fire instant, and arms the underlying timer source. Start is a no-op
// if already running; callers that want to rebuild the schedule must
// Cancel first.
func (tm *Timer) Start(cache *SendCache, send SendCallback, buf *FrameBuffer, miss MissCallback, drop DropCallback) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.active {
		return
	}

	tm.cache = cache
	tm.active = true
	tm.done = make(chan struct{})
	tm.cancel = make(chan struct{})

	tm.runnerFn.Run(func() { tm.loop(cache, send, buf, miss, drop, tm.cancel) })
}

// Cancel transitions Armed -> Idle. It is synchronous: it does not return
// until the handler that was executing (if any) has returned, and no
// further handler execution begins once Cancel returns.
func (tm *Timer) Cancel() {
	tm.mu.Lock()
	if !tm.active {
		tm.mu.Unlock()
		return
	}
	tm.active = false
	done := tm.done
	cancel := tm.cancel
	tm.mu.Unlock()

	tm.source.Stop()
	close(cancel)
	<-done
}

// loop is the timer handler: on every expiry it computes the next
// instant via the cache's binary search, rearms, busy-waits into fine
// alignment, and emits. cancelCh unblocks a pending Arm so Cancel can
// return promptly instead of waiting for the next real expiry.
func (tm *Timer) loop(cache *SendCache, send SendCallback, buf *FrameBuffer, miss MissCallback, drop DropCallback, cancelCh chan struct{}) {
	defer close(tm.done)

	global := int64(tm.clock.GlobalTime())
	modTime := cache.MacroPeriod - global%cache.MacroPeriod
	if modTime == cache.MacroPeriod {
		modTime = 0
	}
	firstWait := modTime - tm.advanceTime.Nanoseconds() // may be negative; armed immediately then
	firstAbs := tm.clock.WallNow().Add(time.Duration(firstWait))

	fire := tm.source.Arm(firstAbs)

	for {
		select {
		case <-fire:
		case <-cancelCh:
			return
		}

		tm.mu.Lock()
		active := tm.active
		tm.mu.Unlock()
		if !active {
			return
		}

		global := int64(tm.clock.GlobalTime())
		modNow := global % cache.MacroPeriod

		waitNs, flowID, idx := cache.Next(modNow)
		sendTimeAbs := tm.clock.WallNow().Add(time.Duration((cache.Times[idx] - modNow + cache.MacroPeriod) % cache.MacroPeriod))

		if waitNs == 0 {
			waitNs = sendTimeAbs.Sub(tm.clock.WallNow()).Nanoseconds() + tm.advanceTime.Nanoseconds()
		}

		nextAbs := tm.clock.WallNow().Add(time.Duration(waitNs) - tm.advanceTime)
		fire = tm.source.Arm(nextAbs)

		data, stagedAt, ok := buf.Take(flowID)

		now := tm.clock.WallNow()
		if sendTimeAbs.Before(now) {
			if miss != nil {
				miss(flowID, sendTimeAbs)
			}
			continue
		}

		if !ok || now.Sub(stagedAt) > time.Duration(cache.MacroPeriod) {
			if drop != nil {
				drop(flowID)
			}
			continue
		}

		for tm.clock.WallNow().Add(tm.advanceTime).Before(sendTimeAbs) {
			// Busy-wait into fine alignment beyond what the
			// underlying timer source can resolve on its own.
		}

		send(flowID, append([]byte(nil), data...))
	}
}
