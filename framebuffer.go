package tt

import (
	"sync"
	"time"
)

// stagedFrame is one pending frame waiting for its flow's next fire
// instant, along with the wall-clock instant it was staged at. The timer
// handler drops anything staler than one macro period.
type stagedFrame struct {
	data      []byte
	stagedAt  time.Time
}

// FrameBuffer is the per-port, per-flow staging area backing a port's
// schedule state, scoped per port: ingress classification sets a slot by
// flow id, the timer handler consumes it with an exchange-to-nil. Only
// one frame may be staged per flow at a time; a later Stage before the
// timer consumes the previous one simply overwrites it.
type FrameBuffer struct {
	mu    sync.Mutex
	slots map[uint16]*stagedFrame
}

// NewFrameBuffer returns an empty FrameBuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{slots: make(map[uint16]*stagedFrame)}
}

// Stage records data as the pending frame for flowID, stamped with now.
// Called from the ingress fast path; must not block.
func (b *FrameBuffer) Stage(flowID uint16, data []byte, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots[flowID] = &stagedFrame{data: data, stagedAt: now}
}

// Take detaches and returns the frame staged for flowID, leaving the slot
// empty (the exchange-to-nil the timer handler relies on so a frame is
// emitted at most once).
func (b *FrameBuffer) Take(flowID uint16) ([]byte, time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, ok := b.slots[flowID]
	if !ok {
		return nil, time.Time{}, false
	}
	delete(b.slots, flowID)
	return f.data, f.stagedAt, true
}
