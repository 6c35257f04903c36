package tt

import (
	"sync"
	"time"
)

// DefaultAdvanceTime is the timer pre-arm slack used when a port does not
// configure its own advance_time tunable.
const DefaultAdvanceTime = 50 * time.Microsecond

// sendInfo pairs a dispatched SendCache with the advance_time it was
// armed with.
type sendInfo struct {
	cache       *SendCache
	advanceTime time.Duration
}

// Port owns one TT-scheduled port's full ScheduleState: its send and
// arrive tables, the dispatched send cache, the timer driving emission,
// and the per-flow frame staging area. ScheduleState in the spec is
// allocated lazily on first entry insertion (see allocateLocked below);
// here the fields are simply nil until that happens.
type Port struct {
	Name string

	clock  Clock
	source func() (TimerSource, error)
	send   SendCallback
	miss   MissCallback
	onCol  CollisionCallback
	onDrop DropCallback

	mu         sync.Mutex
	sendTable  *FlowTable
	arriveTable *FlowTable
	info       *sendInfo
	timer      *Timer
	buffer     *FrameBuffer
}

// NewPort returns a Port with no ScheduleState allocated yet. newSource
// constructs a fresh TimerSource each time Start dispatches a new
// schedule; send delivers emitted frames, miss, onCollision, and onDrop
// are diagnostic hooks (any may be nil).
func NewPort(name string, clock Clock, newSource func() (TimerSource, error), send SendCallback, miss MissCallback, onCollision CollisionCallback, onDrop DropCallback) *Port {
	return &Port{
		Name:   name,
		clock:  clock,
		source: newSource,
		send:   send,
		miss:   miss,
		onCol:  onCollision,
		onDrop: onDrop,
	}
}

// allocateLocked installs an empty ScheduleState if one isn't present
// yet. Must be called with p.mu held.
func (p *Port) allocateLocked() {
	if p.buffer == nil {
		p.buffer = NewFrameBuffer()
	}
}

func (p *Port) tableLocked(dir Direction) **FlowTable {
	if dir == Send {
		return &p.sendTable
	}
	return &p.arriveTable
}

// InsertSend installs entry into the send table, auto-allocating
// ScheduleState on first use. If the table did not exist before this
// call and the insert fails, the just-allocated state is unwound so a
// failed insert leaves no trace.
func (p *Port) InsertSend(entry *FlowEntry) error {
	return p.insert(Send, entry)
}

// InsertArrive installs entry into the arrive table, with the same
// auto-alloc/unwind discipline as InsertSend.
func (p *Port) InsertArrive(entry *FlowEntry) error {
	return p.insert(Arrive, entry)
}

func (p *Port) insert(dir Direction, entry *FlowEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tbl := p.tableLocked(dir)
	justAllocated := *tbl == nil
	bufferAllocated := p.buffer == nil

	p.allocateLocked()
	if justAllocated {
		*tbl = NewFlowTable()
	}

	if err := (*tbl).Insert(entry); err != nil {
		if justAllocated {
			*tbl = nil
		}
		if bufferAllocated {
			p.buffer = nil
		}
		return err
	}
	return nil
}

// DeleteSend removes flowID from the send table. A missing table or a
// missing id is a no-op.
func (p *Port) DeleteSend(flowID uint16) {
	p.delete(Send, flowID)
}

// DeleteArrive removes flowID from the arrive table.
func (p *Port) DeleteArrive(flowID uint16) {
	p.delete(Arrive, flowID)
}

func (p *Port) delete(dir Direction, flowID uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tbl := *p.tableLocked(dir)
	if tbl == nil {
		return
	}
	tbl.Delete(flowID)
}

// LookupSend performs an RCU-safe read against the send table.
func (p *Port) LookupSend(flowID uint16) (*FlowEntry, bool) {
	return p.lookup(Send, flowID)
}

// LookupArrive performs an RCU-safe read against the arrive table.
func (p *Port) LookupArrive(flowID uint16) (*FlowEntry, bool) {
	return p.lookup(Arrive, flowID)
}

func (p *Port) lookup(dir Direction, flowID uint16) (*FlowEntry, bool) {
	p.mu.Lock()
	tbl := *p.tableLocked(dir)
	p.mu.Unlock()

	if tbl == nil {
		return nil, false
	}
	return tbl.Lookup(flowID)
}

// DropSendTable deferred-frees the send table and resets send_info. A
// reader (the timer handler) already holding the old SendCache keeps
// running against it until the handler's own Cancel/re-Start cycle:
// there is no explicit epoch here because Go garbage collection retires
// the old table and cache once the last reference (the goroutine's
// local variable) drops.
func (p *Port) DropSendTable() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sendTable = nil
	p.info = nil
}

// Start transitions the timer Idle -> Armed: it cancels any running
// timer, dispatches the current send table into a SendCache, applies
// advanceTime, and arms a fresh Timer. It fails with whatever error
// Dispatch reports, leaving the port Idle.
func (p *Port) Start(advanceTime time.Duration) error {
	p.mu.Lock()
	sendTable := p.sendTable
	p.mu.Unlock()

	if sendTable == nil {
		return ErrNothingToSchedule
	}

	if p.timer != nil {
		p.timer.Cancel()
	}

	cache, collisions, err := Dispatch(sendTable)
	if err != nil {
		return err
	}
	if p.onCol != nil {
		for _, c := range collisions {
			p.onCol(c)
		}
	}

	src, err := p.source()
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.info = &sendInfo{cache: cache, advanceTime: advanceTime}
	p.timer = NewTimer(p.clock, src, advanceTime)
	buf := p.buffer
	timer := p.timer
	p.mu.Unlock()

	timer.Start(cache, p.send, buf, p.miss, p.onDrop)
	return nil
}

// IsRunning reports whether the port's timer is currently armed.
func (p *Port) IsRunning() bool {
	p.mu.Lock()
	timer := p.timer
	p.mu.Unlock()

	if timer == nil {
		return false
	}
	return timer.IsRunning()
}

// Finish cancels the running timer, if any, and releases the port's
// entire ScheduleState.
func (p *Port) Finish() {
	p.mu.Lock()
	timer := p.timer
	p.mu.Unlock()

	if timer != nil {
		timer.Cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.sendTable = nil
	p.arriveTable = nil
	p.info = nil
	p.timer = nil
	p.buffer = nil
}

// Stage records an inbound or locally-generated frame as the pending
// payload for flowID, to be picked up at its next scheduled instant.
func (p *Port) Stage(flowID uint16, frame []byte) {
	p.mu.Lock()
	p.allocateLocked()
	buf := p.buffer
	p.mu.Unlock()

	buf.Stage(flowID, frame, p.clock.WallNow())
}
