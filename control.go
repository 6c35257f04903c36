package tt

import "sync"

// FlowCtrlType names the control-plane message a FlowCtrl envelope
// carries. The over-the-wire encoding of these is out of scope; the
// core consumes already-decoded values.
type FlowCtrlType int

const (
	AddReq FlowCtrlType = iota
	AddReply
	DelReq
	DelReply
	QueryReq
	QueryReply
)

// FlowCtrl is the decoded envelope accompanying a batch of FlowMod
// records.
type FlowCtrl struct {
	TableID uint8
	Type    FlowCtrlType
}

// FlowMod is one decoded schedule entry as delivered by the control
// plane, carrying the wider 32-bit flow_id the wire format uses; FlowID
// must fit 16 bits by the time it reaches FlowEntry.
type FlowMod struct {
	TableID     uint8
	Metadata    uint64
	Port        string
	Direction   Direction
	FlowID      uint32
	Offset      int64
	Period      int64
	BufferID    uint32
	PacketSize  uint32
	ExecuteTime int64 // advisory; not consulted by the core
}

// sessionState is the ControlSession.state field.
type sessionState int

const (
	sessionMutable sessionState = iota
	sessionConst
)

// ControlSession implements the begin/add/end table-assembly protocol.
// It is transient: one instance per port/table assembly, discarded
// after EndAdd or Clear.
type ControlSession struct {
	mu sync.Mutex

	expected int
	received int
	state    sessionState
	entries  []FlowMod
}

// NewControlSession returns a session in the MUTABLE state with no
// entries received yet. Use BeginAdd to set the expected count.
func NewControlSession() *ControlSession {
	return &ControlSession{state: sessionMutable}
}

// BeginAdd starts a new table assembly, announcing how many AddEntry
// calls will follow. It fails with ErrTooMany if expected exceeds
// maxFlows.
func (s *ControlSession) BeginAdd(expected int, maxFlows int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expected > maxFlows {
		return ErrTooMany
	}

	s.expected = expected
	s.received = 0
	s.entries = s.entries[:0]
	s.state = sessionMutable
	return nil
}

// AddEntry appends one decoded FlowMod to the pending batch. It requires
// the session to be in the MUTABLE state.
func (s *ControlSession) AddEntry(mod FlowMod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != sessionMutable {
		return ErrWrongState
	}

	s.entries = append(s.entries, mod)
	s.received++
	return nil
}

// EndAdd commits the pending batch to the per-port tables named by each
// entry's Port and Direction fields, routing through registry, and
// transitions the session to CONST. It fails with ErrIncomplete if the
// received count doesn't match what BeginAdd announced; the session
// remains MUTABLE in that case so the caller can keep adding or retry.
//
// Commit is not atomic across entries: each insert becomes visible via
// the table-replacement semantics of FlowTable as soon as it happens.
func (s *ControlSession) EndAdd(registry *Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != sessionMutable {
		return ErrWrongState
	}
	if s.received != s.expected {
		return ErrIncomplete
	}

	for _, mod := range s.entries {
		if err := commitEntry(registry, mod); err != nil {
			return err
		}
	}

	s.state = sessionConst
	return nil
}

// Clear drops all entries on the named port/direction.
func (s *ControlSession) Clear(registry *Registry, port string, dir Direction) error {
	p, ok := registry.Port(port)
	if !ok {
		return ErrUnknownPort
	}

	var tbl *FlowTable
	if dir == Send {
		tbl = p.sendTable
	} else {
		tbl = p.arriveTable
	}
	if tbl == nil {
		return nil
	}

	for _, e := range tbl.Entries() {
		tbl.Delete(e.FlowID)
	}
	return nil
}

// Query returns a snapshot copy of the entries accumulated in the
// current (possibly still-open) session.
func (s *ControlSession) Query() []FlowMod {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]FlowMod, len(s.entries))
	copy(out, s.entries)
	return out
}

// commitEntry validates and installs one FlowMod into the port/direction
// it names.
func commitEntry(registry *Registry, mod FlowMod) error {
	if mod.FlowID > 0xffff {
		return ErrFlowIDRange
	}

	p, ok := registry.Port(mod.Port)
	if !ok {
		return ErrUnknownPort
	}

	entry := &FlowEntry{
		FlowID:     uint16(mod.FlowID),
		Period:     mod.Period,
		Offset:     mod.Offset,
		PacketSize: mod.PacketSize,
		BufferID:   mod.BufferID,
	}

	if mod.Direction == Send {
		return p.InsertSend(entry)
	}
	return p.InsertArrive(entry)
}
