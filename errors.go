package tt

import "errors"

// Sentinel errors returned by the scheduling core.
//
// The original control-path session functions report failures through an
// error variable whose initialization the case analysis never quite
// finishes, so several branches return a zero-value (nil) error by
// accident. Every branch here returns one of these distinguished values
// instead.
var (
	// ErrOutOfMemory is returned when a FlowTable cannot grow to
	// accommodate a new flow id, or a Frame cannot be given more
	// headroom.
	ErrOutOfMemory = errors.New("tt: out of memory")

	// ErrNotWritable is returned by PopTT when the frame buffer cannot
	// be mutated in place.
	ErrNotWritable = errors.New("tt: frame buffer not writable")

	// ErrNothingToSchedule is returned by the Dispatcher when the send
	// table has no entries.
	ErrNothingToSchedule = errors.New("tt: send table has no entries")

	// ErrWrongState is returned by ControlSession methods invoked
	// outside of their required session state.
	ErrWrongState = errors.New("tt: control session in wrong state")

	// ErrIncomplete is returned by EndAdd when fewer (or more) entries
	// were received than announced by BeginAdd.
	ErrIncomplete = errors.New("tt: entry count does not match expected count")

	// ErrTooMany is returned by BeginAdd when the announced count
	// exceeds the configured per-table maximum.
	ErrTooMany = errors.New("tt: expected entry count exceeds max flows")

	// ErrNoTable names the case of a port with no FlowTable allocated
	// yet. Port lookups and deletes do not return it: a lookup reports
	// not found and a delete does nothing.
	ErrNoTable = errors.New("tt: no flow table allocated for port")

	// ErrFlowIDRange is returned when a control-plane FlowMod carries a
	// flow id that does not fit the 16-bit dataplane representation.
	ErrFlowIDRange = errors.New("tt: flow id exceeds 16-bit dataplane range")

	// ErrUnknownPort is returned when a control-plane commit names a
	// port that is not present in the Registry.
	ErrUnknownPort = errors.New("tt: unknown port")
)
