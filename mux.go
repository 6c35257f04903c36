package tt

import (
	"fmt"
	"sync"
)

// ControlHandler processes one decoded control-plane message. It is the
// TT-domain counterpart of the teacher package's request Handler: the
// over-the-wire framing is decoded elsewhere, and a ControlHandler only
// ever sees a FlowCtrl envelope and its accompanying FlowMod batch.
type ControlHandler interface {
	ServeControl(ctrl FlowCtrl, mods []FlowMod)
}

// ControlHandlerFunc is an adapter to use ordinary functions as
// ControlHandlers.
type ControlHandlerFunc func(ctrl FlowCtrl, mods []FlowMod)

// ServeControl implements ControlHandler.
func (f ControlHandlerFunc) ServeControl(ctrl FlowCtrl, mods []FlowMod) {
	f(ctrl, mods)
}

// DiscardControlHandler drops every message handed to it.
var DiscardControlHandler ControlHandler = ControlHandlerFunc(func(FlowCtrl, []FlowMod) {})

// ControlMux dispatches decoded control-plane messages to a registered
// handler by FlowCtrlType, the same single-key routing the teacher
// package's TypeMux performs by OpenFlow message Type.
type ControlMux struct {
	mu       sync.RWMutex
	handlers map[FlowCtrlType]ControlHandler
	runner   Runner
}

// NewControlMux allocates an empty ControlMux whose handlers run on a
// fresh goroutine per Dispatch call.
func NewControlMux() *ControlMux {
	return &ControlMux{
		handlers: make(map[FlowCtrlType]ControlHandler),
		runner:   OnDemandRoutineRunner{},
	}
}

// SetRunner replaces the concurrency model Dispatch uses to invoke
// handlers. Tests that need a handler's effects visible before Dispatch
// returns can install a SequentialRunner.
func (mux *ControlMux) SetRunner(r Runner) {
	mux.mu.Lock()
	defer mux.mu.Unlock()
	mux.runner = r
}

// Handle registers h for messages of type t, panicking on a duplicate
// registration the same way the teacher package's ServeMux.handle does.
func (mux *ControlMux) Handle(t FlowCtrlType, h ControlHandler) {
	mux.mu.Lock()
	defer mux.mu.Unlock()

	if h == nil {
		panic("tt: nil control handler")
	}
	if _, dup := mux.handlers[t]; dup {
		panic(fmt.Errorf("tt: multiple control handlers for %v", t))
	}

	mux.handlers[t] = h
}

// HandleFunc registers a handler function for messages of type t.
func (mux *ControlMux) HandleFunc(t FlowCtrlType, f func(FlowCtrl, []FlowMod)) {
	mux.Handle(t, ControlHandlerFunc(f))
}

// Handler returns the registered handler for ctrl.Type, or
// DiscardControlHandler if none is registered.
func (mux *ControlMux) Handler(ctrl FlowCtrl) ControlHandler {
	mux.mu.RLock()
	defer mux.mu.RUnlock()

	h, ok := mux.handlers[ctrl.Type]
	if !ok {
		return DiscardControlHandler
	}
	return h
}

// Dispatch routes ctrl and its accompanying mods to the registered
// handler, running it through the mux's configured Runner.
func (mux *ControlMux) Dispatch(ctrl FlowCtrl, mods []FlowMod) {
	mux.mu.RLock()
	runner := mux.runner
	mux.mu.RUnlock()

	h := mux.Handler(ctrl)
	runner.Run(func() { h.ServeControl(ctrl, mods) })
}
