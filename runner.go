package tt

// Runner describes types used to start a function according to a
// chosen concurrency model. Timer uses one to launch its handler loop.
type Runner interface {
	Run(func())
}

// OnDemandRoutineRunner starts each function in a separate goroutine.
// This is what a Timer uses unless told otherwise.
type OnDemandRoutineRunner struct{}

// Run starts fn in a new goroutine. It implements Runner.
func (OnDemandRoutineRunner) Run(fn func()) {
	go fn()
}

// SequentialRunner starts fn on the calling goroutine and blocks until
// it returns. Tests that need the handler loop's side effects visible
// before the call that triggered them returns can substitute this for
// the default runner.
type SequentialRunner struct{}

// Run calls fn directly. It implements Runner.
func (SequentialRunner) Run(fn func()) {
	fn()
}
