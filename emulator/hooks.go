package emulator

// Hooks are called on the worker thread of a running Engine.
type Hooks interface {
	// InitThread is called before the first instruction. An error halts the
	// run with a fault.
	InitThread() error
	// ExitThread is called when the worker exits, however it exits.
	ExitThread()
	// FlushThread is called between instructions after Flush.
	FlushThread()
}

// NopHooks does nothing.
type NopHooks struct{}

var _ Hooks = NopHooks{}

func (NopHooks) InitThread() error { return nil }
func (NopHooks) ExitThread()       {}
func (NopHooks) FlushThread()      {}
