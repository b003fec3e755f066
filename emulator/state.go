package emulator

// State is the lifecycle state of an Engine.
type State int32

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_IDLE     = State(0) // idle
	STATE_RUNNING  = State(1) // running
	STATE_STOPPING = State(2) // stopping
	STATE_STOPPED  = State(3) // stopped
)
