package cpu

// State is the next phase of the processor's instruction cycle.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RESET     = State(0) // reset
	STATE_FETCHING  = State(1) // fetching
	STATE_DECODING  = State(2) // decoding
	STATE_EXECUTING = State(3) // executing
	STATE_HALTED    = State(4) // halted
)

// HaltReason is why execution stopped.
type HaltReason int

//go:generate go tool stringer -linecomment -type=HaltReason
const (
	HALT_NONE        = HaltReason(0) // none
	HALT_STOPPED     = HaltReason(1) // stopped
	HALT_DEBUG       = HaltReason(2) // debug
	HALT_INSTRUCTION = HaltReason(3) // instruction
	HALT_FAULT       = HaltReason(4) // fault
)
