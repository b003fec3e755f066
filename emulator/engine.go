// Package emulator runs a processor on its own worker thread.
//
// An Engine owns a Processor, its memory and I/O address spaces, and the
// peripherals in the I/O space. Start spawns a worker goroutine locked to an
// OS thread, which fetches and executes instructions, ticks the peripherals,
// and paces itself to the processor clock until it is stopped or the
// processor halts. Every run reports exactly one Halt.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ezrec/retrocore/bus"
	"github.com/ezrec/retrocore/cpu"
	"github.com/ezrec/retrocore/peripheral"
	"github.com/ezrec/retrocore/translate"
)

// PACE_SLACK is how far ahead of the clock the worker may run before
// sleeping.
const PACE_SLACK = time.Millisecond

// Halt reports the end of a run.
type Halt struct {
	Reason cpu.HaltReason // Why the run ended.
	Err    error          // Fault, for cpu.HALT_FAULT.
	Index  uint64         // Instructions executed since reset.
}

func (halt Halt) String() string {
	if halt.Err != nil {
		return f("%v after %v instructions: %v", halt.Reason, halt.Index, halt.Err)
	}
	return f("%v after %v instructions", halt.Reason, halt.Index)
}

// Engine is an active processor.
type Engine struct {
	Verbose bool // If set, logs the engine lifecycle.

	Processor   *cpu.Processor
	Memory      *bus.AddressSpace
	IO          *bus.AddressSpace
	Peripherals []peripheral.Peripheral

	Hooks   Hooks        // Worker thread hooks.
	Program *cpu.Program // If set, faults are reported with their source line.

	state atomic.Int32
	dying atomic.Bool
	flush atomic.Bool

	execMu   sync.Mutex
	execDone chan struct{}
	halted   chan Halt
}

// New creates an idle engine, attaching the address spaces to the processor.
func New(processor *cpu.Processor, mem *bus.AddressSpace, io *bus.AddressSpace, peripherals ...peripheral.Peripheral) (eng *Engine, err error) {
	if processor == nil || mem == nil || io == nil {
		err = ErrSetup
		return
	}

	processor.Setup(mem, io)

	eng = &Engine{
		Processor:   processor,
		Memory:      mem,
		IO:          io,
		Peripherals: peripherals,
		Hooks:       NopHooks{},
		halted:      make(chan Halt, 1),
	}

	return
}

// State returns the lifecycle state.
func (eng *Engine) State() State {
	return State(eng.state.Load())
}

// Halted returns the channel on which each run reports its Halt.
func (eng *Engine) Halted() <-chan Halt {
	return eng.halted
}

// Wait waits for the current run to halt.
func (eng *Engine) Wait(ctx context.Context) (halt Halt, err error) {
	select {
	case halt = <-eng.halted:
	case <-ctx.Done():
		err = ctx.Err()
	}
	return
}

// Start runs the processor on a new worker thread.
// The processor must not be halted; Reset it first.
func (eng *Engine) Start() (err error) {
	eng.execMu.Lock()
	defer eng.execMu.Unlock()

	switch eng.State() {
	case STATE_IDLE, STATE_STOPPED:
	default:
		err = ErrRunning
		return
	}

	if eng.Processor.Halted() {
		err = cpu.ErrHalted
		return
	}

	// Drop any unread halt of a previous run.
	select {
	case <-eng.halted:
	default:
	}

	if eng.Verbose {
		log.Printf("emulator: start at 0x%04x", eng.Processor.Registers().PC())
	}

	eng.dying.Store(false)
	eng.state.Store(int32(STATE_RUNNING))
	eng.execDone = make(chan struct{})
	done := eng.execDone

	go func() {
		var halt Halt
		defer func() {
			eng.execMu.Lock()
			eng.state.Store(int32(STATE_STOPPED))
			close(done)
			eng.halted <- halt
			eng.execMu.Unlock()

			if eng.Verbose {
				log.Printf("emulator: %v", halt)
			}
		}()
		halt = eng.run()
	}()

	return
}

// Stop asks the worker to exit after its current instruction, and waits for
// it to do so. It is safe to call when the engine is not running.
func (eng *Engine) Stop() {
	eng.execMu.Lock()
	if eng.State() != STATE_RUNNING {
		eng.execMu.Unlock()
		return
	}
	eng.state.Store(int32(STATE_STOPPING))
	eng.dying.Store(true)
	done := eng.execDone
	eng.execMu.Unlock()

	<-done
}

// Flush asks the worker to call the FlushThread hook between instructions.
// When not running, the hook is called directly.
func (eng *Engine) Flush() {
	if eng.State() == STATE_IDLE || eng.State() == STATE_STOPPED {
		eng.hooks().FlushThread()
		return
	}
	eng.flush.Store(true)
}

// Reset resets the processor and peripherals, and returns to idle.
func (eng *Engine) Reset() (err error) {
	eng.execMu.Lock()
	defer eng.execMu.Unlock()

	switch eng.State() {
	case STATE_IDLE, STATE_STOPPED:
	default:
		err = ErrRunning
		return
	}

	eng.Processor.Reset()
	for _, dev := range eng.Peripherals {
		dev.Reset()
	}

	select {
	case <-eng.halted:
	default:
	}

	eng.state.Store(int32(STATE_IDLE))

	return
}

// Registers returns the processor registers. They may only be inspected
// while the engine is not running.
func (eng *Engine) Registers() (regs cpu.RegisterView, err error) {
	switch eng.State() {
	case STATE_IDLE, STATE_STOPPED:
	default:
		err = ErrRunning
		return
	}

	regs = eng.Processor.Registers()
	return
}

// PrintRegisterValues writes the processor registers, one per line.
func (eng *Engine) PrintRegisterValues(w io.Writer) (err error) {
	regs, err := eng.Registers()
	if err != nil {
		return
	}

	for name, value := range regs.Registers() {
		_, err = translate.Fprintf(w, "%5s: 0x%04x\n", name, value)
		if err != nil {
			return
		}
	}

	return
}

// hooks returns the hooks, defaulting to NopHooks.
func (eng *Engine) hooks() Hooks {
	if eng.Hooks == nil {
		return NopHooks{}
	}
	return eng.Hooks
}

// halt builds the Halt report of a halted processor.
func (eng *Engine) halt() (halt Halt) {
	p := eng.Processor

	halt.Reason, halt.Err = p.HaltReason()
	halt.Index = p.Index()

	var fault *cpu.ErrFault
	if eng.Program != nil && halt.Err != nil && errors.As(halt.Err, &fault) {
		dbg := eng.Program.Debug(fault.Address)
		if dbg.Opcode != nil {
			halt.Err = &ErrRuntime{LineNo: dbg.LineNo, Err: halt.Err}
		}
	}

	return
}

// tick advances all of the peripherals.
func (eng *Engine) tick() (err error) {
	for _, dev := range eng.Peripherals {
		err = dev.Tick()
		if err != nil {
			err = fmt.Errorf("%v: %w", dev.Name(), err)
			return
		}
	}
	return
}

// run is the worker loop.
func (eng *Engine) run() (halt Halt) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	p := eng.Processor
	hooks := eng.hooks()

	err := hooks.InitThread()
	defer hooks.ExitThread()
	if err != nil {
		halt = Halt{Reason: cpu.HALT_FAULT, Err: err, Index: p.Index()}
		return
	}

	epoch := time.Now()
	var elapsed time.Duration

	for {
		if eng.flush.Swap(false) {
			hooks.FlushThread()
		}

		if eng.dying.Load() {
			halt = Halt{Reason: cpu.HALT_STOPPED, Index: p.Index()}
			return
		}

		cycles, err := p.Step()
		if err == nil && !p.Halted() {
			err = eng.tick()
			if err != nil {
				p.Fault(err)
			}
		}

		if p.Halted() {
			halt = eng.halt()
			return
		}

		if err != nil {
			halt = Halt{Reason: cpu.HALT_FAULT, Err: err, Index: p.Index()}
			return
		}

		if p.Clock.Paced() {
			elapsed += p.Clock.Duration(cycles)
			ahead := time.Until(epoch.Add(elapsed))
			if ahead > PACE_SLACK {
				time.Sleep(ahead)
			}
		}
	}
}
