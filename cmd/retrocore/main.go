// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/afero"

	"github.com/ezrec/retrocore/config"
	"github.com/ezrec/retrocore/cpu"
	"github.com/ezrec/retrocore/emulator"
	"github.com/ezrec/retrocore/peripheral"
	"github.com/ezrec/retrocore/translate"
)

// defaultMachine is 64K of RAM, with a console at port 0x00 and a timer at
// port 0x10.
func defaultMachine() *config.Machine {
	return &config.Machine{
		Cpu: "i8080",
		Memory: []config.Region{
			{Kind: "ram", Base: 0x0000, Size: 0x10000},
		},
		IO: []config.Region{
			{Kind: "console", Base: 0x00},
			{Kind: "timer", Base: 0x10},
		},
	}
}

// consoleHooks flushes buffered console output.
type consoleHooks struct {
	emulator.NopHooks
	output *bufio.Writer
}

func (hooks *consoleHooks) FlushThread() {
	hooks.output.Flush()
}

func (hooks *consoleHooks) ExitThread() {
	hooks.output.Flush()
}

func main() {
	var compile string
	var machine string
	var save string
	var listing bool
	var frequency float64
	var vector int64
	var input string
	var output string
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to compile")
	flag.StringVar(&machine, "m", "", ".toml machine file to use")
	flag.StringVar(&save, "s", "", "Save compiled binary to file, do not execute")
	flag.BoolVar(&listing, "l", false, "Print listing of the compiled program")
	flag.Float64Var(&frequency, "f", -1, "Clock frequency in Hz, 0 for unpaced")
	flag.Int64Var(&vector, "e", -1, "Reset vector")
	flag.StringVar(&input, "i", "-", "Console input")
	flag.StringVar(&output, "o", "-", "Console output")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	fs := afero.NewOsFs()

	m := defaultMachine()
	if len(machine) != 0 {
		var err error
		m, err = config.Load(fs, machine)
		if err != nil {
			log.Fatalf("%v: %v", machine, err)
		}
	}
	m.Verbose = m.Verbose || verbose
	if frequency >= 0 {
		m.Frequency = frequency
	}
	if vector >= 0 {
		m.ResetVector = uint64(vector)
	}

	// Compile a new instruction stream.
	var prog *cpu.Program
	if len(compile) != 0 {
		inf, err := fs.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		target, err := m.Target()
		if err != nil {
			log.Fatalf("%v: %v", m.Cpu, err)
		}

		asm := &cpu.Assembler{Target: target, Verbose: verbose}
		prog, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		if listing {
			err = prog.Listing(os.Stdout)
			if err != nil {
				log.Fatal(err)
			}
		}

		if len(save) != 0 {
			err = afero.WriteFile(fs, save, prog.Binary(), 0o644)
			if err != nil {
				log.Fatalf("%v: %v", save, err)
			}
			return
		}
	}

	if input != "-" {
		inf, err := fs.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		m.Input = inf
	}

	var out *bufio.Writer
	if output == "-" {
		out = bufio.NewWriter(os.Stdout)
	} else {
		ouf, err := fs.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		out = bufio.NewWriter(ouf)
	}
	m.Output = out

	eng, err := m.Build()
	if err != nil {
		log.Fatalf("%v: %v", machine, err)
	}
	eng.Hooks = &consoleHooks{output: out}

	if prog != nil {
		err = eng.Memory.Load(prog.Origin(), prog.Binary())
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		eng.Program = prog
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tty *terminal
	if input == "-" {
		for _, dev := range eng.Peripherals {
			con, ok := dev.(*peripheral.Console)
			if !ok {
				continue
			}
			tty = startTerminal(con, cancel)
			if tty == nil {
				con.Input = os.Stdin
			}
			break
		}
	}

	err = eng.Start()
	if err != nil {
		tty.Restore()
		log.Fatal(err)
	}

	var halt emulator.Halt
	select {
	case halt = <-eng.Halted():
	case <-ctx.Done():
		eng.Stop()
		halt = <-eng.Halted()
	}
	tty.Restore()

	translate.Fprintf(os.Stderr, "%v\n", halt)
	err = eng.PrintRegisterValues(os.Stderr)
	if err != nil {
		log.Fatal(err)
	}

	if halt.Reason == cpu.HALT_FAULT {
		os.Exit(1)
	}
}
