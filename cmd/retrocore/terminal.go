package main

import (
	"errors"
	"log"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/retrocore/peripheral"
)

// terminal feeds raw keystrokes from an interactive stdin to a console, so
// the worker never blocks on a read.
type terminal struct {
	fd    int
	state *term.State
}

// startTerminal puts stdin in raw mode and starts feeding con. Control-C
// calls interrupt instead. It returns nil when stdin is not a terminal.
func startTerminal(con *peripheral.Console, interrupt func()) (tty *terminal) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		log.Printf("terminal: raw mode: %v", err)
		return
	}

	tty = &terminal{fd: fd, state: state}

	go func() {
		var buf [1]byte
		for {
			n, err := os.Stdin.Read(buf[:])
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}

			b := buf[0]
			switch b {
			case 0x03:
				interrupt()
				continue
			case '\r':
				b = '\n'
			case 0x7f:
				b = 0x08
			}

			for errors.Is(con.Feed([]byte{b}), peripheral.ErrFull) {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()

	return
}

// Restore the terminal mode.
func (tty *terminal) Restore() {
	if tty == nil {
		return
	}
	_ = term.Restore(tty.fd, tty.state)
}
