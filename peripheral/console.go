package peripheral

import (
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/ezrec/retrocore/device"
)

// Console port offsets.
const (
	CONSOLE_DATA   = 0 // Read a byte of input, or write a byte of output.
	CONSOLE_STATUS = 1 // Read the status bits.
	CONSOLE_PORTS  = 2
)

// Console status bits.
const (
	STATUS_RX_READY = 0x01 // Input is available.
	STATUS_TX_READY = 0x02 // Output is always ready.
)

// CONSOLE_BUFFER is the size of the input queue.
const CONSOLE_BUFFER = 256

// CONSOLE_CHUNK is the largest read from Input.
const CONSOLE_CHUNK = 64

// Console is a byte stream terminal on two ports.
//
// Input is queued from Feed, and from Input by a reader goroutine started on
// first use, so port accesses never wait on the host. Reading the data port
// with no input available returns 0. A read error from Input is reported by
// the following port reads and Ticks.
type Console struct {
	*device.Ports
	Verbose bool

	Input  io.Reader
	Output io.Writer

	mutex  sync.Mutex
	input  fifo
	eof    bool
	err    error
	reader sync.Once
}

var _ Peripheral = (*Console)(nil)

// NewConsole creates a console. Either stream may be nil.
func NewConsole(input io.Reader, output io.Writer) (con *Console) {
	con = &Console{
		Ports:  device.NewPorts(CONSOLE_PORTS, nil),
		Input:  input,
		Output: output,
		input:  fifo{capacity: CONSOLE_BUFFER},
	}
	con.Label = "Console"
	con.OnIn = con.in
	con.OnOut = con.out
	con.input.rewind()

	return
}

// Reset drops any queued input.
func (con *Console) Reset() {
	con.mutex.Lock()
	defer con.mutex.Unlock()

	con.input.rewind()
	con.err = nil
}

// Tick starts the input reader, and reports its error.
func (con *Console) Tick() error {
	con.start()

	con.mutex.Lock()
	defer con.mutex.Unlock()

	return con.err
}

// Feed queues input. It is safe to call while the emulator is running.
func (con *Console) Feed(data []byte) (err error) {
	con.mutex.Lock()
	defer con.mutex.Unlock()

	for _, b := range data {
		err = con.input.send(b)
		if err != nil {
			return
		}
	}

	return
}

// start runs the input reader once, if there is an Input.
func (con *Console) start() {
	if con.Input == nil {
		return
	}

	con.reader.Do(func() {
		go con.read(con.Input)
	})
}

// read copies input into the queue, waiting while it is full.
func (con *Console) read(input io.Reader) {
	var chunk [CONSOLE_CHUNK]byte
	for {
		n, err := input.Read(chunk[:])
		for _, b := range chunk[:n] {
			for errors.Is(con.Feed([]byte{b}), ErrFull) {
				time.Sleep(time.Millisecond)
			}
		}

		if err == nil {
			continue
		}

		con.mutex.Lock()
		if errors.Is(err, io.EOF) {
			con.eof = true
		} else {
			con.err = err
		}
		con.mutex.Unlock()

		if con.Verbose {
			log.Printf("console: input closed: %v", err)
		}
		return
	}
}

// closed is true once Input has been read to its end.
func (con *Console) closed() bool {
	con.mutex.Lock()
	defer con.mutex.Unlock()

	return con.eof
}

func (con *Console) in(port uint64, width device.Width) (value uint64, err error) {
	con.start()

	con.mutex.Lock()
	defer con.mutex.Unlock()

	if con.err != nil {
		err = con.err
		return
	}

	switch port {
	case CONSOLE_DATA:
		b, _ := con.input.pop()
		value = uint64(b)
	case CONSOLE_STATUS:
		value = STATUS_TX_READY
		if con.input.len() != 0 {
			value |= STATUS_RX_READY
		}
	}

	return
}

func (con *Console) out(port uint64, width device.Width, value uint64) (err error) {
	if port != CONSOLE_DATA || con.Output == nil {
		return
	}

	if con.Verbose {
		log.Printf("console: out 0x%02x", byte(value))
	}

	_, err = con.Output.Write([]byte{byte(value)})
	return
}
