package config

import (
	"encoding/binary"

	"github.com/ezrec/retrocore/bus"
	"github.com/ezrec/retrocore/cpu"
	"github.com/ezrec/retrocore/device"
	"github.com/ezrec/retrocore/emulator"
	"github.com/ezrec/retrocore/i8080"
	"github.com/ezrec/retrocore/peripheral"
)

type targetInfo struct {
	memorySpan uint64
	ioSpan     uint64
	create     func(vector uint64) (cpu.Target, error)
}

var targets = map[string]targetInfo{
	"i8080": {
		memorySpan: i8080.MEMORY_SPAN,
		ioSpan:     i8080.IO_SPAN,
		create: func(vector uint64) (target cpu.Target, err error) {
			if vector >= i8080.MEMORY_SPAN {
				err = ErrVectorInvalid
				return
			}
			target = &i8080.Target{Vector: uint16(vector)}
			return
		},
	},
}

// Target creates the instruction set of the machine.
func (m *Machine) Target() (target cpu.Target, err error) {
	info, ok := targets[m.Cpu]
	if !ok {
		err = ErrCpuUnknown
		return
	}

	return info.create(m.ResetVector)
}

// Build assembles the machine into an idle Engine.
func (m *Machine) Build() (eng *emulator.Engine, err error) {
	info, ok := targets[m.Cpu]
	if !ok {
		err = ErrCpuUnknown
		return
	}

	target, err := info.create(m.ResetVector)
	if err != nil {
		return
	}

	clock, err := cpu.NewClock(m.Frequency)
	if err != nil {
		return
	}

	mem := bus.NewAddressSpace("memory", info.memorySpan)
	mem.Verbose = m.Verbose
	for n := range m.Memory {
		err = m.buildMemory(mem, &m.Memory[n], target.ByteOrder())
		if err != nil {
			err = &ErrRegion{Section: "memory", Index: n, Err: err}
			return
		}
	}

	io := bus.NewAddressSpace("io", info.ioSpan)
	io.Verbose = m.Verbose
	var peripherals []peripheral.Peripheral
	for n := range m.IO {
		var dev peripheral.Peripheral
		dev, err = m.buildIO(io, &m.IO[n], target.ByteOrder())
		if err != nil {
			err = &ErrRegion{Section: "io", Index: n, Err: err}
			return
		}
		if dev != nil {
			peripherals = append(peripherals, dev)
		}
	}

	p := cpu.NewProcessor(target, clock)
	p.Verbose = m.Verbose

	eng, err = emulator.New(p, mem, io, peripherals...)
	if err != nil {
		return
	}
	eng.Verbose = m.Verbose

	return
}

func (m *Machine) buildMemory(mem *bus.AddressSpace, region *Region, order binary.ByteOrder) (err error) {
	data, err := m.contents(region)
	if err != nil {
		return
	}

	size := region.Size
	if size == 0 {
		size = uint64(len(data))
	}

	var dev *device.Memory
	switch region.Kind {
	case "ram":
		dev = device.NewRam(size, order)
	case "rom":
		dev = device.NewRom(size, order)
	default:
		err = ErrKindUnknown
		return
	}
	dev.Label = region.Name
	dev.Verbose = m.Verbose

	if len(data) != 0 {
		err = dev.Load(data)
		if err != nil {
			return
		}
	}

	err = mem.Register(dev, region.Base, size)
	return
}

func (m *Machine) buildIO(io *bus.AddressSpace, region *Region, order binary.ByteOrder) (dev peripheral.Peripheral, err error) {
	var ports device.Device

	switch region.Kind {
	case "ports":
		block := device.NewPorts(region.Size, order)
		block.Label = region.Name
		ports = block
	case "console":
		con := peripheral.NewConsole(m.Input, m.Output)
		con.Verbose = m.Verbose
		if len(region.Name) != 0 {
			con.Label = region.Name
		}
		ports, dev = con, con
	case "timer":
		timer := peripheral.NewTimer(region.Divider)
		if len(region.Name) != 0 {
			timer.Label = region.Name
		}
		ports, dev = timer, timer
	default:
		err = ErrKindUnknown
		return
	}

	size := region.Size
	if size == 0 {
		size = ports.Size()
	}

	err = io.Register(ports, region.Base, size)
	if err != nil {
		dev = nil
	}

	return
}
