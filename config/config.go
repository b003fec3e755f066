// Package config describes a machine in TOML, and builds it into an Engine.
//
// Example:
//
//	cpu = "i8080"
//	frequency = 2000000
//	reset_vector = 0x1000
//
//	[[memory]]
//	kind = "ram"
//	base = 0x0000
//	size = 0x1000
//
//	[[memory]]
//	kind = "rom"
//	base = 0x1000
//	image = "boot.bin"
//
//	[[io]]
//	kind = "console"
//	base = 0x00
//
//	[[io]]
//	kind = "timer"
//	base = 0x10
//	divider = 1000
//
// Image paths are relative to the machine file.
package config

import (
	"bytes"
	"io"
	"log"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
)

// Region is a device in one of the address spaces.
type Region struct {
	Kind     string   `toml:"kind"`     // ram, rom, ports, console or timer.
	Name     string   `toml:"name"`     // Label of the device.
	Base     uint64   `toml:"base"`     // Global address of the device.
	Size     uint64   `toml:"size"`     // Bytes or ports; defaults to the image or device size.
	Image    string   `toml:"image"`    // File with the initial contents.
	Contents []uint64 `toml:"contents"` // Inline initial contents.
	Divider  uint64   `toml:"divider"`  // Timer ticks per count.
}

// Machine is a complete machine description.
type Machine struct {
	Verbose bool `toml:"verbose"`

	Cpu         string   `toml:"cpu"`
	Frequency   float64  `toml:"frequency"` // Hz, or 0 for unpaced.
	ResetVector uint64   `toml:"reset_vector"`
	Memory      []Region `toml:"memory"`
	IO          []Region `toml:"io"`

	Fs     afero.Fs  `toml:"-"` // Source of images; the host filesystem if nil.
	Dir    string    `toml:"-"` // Directory of relative image paths.
	Input  io.Reader `toml:"-"` // Console input.
	Output io.Writer `toml:"-"` // Console output.
}

// Decode a machine description. Unknown keys are an error.
func Decode(r io.Reader) (m *Machine, err error) {
	m = &Machine{Cpu: "i8080"}

	md, err := toml.NewDecoder(r).Decode(m)
	if err != nil {
		m = nil
		return
	}

	undecoded := md.Undecoded()
	if len(undecoded) != 0 {
		var keys ErrUnknownKey
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		m = nil
		err = keys
		return
	}

	return
}

// Load a machine description file from fs.
func Load(fs afero.Fs, path string) (m *Machine, err error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return
	}

	m, err = Decode(bytes.NewReader(data))
	if err != nil {
		return
	}

	m.Fs = fs
	m.Dir = filepath.Dir(path)

	if m.Verbose {
		log.Printf("config: %v: %v with %d memory and %d io regions", path, m.Cpu, len(m.Memory), len(m.IO))
	}

	return
}

// contents returns the initial contents of a region, if any.
func (m *Machine) contents(region *Region) (data []byte, err error) {
	if len(region.Image) != 0 && len(region.Contents) != 0 {
		err = ErrContentsTwice
		return
	}

	if len(region.Image) != 0 {
		fs := m.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		path := region.Image
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.Dir, path)
		}
		data, err = afero.ReadFile(fs, path)
		return
	}

	for _, value := range region.Contents {
		if value > 0xff {
			err = ErrContentsSyntax
			return
		}
		data = append(data, byte(value))
	}

	return
}
