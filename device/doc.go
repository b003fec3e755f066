// Package device implements the addressable backing stores of an emulated
// machine: RAM, ROM and blocks of I/O ports.
//
// A device only ever sees local offsets in the range [0, Size()). Global
// addresses are translated by the bus package before a device is called.
// Multi-byte accesses are assembled in the device's own byte order, which is
// fixed when the device is built.
package device
